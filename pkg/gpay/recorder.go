package gpay

import (
	"context"
	"time"
)

// Outcome classifies how a call ended
type Outcome string

const (
	OutcomeVerified          Outcome = "verified"
	OutcomeHTTPError         Outcome = "http_error"
	OutcomeTransportError    Outcome = "transport_error"
	OutcomeMissingSignature  Outcome = "missing_signature"
	OutcomeSignatureMismatch Outcome = "signature_mismatch"
	OutcomeMalformedResponse Outcome = "malformed_response"
	OutcomeSigningError      Outcome = "signing_error"
)

// IntegrityFailure reports whether the outcome is a rejected response
func (o Outcome) IntegrityFailure() bool {
	switch o {
	case OutcomeMissingSignature, OutcomeSignatureMismatch, OutcomeMalformedResponse:
		return true
	}
	return false
}

// CallRecord describes one finished call. It never holds credentials,
// salts or signatures.
type CallRecord struct {
	Operation        string
	Path             string
	RequestTimestamp string
	StatusCode       int
	Outcome          Outcome
	Error            string
	StartedAt        time.Time
	Duration         time.Duration
}

// Recorder receives a CallRecord after every call. Its errors are logged and
// do not change the call result.
type Recorder interface {
	Record(ctx context.Context, rec *CallRecord) error
}
