package gpay

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidBaseURL is returned by NewClient for an unknown deployment
	ErrInvalidBaseURL = errors.New("gpay: invalid base URL, use Staging, Production or Dev")
	// ErrMissingCredentials is returned by NewClient when a credential is empty
	ErrMissingCredentials = errors.New("gpay: api key, secret key and password are required")

	// ErrMissingSignature means the response lacked X-Signature-Salt or X-Signature-Hash
	ErrMissingSignature = errors.New("gpay: missing X-Signature-Hash or X-Signature-Salt in response headers")
	// ErrSignatureMismatch means the response signature did not verify
	ErrSignatureMismatch = errors.New("gpay: response verification failed: hash mismatch")
	// ErrMalformedResponse means the response body has no decodable data object
	ErrMalformedResponse = errors.New("gpay: malformed response body")
)

// HTTPError is returned when the API answers with a status of 400 or above
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gpay: HTTP error: %d %s", e.StatusCode, e.Body)
}

// VerificationError is returned when a response cannot be trusted.
// Err is ErrMissingSignature, ErrSignatureMismatch or ErrMalformedResponse.
type VerificationError struct {
	Operation string
	Err       error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// IsIntegrityError reports whether err means a response was rejected as
// unsigned, forged or unreadable. Such errors are never worth retrying.
func IsIntegrityError(err error) bool {
	var verr *VerificationError
	return errors.As(err, &verr)
}
