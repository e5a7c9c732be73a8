package gpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexbotov/gpay/pkg/gpay/signing"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/alexbotov/gpay"

// Credentials identify the merchant. SecretKey and Password never leave the
// process; APIKey is sent as a bearer token.
type Credentials struct {
	APIKey    string
	SecretKey string
	Password  string
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{APIKey: %q, SecretKey: [redacted], Password: [redacted]}", c.APIKey)
}

// GoString keeps %#v from printing secrets
func (c Credentials) GoString() string { return c.String() }

// Operation names one API endpoint and the response fields the server signs for it
type Operation struct {
	Name         string
	Path         string
	VerifyFields []string
}

// Client is a GPay API client. It holds no per-call state and is safe for
// concurrent use.
type Client struct {
	credentials Credentials
	baseURL     BaseURL
	language    string

	transport Transport
	engine    *signing.Engine
	now       func() time.Time

	logger   *zap.Logger
	metrics  *Metrics
	recorder Recorder
	tracer   trace.Tracer
}

// NewClient creates a client for one of the known deployments
func NewClient(creds Credentials, baseURL BaseURL, opts ...Option) (*Client, error) {
	if !baseURL.Valid() {
		return nil, errors.Wrapf(ErrInvalidBaseURL, "%q", string(baseURL))
	}
	if creds.APIKey == "" || creds.SecretKey == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		credentials: creds,
		baseURL:     baseURL,
		language:    DefaultLanguage,
		transport:   NewHTTPTransport(30 * time.Second),
		now:         time.Now,
		logger:      zap.NewNop(),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = signing.NewEngine(nil)
	}

	return c, nil
}

// BaseURL returns the deployment the client talks to
func (c *Client) BaseURL() BaseURL { return c.baseURL }

// Do signs params, sends them to op.Path and verifies the response against
// op.VerifyFields. On success the response data object is decoded into out.
// A request_timestamp is added to params when absent.
func (c *Client) Do(ctx context.Context, op Operation, params signing.Params, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, "gpay."+op.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gpay.operation", op.Name),
			attribute.String("gpay.path", op.Path),
		))
	defer span.End()

	params = params.Clone()
	if _, ok := params["request_timestamp"]; !ok {
		params["request_timestamp"] = signing.String(strconv.FormatInt(c.now().UnixMilli(), 10))
	}

	rec := &CallRecord{
		Operation:        op.Name,
		Path:             op.Path,
		RequestTimestamp: params["request_timestamp"].String(),
		StartedAt:        time.Now(),
	}

	outcome, err := c.roundTrip(ctx, op, params, out, rec)

	rec.Outcome = outcome
	rec.Duration = time.Since(rec.StartedAt)
	if err != nil {
		rec.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(outcome))
	}
	span.SetAttributes(
		attribute.Int("http.status_code", rec.StatusCode),
		attribute.String("gpay.outcome", string(outcome)),
	)

	c.metrics.observe(op.Name, outcome, rec.Duration)
	c.record(ctx, rec)

	switch {
	case outcome.IntegrityFailure():
		c.logger.Warn("gpay response rejected",
			zap.String("operation", op.Name),
			zap.String("outcome", string(outcome)),
			zap.Int("status", rec.StatusCode),
			zap.Error(err))
	case err != nil:
		c.logger.Info("gpay call failed",
			zap.String("operation", op.Name),
			zap.String("outcome", string(outcome)),
			zap.Int("status", rec.StatusCode),
			zap.Error(err))
	default:
		c.logger.Debug("gpay call verified",
			zap.String("operation", op.Name),
			zap.Duration("duration", rec.Duration))
	}

	return err
}

func (c *Client) roundTrip(ctx context.Context, op Operation, params signing.Params, out interface{}, rec *CallRecord) (Outcome, error) {
	material, err := c.engine.NewMaterial(c.credentials.Password, c.credentials.SecretKey, params)
	if err != nil {
		return OutcomeSigningError, errors.Wrapf(err, "%s: sign request", op.Name)
	}

	body, err := json.Marshal(params)
	if err != nil {
		return OutcomeSigningError, errors.Wrapf(err, "%s: marshal request", op.Name)
	}

	req := &Request{
		URL:    string(c.baseURL) + op.Path,
		Header: make(http.Header),
		Body:   body,
	}
	req.Header.Set(HeaderAuthorization, "Bearer "+c.credentials.APIKey)
	req.Header.Set(HeaderAcceptLanguage, c.language)
	req.Header.Set(HeaderSignatureSalt, material.Salt)
	req.Header.Set(HeaderSignatureHash, material.Signature)

	c.logger.Debug("gpay request",
		zap.String("operation", op.Name),
		zap.String("url", req.URL))

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return OutcomeTransportError, errors.Wrapf(err, "%s", op.Name)
	}
	rec.StatusCode = resp.StatusCode

	if resp.StatusCode >= http.StatusBadRequest {
		return OutcomeHTTPError, &HTTPError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	return c.verifyResponse(op, resp, out)
}

// verifyResponse checks the server signature and only then decodes into out
func (c *Client) verifyResponse(op Operation, resp *Response, out interface{}) (Outcome, error) {
	receivedHash := headerValue(resp.Header, HeaderSignatureHash)
	receivedSalt := headerValue(resp.Header, HeaderSignatureSalt)
	if receivedHash == "" || receivedSalt == "" {
		return OutcomeMissingSignature, &VerificationError{Operation: op.Name, Err: ErrMissingSignature}
	}

	raw, fields, err := decodeData(resp.Body)
	if err != nil {
		return OutcomeMalformedResponse, &VerificationError{
			Operation: op.Name,
			Err:       errors.Wrap(ErrMalformedResponse, err.Error()),
		}
	}

	signed, err := signing.Select(fields, op.VerifyFields)
	if err != nil {
		return OutcomeMalformedResponse, &VerificationError{
			Operation: op.Name,
			Err:       errors.Wrap(ErrMalformedResponse, err.Error()),
		}
	}

	if !signing.Verify(receivedHash, receivedSalt, c.credentials.Password, signed, c.credentials.SecretKey) {
		return OutcomeSignatureMismatch, &VerificationError{Operation: op.Name, Err: ErrSignatureMismatch}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return OutcomeMalformedResponse, &VerificationError{
				Operation: op.Name,
				Err:       errors.Wrapf(ErrMalformedResponse, "decode verified data: %v", err),
			}
		}
	}

	return OutcomeVerified, nil
}

func (c *Client) record(ctx context.Context, rec *CallRecord) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, rec); err != nil {
		c.logger.Warn("failed to record gpay call",
			zap.String("operation", rec.Operation),
			zap.Error(err))
	}
}

// decodeData returns the raw "data" object of a response body and its fields
func decodeData(body []byte) (json.RawMessage, map[string]interface{}, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(envelope.Data))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return nil, nil, errors.Wrap(err, "data")
	}
	if fields == nil {
		return nil, nil, errors.New("response has no data object")
	}

	return envelope.Data, fields, nil
}

// headerValue looks a header up ignoring case, also for maps whose keys were
// not canonicalized by net/http.
func headerValue(h http.Header, name string) string {
	if v := h.Get(name); v != "" {
		return v
	}
	for k, values := range h {
		if strings.EqualFold(k, name) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
