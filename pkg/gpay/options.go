package gpay

import (
	"net/http"
	"time"

	"github.com/alexbotov/gpay/pkg/gpay/signing"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultLanguage is sent in Accept-Language unless WithLanguage says otherwise
const DefaultLanguage = "en"

// Option configures a Client
type Option func(*Client)

// WithLanguage sets the language the API answers in
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithTransport replaces the HTTP transport
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithHTTPClient sends requests through httpClient
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.transport = &HTTPTransport{Client: httpClient} }
}

// WithTimeout sets the timeout of the default HTTP transport
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.transport = NewHTTPTransport(d) }
}

// WithEntropy sets the random source for request salts
func WithEntropy(e signing.Entropy) Option {
	return func(c *Client) { c.engine = signing.NewEngine(e) }
}

// WithClock sets the clock used for request timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records call metrics
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRecorder sends a CallRecord for every call to r
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}
