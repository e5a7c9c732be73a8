// Package sandbox is a local GPay server. It verifies signed requests and
// signs its responses with the same scheme as the real API, so the client can
// be exercised end to end against the Dev base URL.
package sandbox

import (
	"time"

	"github.com/alexbotov/gpay/internal/control"
	"github.com/alexbotov/gpay/internal/rng"
	"github.com/alexbotov/gpay/internal/wallet"
	"github.com/alexbotov/gpay/pkg/gpay"
	"github.com/alexbotov/gpay/pkg/gpay/signing"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies read by the signature middleware
const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers of the sandbox
type Server struct {
	credentials gpay.Credentials
	ledger      *wallet.Ledger
	rng         *rng.Service
	engine      *signing.Engine
	control     *control.Service

	logger   *zap.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
	now      func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics registers the sandbox collectors with reg and serves reg on /metrics
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = NewMetrics(reg)
		s.gatherer = reg
	}
}

// WithClock sets the clock used for response timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a sandbox server. creds are the merchant credentials the
// sandbox shares with its clients; rngSvc salts every response.
func New(creds gpay.Credentials, ledger *wallet.Ledger, rngSvc *rng.Service, opts ...Option) *Server {
	if rngSvc == nil {
		rngSvc = rng.New()
	}
	s := &Server{
		credentials: creds,
		ledger:      ledger,
		rng:         rngSvc,
		engine:      signing.NewEngine(rngSvc),
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.control = control.New(s.logger)
	return s
}

// Control returns the operator switches of the sandbox
func (s *Server) Control() *control.Service {
	return s.control
}
