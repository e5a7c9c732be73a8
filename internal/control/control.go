// Package control lets a sandbox operator take the API offline or make
// individual operations answer with broken signatures.
//
// Key Requirements:
//   - The whole API can be disabled on demand
//   - Faults are set per operation and cleared individually
//   - All state changes are logged
package control

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrUnknownFault is returned by ParseFault for a name it does not know
var ErrUnknownFault = errors.New("unknown fault")

// Fault is a deliberate misbehavior of one operation
type Fault string

const (
	FaultNone             Fault = ""
	FaultUnavailable      Fault = "unavailable"
	FaultMissingSignature Fault = "missing_signature"
	FaultBadSignature     Fault = "bad_signature"
	FaultTamperedBody     Fault = "tampered_body"
)

// ParseFault validates a fault name
func ParseFault(name string) (Fault, error) {
	switch f := Fault(name); f {
	case FaultNone, FaultUnavailable, FaultMissingSignature, FaultBadSignature, FaultTamperedBody:
		return f, nil
	}
	return FaultNone, ErrUnknownFault
}

// Service holds the operator switches. It is safe for concurrent use.
type Service struct {
	logger *zap.Logger

	mu             sync.RWMutex
	apiEnabled     bool
	faults         map[string]Fault
	disabledAt     *time.Time
	disabledBy     string
	disabledReason string
}

// New creates a control service with the API enabled and no faults
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:     logger,
		apiEnabled: true,
		faults:     make(map[string]Fault),
	}
}

// DisableAPI makes every operation answer 503
func (s *Service) DisableAPI(reason, authorizedBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.apiEnabled = false
	s.disabledAt = &now
	s.disabledBy = authorizedBy
	s.disabledReason = reason

	s.logger.Warn("sandbox API disabled",
		zap.String("reason", reason),
		zap.String("authorized_by", authorizedBy))
}

// EnableAPI resumes normal operation. Per-operation faults stay in place.
func (s *Service) EnableAPI(authorizedBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apiEnabled = true
	s.disabledAt = nil
	s.disabledBy = ""
	s.disabledReason = ""

	s.logger.Info("sandbox API enabled", zap.String("authorized_by", authorizedBy))
}

// SetFault makes operation misbehave. FaultNone clears it.
func (s *Service) SetFault(operation string, fault Fault, authorizedBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fault == FaultNone {
		delete(s.faults, operation)
	} else {
		s.faults[operation] = fault
	}

	s.logger.Info("sandbox fault set",
		zap.String("operation", operation),
		zap.String("fault", string(fault)),
		zap.String("authorized_by", authorizedBy))
}

// ClearFaults removes every per-operation fault
func (s *Service) ClearFaults(authorizedBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faults = make(map[string]Fault)
	s.logger.Info("sandbox faults cleared", zap.String("authorized_by", authorizedBy))
}

// FaultFor returns the fault in effect for operation
func (s *Service) FaultFor(operation string) Fault {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.apiEnabled {
		return FaultUnavailable
	}
	return s.faults[operation]
}

// IsAPIEnabled reports whether the API is enabled
func (s *Service) IsAPIEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiEnabled
}

// SystemStatus is a snapshot of the switches
type SystemStatus struct {
	APIEnabled     bool             `json:"api_enabled"`
	DisabledAt     *time.Time       `json:"disabled_at,omitempty"`
	DisabledBy     string           `json:"disabled_by,omitempty"`
	DisabledReason string           `json:"disabled_reason,omitempty"`
	Faults         map[string]Fault `json:"faults"`
	FaultedOps     []string         `json:"faulted_operations"`
}

// GetSystemStatus returns the current switches
func (s *Service) GetSystemStatus() *SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &SystemStatus{
		APIEnabled:     s.apiEnabled,
		DisabledAt:     s.disabledAt,
		DisabledBy:     s.disabledBy,
		DisabledReason: s.disabledReason,
		Faults:         make(map[string]Fault, len(s.faults)),
		FaultedOps:     make([]string, 0, len(s.faults)),
	}
	for op, f := range s.faults {
		status.Faults[op] = f
		status.FaultedOps = append(status.FaultedOps, op)
	}
	sort.Strings(status.FaultedOps)
	return status
}
