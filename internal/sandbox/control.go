package sandbox

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alexbotov/gpay/internal/control"
	"github.com/alexbotov/gpay/pkg/gpay"
)

const defaultOperator = "sandbox-admin"

// available answers 503 for op while the API is disabled
func (s *Server) available(op gpay.Operation, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.control.FaultFor(op.Name) == control.FaultUnavailable {
			respondError(w, http.StatusServiceUnavailable, "API_DISABLED", "The API is temporarily unavailable")
			return
		}
		next(w, r)
	}
}

type controlRequest struct {
	Reason       string `json:"reason"`
	AuthorizedBy string `json:"authorized_by"`
	Operation    string `json:"operation"`
	Fault        string `json:"fault"`
}

// decodeControl reads an optional JSON body
func decodeControl(r *http.Request) (*controlRequest, error) {
	req := &controlRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if req.AuthorizedBy == "" {
		req.AuthorizedBy = defaultOperator
	}
	return req, nil
}

// GetControlStatus handles GET /sandbox/control
func (s *Server) GetControlStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.control.GetSystemStatus())
}

// DisableAPI handles POST /sandbox/control/disable
func (s *Server) DisableAPI(w http.ResponseWriter, r *http.Request) {
	req, err := decodeControl(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Reason == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "reason is required")
		return
	}

	s.control.DisableAPI(req.Reason, req.AuthorizedBy)
	respondJSON(w, http.StatusOK, s.control.GetSystemStatus())
}

// EnableAPI handles POST /sandbox/control/enable
func (s *Server) EnableAPI(w http.ResponseWriter, r *http.Request) {
	req, err := decodeControl(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	s.control.EnableAPI(req.AuthorizedBy)
	respondJSON(w, http.StatusOK, s.control.GetSystemStatus())
}

// SetFault handles POST /sandbox/faults. An empty fault clears the operation.
func (s *Server) SetFault(w http.ResponseWriter, r *http.Request) {
	req, err := decodeControl(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	known := false
	for _, op := range gpay.Operations() {
		if op.Name == req.Operation {
			known = true
			break
		}
	}
	if !known {
		respondError(w, http.StatusBadRequest, "UNKNOWN_OPERATION", "operation must name a GPay API operation")
		return
	}

	fault, err := control.ParseFault(req.Fault)
	if err != nil {
		respondError(w, http.StatusBadRequest, "UNKNOWN_FAULT", err.Error())
		return
	}

	s.control.SetFault(req.Operation, fault, req.AuthorizedBy)
	respondJSON(w, http.StatusOK, s.control.GetSystemStatus())
}

// ClearFaults handles DELETE /sandbox/faults
func (s *Server) ClearFaults(w http.ResponseWriter, r *http.Request) {
	s.control.ClearFaults(defaultOperator)
	respondJSON(w, http.StatusOK, s.control.GetSystemStatus())
}
