package sandbox

import (
	"encoding/json"
	"net/http"

	"github.com/alexbotov/gpay/internal/control"
	"github.com/alexbotov/gpay/pkg/gpay"
	"github.com/alexbotov/gpay/pkg/gpay/signing"
	"go.uber.org/zap"
)

// APIResponse is the envelope of sandbox admin responses and of errors
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondSigned writes {"data": data} signed over op.VerifyFields with a
// fresh salt, the way GPay answers API calls. A fault set for op through the
// control service corrupts the reply after signing.
func (s *Server) respondSigned(w http.ResponseWriter, op gpay.Operation, data map[string]interface{}) {
	fault := s.control.FaultFor(op.Name)

	signed, err := signing.Select(data, op.VerifyFields)
	if err != nil {
		s.logger.Error("response fields not signable", zap.String("operation", op.Name), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	secret := s.credentials.SecretKey
	if fault == control.FaultBadSignature {
		secret += "-rotated"
	}
	material, err := s.engine.NewMaterial(s.credentials.Password, secret, signed)
	if err != nil {
		s.logger.Error("failed to sign response", zap.String("operation", op.Name), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	if fault == control.FaultTamperedBody {
		tampered := make(map[string]interface{}, len(data))
		for k, v := range data {
			tampered[k] = v
		}
		// every operation signs response_timestamp
		if ts, ok := data["response_timestamp"].(int64); ok {
			tampered["response_timestamp"] = ts + 1
		}
		data = tampered
	}

	body, err := json.Marshal(map[string]interface{}{"data": data})
	if err != nil {
		s.logger.Error("failed to encode response", zap.String("operation", op.Name), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if fault != control.FaultMissingSignature {
		w.Header().Set(gpay.HeaderSignatureSalt, material.Salt)
		w.Header().Set(gpay.HeaderSignatureHash, material.Signature)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
