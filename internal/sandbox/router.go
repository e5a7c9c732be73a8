package sandbox

import (
	"net/http"

	"github.com/alexbotov/gpay/pkg/gpay"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the HTTP router
func (s *Server) SetupRouter() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)

	r.Use(s.RecoveryMiddleware)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/health", s.HealthCheck).Methods("GET")
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	// GPay API: bearer key plus signed body
	api := r.PathPrefix(gpay.APIPrefix).Subrouter()
	api.Use(s.AuthMiddleware)
	api.Use(s.SignatureMiddleware)

	api.HandleFunc(gpay.OpGetBalance.Path, s.available(gpay.OpGetBalance, s.GetBalance)).Methods("POST")
	api.HandleFunc(gpay.OpCreatePaymentRequest.Path, s.available(gpay.OpCreatePaymentRequest, s.CreatePaymentRequest)).Methods("POST")
	api.HandleFunc(gpay.OpCheckPaymentStatus.Path, s.available(gpay.OpCheckPaymentStatus, s.CheckPaymentStatus)).Methods("POST")
	api.HandleFunc(gpay.OpSendMoney.Path, s.available(gpay.OpSendMoney, s.SendMoney)).Methods("POST")
	api.HandleFunc(gpay.OpGetDayStatement.Path, s.available(gpay.OpGetDayStatement, s.GetDayStatement)).Methods("POST")
	api.HandleFunc(gpay.OpCheckWallet.Path, s.available(gpay.OpCheckWallet, s.CheckWallet)).Methods("POST")
	api.HandleFunc(gpay.OpGetOutstandingTransactions.Path, s.available(gpay.OpGetOutstandingTransactions, s.GetOutstandingTransactions)).Methods("POST")

	// Sandbox administration: bearer key only
	admin := r.PathPrefix("/sandbox").Subrouter()
	admin.Use(s.AuthMiddleware)

	admin.HandleFunc("/payment-requests/{id}/pay", s.PayRequest).Methods("POST")
	admin.HandleFunc("/transactions/{id}/settle", s.SettleTransaction).Methods("POST")
	admin.HandleFunc("/wallets", s.AddWallet).Methods("POST")
	admin.HandleFunc("/control", s.GetControlStatus).Methods("GET")
	admin.HandleFunc("/control/disable", s.DisableAPI).Methods("POST")
	admin.HandleFunc("/control/enable", s.EnableAPI).Methods("POST")
	admin.HandleFunc("/faults", s.SetFault).Methods("POST")
	admin.HandleFunc("/faults", s.ClearFaults).Methods("DELETE")

	return r
}

// NotFoundHandler handles 404 errors
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}
