package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers mounted by the router.
type Handlers struct {
	Loan           *LoanHandler
	Guarantor      *GuarantorHandler
	Deduction      *DeductionHandler
	Reconciliation *ReconciliationHandler
}

func SetupRouter(h Handlers, log *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware(log))

	api.HandleFunc("/loans", h.Loan.Apply).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loan_id}", h.Loan.Get).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loan_id}/eligibility-check", h.Loan.RunEligibilityCheck).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loan_id}/guarantors", h.Loan.RequestGuarantors).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loan_id}/guarantors", h.Guarantor.ListByLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loan_id}/assign-officer", h.Loan.AssignOfficer).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loan_id}/recommendation", h.Loan.SubmitRecommendation).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loan_id}/votes", h.Loan.RecordVote).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loan_id}/finalize", h.Loan.FinalizeDecision).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loan_id}/minutes", h.Loan.GetMinutes).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loan_id}/disburse", h.Loan.Disburse).Methods(http.MethodPost)

	api.HandleFunc("/pledges/{pledge_id}/respond", h.Guarantor.Respond).Methods(http.MethodPost)

	api.HandleFunc("/deductions", h.Deduction.GenerateBatch).Methods(http.MethodPost)
	api.HandleFunc("/deductions/{request_id}/export", h.Deduction.ExportCSV).Methods(http.MethodGet)
	api.HandleFunc("/deductions/{request_id}/submit", h.Deduction.Submit).Methods(http.MethodPost)

	api.HandleFunc("/reconciliations", h.Reconciliation.Reconcile).Methods(http.MethodPost)
	api.HandleFunc("/reconciliations/{batch_id}", h.Reconciliation.GetBatch).Methods(http.MethodGet)

	api.HandleFunc("/reports/portfolio-at-risk", h.Loan.PortfolioAtRisk).Methods(http.MethodGet)

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	return router
}

func loggingMiddleware(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
