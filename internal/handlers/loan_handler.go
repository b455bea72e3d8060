package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"saccos-core/internal/models"
	"saccos-core/internal/services"
)

type LoanHandler struct {
	workflowService *services.LoanWorkflowService
}

func NewLoanHandler(workflowService *services.LoanWorkflowService) *LoanHandler {
	return &LoanHandler{workflowService: workflowService}
}

func (h *LoanHandler) Apply(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var request struct {
		MemberID        string `json:"member_id"`
		ProductID       string `json:"product_id"`
		PrincipalAmount string `json:"principal_amount"`
		TermMonths      int    `json:"term_months"`
		Purpose         string `json:"purpose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	principal, err := decimal.NewFromString(request.PrincipalAmount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid principal_amount")
		return
	}

	loan, err := h.workflowService.Apply(actor, services.ApplyInput{
		MemberID:        request.MemberID,
		ProductID:       request.ProductID,
		PrincipalAmount: principal,
		TermMonths:      request.TermMonths,
		Purpose:         request.Purpose,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, loan)
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	loanID := mux.Vars(r)["loan_id"]
	loan, guarantors, logs, err := h.workflowService.GetLoan(actor, loanID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"loan":         loan,
		"guarantors":   guarantors,
		"workflow_log": logs,
	})
}

func (h *LoanHandler) RunEligibilityCheck(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	loanID := mux.Vars(r)["loan_id"]
	result, err := h.workflowService.RunEligibilityCheck(actor, loanID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *LoanHandler) RequestGuarantors(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var request struct {
		Guarantors []struct {
			GuarantorMemberID string `json:"guarantor_member_id"`
			GuaranteedAmount  string `json:"guaranteed_amount"`
		} `json:"guarantors"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	inputs := make([]services.GuarantorInput, 0, len(request.Guarantors))
	for _, g := range request.Guarantors {
		amount, err := decimal.NewFromString(g.GuaranteedAmount)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid guaranteed_amount")
			return
		}
		inputs = append(inputs, services.GuarantorInput{
			GuarantorMemberID: g.GuarantorMemberID,
			GuaranteedAmount:  amount,
		})
	}

	loanID := mux.Vars(r)["loan_id"]
	loan, err := h.workflowService.RequestGuarantors(actor, loanID, inputs)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, loan)
}

func (h *LoanHandler) AssignOfficer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var request struct {
		OfficerID string `json:"officer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if request.OfficerID == "" {
		respondWithError(w, http.StatusBadRequest, "officer_id is required")
		return
	}

	loanID := mux.Vars(r)["loan_id"]
	loan, err := h.workflowService.AssignOfficer(actor, loanID, request.OfficerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, loan)
}

func (h *LoanHandler) SubmitRecommendation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var request struct {
		Notes          string `json:"notes"`
		Recommendation string `json:"recommendation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	loanID := mux.Vars(r)["loan_id"]
	loan, err := h.workflowService.SubmitOfficerRecommendation(actor, loanID, request.Notes, request.Recommendation)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, loan)
}

func (h *LoanHandler) RecordVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var request struct {
		Vote  string `json:"vote"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	loanID := mux.Vars(r)["loan_id"]
	tally, err := h.workflowService.RecordCommitteeVote(actor, loanID, models.VoteChoice(request.Vote), request.Notes)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, tally)
}

func (h *LoanHandler) FinalizeDecision(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	loanID := mux.Vars(r)["loan_id"]
	result, err := h.workflowService.FinalizeCommitteeDecision(actor, loanID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *LoanHandler) GetMinutes(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	loanID := mux.Vars(r)["loan_id"]
	minutes, err := h.workflowService.GenerateMinutes(actor, loanID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, minutes)
}

func (h *LoanHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var request struct {
		Method  string `json:"method"`
		Account string `json:"account"`
		Notes   string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	loanID := mux.Vars(r)["loan_id"]
	loan, err := h.workflowService.Disburse(actor, loanID, services.DisburseInput{
		Method:  request.Method,
		Account: request.Account,
		Notes:   request.Notes,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, loan)
}

func (h *LoanHandler) PortfolioAtRisk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid as_of format. Use YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	report, err := h.workflowService.PortfolioAtRisk(actor, asOf)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
