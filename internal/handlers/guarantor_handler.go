package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"saccos-core/internal/services"
)

type GuarantorHandler struct {
	guarantorService *services.GuarantorService
}

func NewGuarantorHandler(guarantorService *services.GuarantorService) *GuarantorHandler {
	return &GuarantorHandler{guarantorService: guarantorService}
}

func (h *GuarantorHandler) Respond(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var request struct {
		Accept bool   `json:"accept"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	pledgeID := mux.Vars(r)["pledge_id"]
	pledge, err := h.guarantorService.RespondToPledge(actor, pledgeID, request.Accept, request.Reason)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "Pledge response recorded",
		Data:    pledge,
	})
}

func (h *GuarantorHandler) ListByLoan(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	loanID := mux.Vars(r)["loan_id"]
	pledges, err := h.guarantorService.ListPledges(actor, loanID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, pledges)
}
