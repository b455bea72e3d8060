package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"saccos-core/internal/services"
)

type DeductionHandler struct {
	deductionService *services.DeductionService
}

func NewDeductionHandler(deductionService *services.DeductionService) *DeductionHandler {
	return &DeductionHandler{deductionService: deductionService}
}

func (h *DeductionHandler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var request struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	batch, items, err := h.deductionService.GenerateBatch(actor, request.Month, request.Year)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"request": batch,
		"items":   items,
	})
}

func (h *DeductionHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	requestID := mux.Vars(r)["request_id"]

	// Render into a buffer first so a service error still responds as JSON
	// instead of a half-written attachment.
	var buf bytes.Buffer
	if err := h.deductionService.ExportCSV(actor, requestID, &buf); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="deductions-%s.csv"`, requestID))
	w.Write(buf.Bytes())
}

func (h *DeductionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	requestID := mux.Vars(r)["request_id"]
	request, err := h.deductionService.Submit(actor, requestID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "Deduction batch submitted",
		Data:    request,
	})
}
