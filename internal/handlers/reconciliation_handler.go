package handlers

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"saccos-core/internal/services"
)

type ReconciliationHandler struct {
	reconciliationService *services.ReconciliationService
	processingMutex       sync.Mutex
	activeProcesses       map[string]bool
}

func NewReconciliationHandler(reconciliationService *services.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
		activeProcesses:       make(map[string]bool),
	}
}

// Reconcile accepts the payroll authority's actual deductions file as a
// multipart upload and runs the period diff. Concurrent runs for the same
// tenant-period are rejected up front.
func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	month, err := strconv.Atoi(r.FormValue("month"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid month")
		return
	}
	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid year")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "A CSV file upload is required")
		return
	}
	defer file.Close()

	processKey := actor.TenantID + "_" + strconv.Itoa(year) + "-" + strconv.Itoa(month)

	h.processingMutex.Lock()
	if h.activeProcesses[processKey] {
		h.processingMutex.Unlock()
		respondWithError(w, http.StatusConflict, "Reconciliation for this period is already in progress")
		return
	}
	h.activeProcesses[processKey] = true
	h.processingMutex.Unlock()

	defer func() {
		h.processingMutex.Lock()
		delete(h.activeProcesses, processKey)
		h.processingMutex.Unlock()
	}()

	result, err := h.reconciliationService.Reconcile(actor, month, year, file)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ReconciliationHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	batchID := mux.Vars(r)["batch_id"]
	result, err := h.reconciliationService.GetBatch(actor, batchID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
