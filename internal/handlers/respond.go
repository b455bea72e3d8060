package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"saccos-core/internal/apperrors"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Error marshaling JSON response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithServiceError maps the error taxonomy onto HTTP status codes.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case apperrors.IsValidation(err):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case apperrors.IsStateConflict(err):
		respondWithError(w, http.StatusConflict, err.Error())
	case apperrors.IsAuthorization(err):
		respondWithError(w, http.StatusForbidden, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
