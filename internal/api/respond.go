package api

import (
	"encoding/json"
	"net/http"

	"helios/internal/agents"
	"helios/internal/tools"
	"helios/pkg/errors"
	"helios/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondError maps domain errors onto HTTP status codes.
func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := http.StatusInternalServerError
	payload := map[string]string{"error": err.Error()}

	var (
		paramErr     *tools.InvalidParametersError
		execErr      *tools.ExecutionError
		staleErr     *agents.StaleToolReferenceError
		modelErr     *agents.ModelUnavailableError
		iterationErr *agents.IterationLimitExceededError
	)

	switch {
	case errors.Is(err, tools.ErrToolNotFound), errors.Is(err, agents.ErrAgentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tools.ErrDuplicateTool), errors.Is(err, agents.ErrAgentExists):
		status = http.StatusConflict
	case errors.Is(err, tools.ErrToolDisabled):
		status = http.StatusConflict
	case errors.As(err, &paramErr):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.As(err, &execErr):
		status = http.StatusBadGateway
		payload["category"] = string(execErr.Category)
	case errors.As(err, &staleErr):
		status = http.StatusConflict
		payload["tool"] = staleErr.Tool
	case errors.As(err, &modelErr):
		status = http.StatusServiceUnavailable
	case errors.As(err, &iterationErr):
		status = http.StatusUnprocessableEntity
	}

	if status >= 500 {
		log.Errorw("Request failed", "status", status, "error", err)
	}
	respondJSON(w, status, payload)
}
