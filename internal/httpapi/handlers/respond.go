package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sawpanic/marketintel/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErrFromErr maps an apperrors kind to the §7 status code
// convention; unrecognized errors surface as 500 (programming error
// propagation, per §7's research-path policy).
func writeErrFromErr(w http.ResponseWriter, err error) {
	var invalid *apperrors.InvalidInput
	var storage *apperrors.StorageUnavailable
	var transient *apperrors.TransientUpstream
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &storage):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &transient):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
