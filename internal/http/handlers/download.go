package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JacobItopa/plan-elevation/internal/elevation"
)

// Download streams a finished elevation back to the caller, keyed only by
// task id. It always re-queries the remote status, never a cached result.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("task_id")
	if taskID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "missing task_id")
		return
	}

	body, contentType, filename, err := a.Service.Fetch(r.Context(), taskID)
	if err != nil {
		var unavailable *elevation.ResultUnavailableError
		var fetchFailed *elevation.FetchFailedError
		switch {
		case errors.As(err, &unavailable):
			a.error(w, http.StatusNotFound, "not_found", "image URL not found for this task (maybe expired or failed)")
		case errors.As(err, &fetchFailed):
			a.error(w, http.StatusBadRequest, "fetch_failed", "could not fetch image from source")
		default:
			a.Logger.Error().Err(err).Str("task_id", taskID).Msg("download failed")
			a.error(w, http.StatusInternalServerError, "internal", err.Error())
		}
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := elevation.CopyResult(w, body); err != nil {
		a.Logger.Warn().Err(err).Str("task_id", taskID).Msg("result stream interrupted")
	}
}
