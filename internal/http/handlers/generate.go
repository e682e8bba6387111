package handlers

import (
	"net/http"
)

const maxUploadBytes = 32 << 20

type generateResponse struct {
	Status         string         `json:"status"`
	TaskID         string         `json:"task_id"`
	ResultImageURL string         `json:"result_image_url"`
	OriginalResult map[string]any `json:"original_result"`
}

// Generate accepts a plan image upload and blocks until the elevation
// generation reaches a terminal outcome.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	result, err := a.Service.Generate(r.Context(), header.Filename, file, a.requestOrigin(r))
	if err != nil {
		a.Logger.Error().Err(err).Str("request_id", requestID(r)).Msg("generation failed")
		a.error(w, http.StatusInternalServerError, "generation_failed", err.Error())
		return
	}

	a.json(w, http.StatusOK, generateResponse{
		Status:         "success",
		TaskID:         result.TaskID,
		ResultImageURL: result.ResultImageURL,
		OriginalResult: result.Raw,
	})
}
