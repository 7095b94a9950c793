package handlers

import (
	stderrors "errors"
	"net/http"

	"redirector/internal/common/logging"
	"redirector/internal/ingest"
)

// ImportResponse reports the outcome of a rule import
type ImportResponse struct {
	Message string        `json:"message"`
	Skipped []ingest.Skip `json:"skipped"`
}

// ImportRedirects loads redirect rules from a CSV or JSON payload
// @Summary Import redirect rules
// @Description Loads rules from text/csv (header row) or application/json (an array, or an object with a data array). Rows that cannot be loaded are reported as skipped.
// @Tags redirects
// @Accept json
// @Accept text/csv
// @Produce json
// @Success 200 {object} ImportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /redirect [post]
func (h *Handlers) ImportRedirects(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.config.MaxImportBytes)
	defer body.Close()

	records, err := ingest.Decode(r.Header.Get("Content-Type"), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "import payload too large")
		case stderrors.Is(err, ingest.ErrMalformedPayload):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, "failed to read request body")
		}
		return
	}

	result, err := h.importer.Import(r.Context(), records)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.logger.WithContext(r.Context()).Info("Rules imported",
		logging.Field{Key: "rows", Value: len(records)},
		logging.Field{Key: "loaded", Value: result.Success},
		logging.Field{Key: "skipped", Value: len(result.Skipped)},
	)

	writeJSON(w, http.StatusOK, ImportResponse{
		Message: result.Message(),
		Skipped: result.Skipped,
	})
}
