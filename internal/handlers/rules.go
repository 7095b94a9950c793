package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"redirector/internal/common/errors"
	"redirector/internal/common/logging"
	"redirector/internal/common/pagination"
	"redirector/internal/common/validation"
	"redirector/internal/ingest"
	"redirector/internal/redirect"
	"redirector/internal/storage"
)

// RuleRequest is the body of PUT /rule/{id}
type RuleRequest struct {
	Path         string `json:"path" validate:"required,rule_path"`
	Host         string `json:"host" validate:"rule_host"`
	Version      *int   `json:"version" validate:"omitempty,gte=0"`
	RedirectURL  string `json:"redirectURL" validate:"required"`
	StatusCode   int    `json:"statusCode" validate:"omitempty,redirect_status"`
	UTCStartTime *int64 `json:"utcStartTime"`
	UTCEndTime   *int64 `json:"utcEndTime"`
	Operations   string `json:"operations"`
	Regex        bool   `json:"regex"`
}

// CountResponse carries a record count
type CountResponse struct {
	RecordCount int `json:"recordCount"`
}

// DeletedResponse carries how many records were removed
type DeletedResponse struct {
	Deleted int `json:"deleted"`
}

// CountRules returns the number of stored rules
// @Summary Count rules
// @Tags rules
// @Produce json
// @Success 200 {object} CountResponse
// @Router /rule [get]
func (h *Handlers) CountRules(w http.ResponseWriter, r *http.Request) {
	count, err := h.storage.CountRules(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{RecordCount: count})
}

// ListRules returns one page of rules in insertion order
// @Summary List rules
// @Tags rules
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param perPage query int false "Rules per page (default: 50, max: 500)"
// @Param offset query int false "Offset overriding page"
// @Success 200 {object} pagination.Response[storage.Rule]
// @Router /rules [get]
func (h *Handlers) ListRules(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)

	count, err := h.storage.CountRules(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	rules, err := h.storage.ListRules(r.Context(), params.Limit, params.Offset)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pagination.NewResponse(rules, params, count))
}

// GetRule returns a single rule
// @Summary Get rule
// @Tags rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} storage.Rule
// @Failure 404 {object} ErrorResponse
// @Router /rule/{id} [get]
func (h *Handlers) GetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.storage.GetRule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// PutRule creates the rule with the given id or replaces it
// @Summary Create or replace rule
// @Description Stores the rule under the given id. A missing version keeps the current one, or the active version for new rules.
// @Tags rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body RuleRequest true "Rule"
// @Success 200 {object} storage.Rule "Replaced"
// @Success 201 {object} storage.Rule "Created"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /rule/{id} [put]
func (h *Handlers) PutRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var req RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.handleError(w, r, err)
		return
	}

	existing, err := h.storage.GetRule(ctx, id)
	if err != nil && !errors.IsType(err, errors.ErrTypeNotFound) {
		h.handleError(w, r, err)
		return
	}

	rule := &storage.Rule{
		ID:           id,
		Path:         req.Path,
		Host:         req.Host,
		RedirectURL:  req.RedirectURL,
		StatusCode:   req.StatusCode,
		UTCStartTime: req.UTCStartTime,
		UTCEndTime:   req.UTCEndTime,
		Operations:   req.Operations,
		Regex:        req.Regex,
	}
	if rule.StatusCode == 0 {
		rule.StatusCode = storage.DefaultStatusCode
	}

	switch {
	case req.Version != nil:
		rule.Version = *req.Version
	case existing != nil:
		rule.Version = existing.Version
	default:
		if rule.Version, err = redirect.ResolveVersion(ctx, h.storage, nil); err != nil {
			h.handleError(w, r, err)
			return
		}
	}

	if err := ingest.Canonicalize(rule); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if existing == nil {
		stored, err := h.storage.InsertRule(ctx, rule)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, stored)
		return
	}

	rule.LastAccessed = existing.LastAccessed
	if err := h.storage.UpdateRule(ctx, rule); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.logger.WithContext(ctx).Info("Rule replaced", logging.Field{Key: "id", Value: id})
	writeJSON(w, http.StatusOK, rule)
}

// DeleteRule removes a single rule
// @Summary Delete rule
// @Tags rules
// @Param id path string true "Rule ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /rule/{id} [delete]
func (h *Handlers) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteRule(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAllRules clears the rule table
// @Summary Delete all rules
// @Tags rules
// @Produce json
// @Success 200 {object} DeletedResponse
// @Router /rule [delete]
func (h *Handlers) DeleteAllRules(w http.ResponseWriter, r *http.Request) {
	n, err := h.storage.DeleteAllRules(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.logger.WithContext(r.Context()).Info("Rules cleared", logging.Field{Key: "deleted", Value: n})
	writeJSON(w, http.StatusOK, DeletedResponse{Deleted: n})
}
