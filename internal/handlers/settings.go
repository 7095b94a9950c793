package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"redirector/internal/common/errors"
	"redirector/internal/common/validation"
	"redirector/internal/redirect"
	"redirector/internal/storage"
)

// HostRequest is the body of PUT /hosts/{host}
type HostRequest struct {
	HostOnly bool `json:"hostOnly"`
}

// VersionRequest is the body of PUT /version
type VersionRequest struct {
	ActiveVersion *int `json:"activeVersion" validate:"required,gte=0"`
}

// VersionResponse reports the version requests resolve against by default
type VersionResponse struct {
	ActiveVersion int `json:"activeVersion"`
}

func hostParam(r *http.Request) (string, error) {
	host := strings.ToLower(mux.Vars(r)["host"])
	if err := validation.ValidateVar(host, "required,rule_host"); err != nil {
		return "", errors.ValidationError("invalid host")
	}
	return host, nil
}

// GetHost returns the matching policy of a host
// @Summary Get host policy
// @Tags hosts
// @Produce json
// @Param host path string true "Host name"
// @Success 200 {object} storage.HostConfig
// @Failure 404 {object} ErrorResponse
// @Router /hosts/{host} [get]
func (h *Handlers) GetHost(w http.ResponseWriter, r *http.Request) {
	host, err := hostParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	hosts, err := h.storage.SearchHosts(r.Context(), storage.Eq(storage.AttrHost, host))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if len(hosts) == 0 {
		writeError(w, http.StatusNotFound, "host not found")
		return
	}
	writeJSON(w, http.StatusOK, hosts[0])
}

// PutHost stores the matching policy of a host
// @Summary Set host policy
// @Description hostOnly keeps rules without a host from applying to this host
// @Tags hosts
// @Accept json
// @Produce json
// @Param host path string true "Host name"
// @Param policy body HostRequest true "Policy"
// @Success 200 {object} storage.HostConfig
// @Failure 400 {object} ErrorResponse
// @Router /hosts/{host} [put]
func (h *Handlers) PutHost(w http.ResponseWriter, r *http.Request) {
	host, err := hostParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req HostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	config := &storage.HostConfig{Host: host, HostOnly: req.HostOnly}
	if err := h.storage.PutHost(r.Context(), config); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, config)
}

// DeleteHost removes the matching policy of a host
// @Summary Delete host policy
// @Tags hosts
// @Param host path string true "Host name"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /hosts/{host} [delete]
func (h *Handlers) DeleteHost(w http.ResponseWriter, r *http.Request) {
	host, err := hostParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.storage.DeleteHost(r.Context(), host); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetVersion returns the active rule-set version
// @Summary Get active version
// @Tags versions
// @Produce json
// @Success 200 {object} VersionResponse
// @Router /version [get]
func (h *Handlers) GetVersion(w http.ResponseWriter, r *http.Request) {
	version, err := redirect.ResolveVersion(r.Context(), h.storage, nil)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VersionResponse{ActiveVersion: version})
}

// PutVersion sets the active rule-set version
// @Summary Set active version
// @Tags versions
// @Accept json
// @Produce json
// @Param version body VersionRequest true "Version"
// @Success 200 {object} VersionResponse
// @Failure 400 {object} ErrorResponse
// @Router /version [put]
func (h *Handlers) PutVersion(w http.ResponseWriter, r *http.Request) {
	var req VersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.handleError(w, r, err)
		return
	}

	version := &storage.VersionConfig{ID: storage.DefaultVersionID, ActiveVersion: *req.ActiveVersion}
	if err := h.storage.PutVersion(r.Context(), version); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VersionResponse{ActiveVersion: version.ActiveVersion})
}
