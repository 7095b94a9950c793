package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"redirector/internal/common/errors"
	"redirector/internal/ingest"
	"redirector/internal/redirect"
)

// Resolution query parameters
const (
	paramPath        = "path"
	paramHost        = "h"
	paramVersion     = "v"
	paramHostOnly    = "ho"
	paramTime        = "t"
	paramQueryString = "qs"
	paramIgnoreSlash = "si"

	// qs=m matches against the path with its query string
	queryStringMatch = "m"
)

// CheckRedirect resolves a path to its redirect rule
// @Summary Resolve a redirect
// @Description Finds the rule for a path and returns it with the final redirectURL
// @Tags redirects
// @Produce json
// @Param path query string false "Path or URL to resolve; falls back to the Path header"
// @Param h query string false "Host override"
// @Param v query int false "Rule-set version override"
// @Param ho query int false "Host-only override (1 or 0)"
// @Param t query int false "Evaluation instant in epoch seconds"
// @Param qs query string false "m matches the path including its query string"
// @Param si query int false "1 ignores a trailing slash"
// @Success 200 {object} storage.Rule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /checkredirect [get]
func (h *Handlers) CheckRedirect(w http.ResponseWriter, r *http.Request) {
	req, err := parseResolveRequest(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	rule, err := h.resolver.Resolve(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if rule == nil {
		writeError(w, http.StatusNotFound, "redirect not found")
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

func parseResolveRequest(r *http.Request) (redirect.Request, error) {
	q := r.URL.Query()

	req := redirect.Request{
		Host:        q.Get(paramHost),
		MatchQuery:  q.Get(paramQueryString) == queryStringMatch,
		IgnoreSlash: flagSet(q, paramIgnoreSlash),
	}

	if _, ok := q[paramPath]; ok {
		req.Path = q.Get(paramPath)
	} else {
		req.Path = r.Header.Get("Path")
	}
	if req.Path == "" {
		return req, errors.ValidationError("path is required")
	}

	// an unreadable v falls back to the active version
	if raw, ok := lookup(q, paramVersion); ok {
		if v, ok := ingest.ParseLeadingInt(raw); ok {
			version := int(v)
			req.Version = &version
		}
	}

	if _, ok := lookup(q, paramHostOnly); ok {
		hostOnly := flagSet(q, paramHostOnly)
		req.HostOnly = &hostOnly
	}

	// and an unreadable t means now
	if raw, ok := lookup(q, paramTime); ok {
		if t, ok := ingest.ParseLeadingInt(raw); ok {
			req.At = t
		}
	}

	return req, nil
}

// lookup returns the trimmed value of key when it was given a non-empty value
func lookup(q url.Values, key string) (string, bool) {
	v := strings.TrimSpace(q.Get(key))
	return v, v != ""
}

// flagSet reports whether key holds 1 in any numeric spelling
func flagSet(q url.Values, key string) bool {
	v, ok := lookup(q, key)
	if !ok {
		return false
	}
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && f == 1
}
