// Package pagination parses list parameters for the admin API and wraps
// pages of results.
package pagination

import (
	"net/http"
	"strconv"
)

// Params represents pagination parameters
type Params struct {
	Page    int
	PerPage int
	Limit   int
	Offset  int
}

// Response is one page of results
type Response[T any] struct {
	Page        int `json:"page"`
	PerPage     int `json:"perPage"`
	TotalPages  int `json:"totalPages"`
	RecordCount int `json:"recordCount"`
	Results     []T `json:"results"`
}

const (
	DefaultPerPage = 50
	MaxPerPage     = 500
)

// ParseParams reads page and perPage from the query string. An explicit
// offset takes precedence over page.
func ParseParams(r *http.Request) Params {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(q.Get("perPage"))
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	offset := (page - 1) * perPage
	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
			page = n/perPage + 1
		}
	}

	return Params{
		Page:    page,
		PerPage: perPage,
		Limit:   perPage,
		Offset:  offset,
	}
}

// NewResponse creates a page for p out of recordCount total records
func NewResponse[T any](results []T, p Params, recordCount int) Response[T] {
	if results == nil {
		results = []T{}
	}
	return Response[T]{
		Page:        p.Page,
		PerPage:     p.PerPage,
		TotalPages:  TotalPages(recordCount, p.PerPage),
		RecordCount: recordCount,
		Results:     results,
	}
}

// TotalPages is at least 1 so an empty store still has a first page
func TotalPages(recordCount, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	pages := (recordCount + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}
