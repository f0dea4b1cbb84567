package handlers

import (
	"net/http"
	"strconv"

	"github.com/agrostats/faostat-api/api/query"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ParsePagination reads limit/offset from the request. A limit above the
// server cap or a negative offset is a client error rather than a silent
// clamp, so callers learn the cap instead of getting truncated pages.
func ParsePagination(r *http.Request, defaultLimit int) (query.Page, error) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	page := query.Page{Limit: defaultLimit, Offset: 0}

	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return page, query.BadRequest("limit must be a positive integer, got %q", l)
		}
		if parsed > MaxLimit {
			return page, query.Validation("limit_over_cap", "limit must be at most %d", MaxLimit)
		}
		page.Limit = parsed
	}

	if o := r.URL.Query().Get("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			return page, query.BadRequest("offset must be a non-negative integer, got %q", o)
		}
		page.Offset = parsed
	}

	return page, nil
}
