package handlers

import (
	"net/url"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// pageParams reads page and limit from the query string. Missing, malformed or
// out-of-range values fall back to defaults rather than erroring.
func pageParams(query url.Values) (page, limit int) {
	page = defaultPage
	if raw := query.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	limit = defaultLimit
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit
}

// sortParams reads sortBy and sortType. The column is validated downstream
// against the store's whitelist; direction defaults to descending.
func sortParams(query url.Values) (sortBy string, asc bool) {
	return query.Get("sortBy"), query.Get("sortType") == "asc"
}

// totalPages computes the page count for a listing: ceil(total/limit).
func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
