package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
)

// Filter defaults.
const (
	defaultPage   = 1
	defaultLimit  = 10
	maxLimit      = 100
	defaultSortBy = "createdAt"
)

// ParseListQuery converts /filter query parameters to a ListQuery.
func ParseListQuery(v url.Values) (model.ListQuery, error) {
	q := model.ListQuery{
		Page:     defaultPage,
		Limit:    defaultLimit,
		SortBy:   defaultSortBy,
		SortDesc: true,
		Search:   strings.TrimSpace(v.Get("search")),
		Status:   v.Get("status"),
		UserID:   v.Get("userId"),
	}

	var err error
	if q.Page, err = positiveInt(v, "page", defaultPage); err != nil {
		return q, err
	}
	if q.Limit, err = positiveInt(v, "limit", defaultLimit); err != nil {
		return q, err
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	if s := v.Get("sortBy"); s != "" {
		if !model.SortableFields[s] {
			return q, badRequest("sortBy %q is not sortable", s)
		}
		q.SortBy = s
	}

	switch strings.ToLower(v.Get("sortOrder")) {
	case "", "desc":
		q.SortDesc = true
	case "asc":
		q.SortDesc = false
	default:
		return q, badRequest("sortOrder must be asc or desc")
	}

	return q, nil
}

func positiveInt(v url.Values, key string, def int) (int, error) {
	s := v.Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, badRequest("%s must be a positive integer", key)
	}
	return n, nil
}

// PageCount returns the number of pages needed for total items.
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
