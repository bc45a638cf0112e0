package complaints

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultListLimit = 200
	maxListLimit     = 5000
)

// ListQuery carries the raw query parameters for the complaint listing
type ListQuery struct {
	Zona  *int   `form:"zona" binding:"omitempty,zona"`
	Tipo  string `form:"tipo"`
	Turno string `form:"turno"`
	Desde string `form:"desde"`
	Hasta string `form:"hasta"`
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=5000"`
}

// ListFilter is the parsed filter applied by the repository
type ListFilter struct {
	Zona  *int
	Tipo  string
	Turno string
	Desde *time.Time
	Hasta *time.Time
	Q     string
	Limit int
}

var listDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseListFilter validates and converts the raw query into a filter
func ParseListFilter(q ListQuery) (ListFilter, error) {
	filter := ListFilter{
		Zona:  q.Zona,
		Tipo:  strings.TrimSpace(q.Tipo),
		Turno: strings.TrimSpace(q.Turno),
		Q:     strings.TrimSpace(q.Q),
		Limit: q.Limit,
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	if q.Desde != "" {
		t, err := parseListDate(q.Desde)
		if err != nil {
			return ListFilter{}, fmt.Errorf("invalid desde date %q, expected YYYY-MM-DD", q.Desde)
		}
		filter.Desde = &t
	}
	if q.Hasta != "" {
		t, err := parseListDate(q.Hasta)
		if err != nil {
			return ListFilter{}, fmt.Errorf("invalid hasta date %q, expected YYYY-MM-DD", q.Hasta)
		}
		filter.Hasta = &t
	}

	return filter, nil
}

func parseListDate(v string) (time.Time, error) {
	for _, layout := range listDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date")
}
