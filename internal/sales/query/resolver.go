// Package query turns raw request parameters into a domain.QuerySpec and
// evaluates that spec over in-memory transactions.
package query

import (
	"strconv"
	"strings"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/internal/sales/normalize"
)

// Resolve builds a QuerySpec from raw request parameters. It never fails:
// malformed values fall back to their defaults or leave the bound unset.
func Resolve(req domain.ListRequest) domain.QuerySpec {
	spec := domain.QuerySpec{
		Search: strings.TrimSpace(req.Search),
		Filters: domain.Filters{
			Region:        parseList(req.Region),
			Gender:        parseList(req.Gender),
			Category:      parseList(req.Category),
			Tags:          parseList(req.Tags),
			PaymentMethod: parseList(req.PaymentMethod),
		},
		AgeMin:    parseBound(req.AgeMin),
		AgeMax:    parseBound(req.AgeMax),
		SortField: domain.SortByDate,
		SortOrder: domain.SortDesc,
		Page:      domain.DefaultPage,
		Limit:     domain.DefaultLimit,
	}

	if d, ok := normalize.ParseDate(req.DateStart); ok {
		spec.DateStart = &d
	}
	if d, ok := normalize.ParseDate(req.DateEnd); ok {
		spec.DateEnd = &d
	}

	if field := domain.SortField(strings.TrimSpace(req.SortField)); field.Valid() {
		spec.SortField = field
	}
	if strings.TrimSpace(req.SortOrder) == string(domain.SortAsc) {
		spec.SortOrder = domain.SortAsc
	}

	if page, ok := leadingInt(req.Page); ok && page > 0 {
		spec.Page = page
	}
	if limit, ok := leadingInt(req.Limit); ok && limit > 0 {
		spec.Limit = min(limit, domain.MaxLimit)
	}

	return spec
}

func parseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

func parseBound(raw string) *float64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &n
}

// leadingInt reads an optional sign followed by the leading decimal digits,
// ignoring anything after them ("3abc" is 3).
func leadingInt(raw string) (int, bool) {
	value := strings.TrimSpace(raw)
	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	digitsFrom := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digitsFrom {
		return 0, false
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		// out of range for int; treat an overflowing page as absent
		return 0, false
	}
	return n, true
}
