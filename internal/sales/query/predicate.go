package query

import (
	"slices"
	"strings"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
)

// Match reports whether t satisfies every constraint in q.
func Match(t domain.Transaction, q domain.QuerySpec) bool {
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(t.CustomerName), term) &&
			!strings.Contains(strings.ToLower(t.PhoneNumber), term) {
			return false
		}
	}

	if !accepts(q.Filters.Region, t.CustomerRegion) ||
		!accepts(q.Filters.Gender, t.Gender) ||
		!accepts(q.Filters.Category, t.ProductCategory) ||
		!accepts(q.Filters.PaymentMethod, t.PaymentMethod) {
		return false
	}

	if len(q.Filters.Tags) > 0 && !slices.ContainsFunc(t.Tags, func(tag string) bool {
		return slices.Contains(q.Filters.Tags, tag)
	}) {
		return false
	}

	age := float64(t.Age)
	if q.AgeMin != nil && age < *q.AgeMin {
		return false
	}
	if q.AgeMax != nil && age > *q.AgeMax {
		return false
	}

	if q.DateStart != nil && t.Date.Before(*q.DateStart) {
		return false
	}
	if q.DateEnd != nil && t.Date.After(*q.DateEnd) {
		return false
	}
	return true
}

// Filter returns the matching transactions in input order. The input slice
// is not modified.
func Filter(items []domain.Transaction, q domain.QuerySpec) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(items))
	for _, t := range items {
		if Match(t, q) {
			out = append(out, t)
		}
	}
	return out
}

func accepts(set []string, value string) bool {
	return len(set) == 0 || slices.Contains(set, value)
}
