package query

import (
	"cmp"
	"slices"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/pkg/db/pagination"
)

// Sort orders items in place by the spec's sort key. Equal keys keep their
// relative order.
func Sort(items []domain.Transaction, field domain.SortField, order domain.SortOrder) {
	compare := comparator(field)
	slices.SortStableFunc(items, func(a, b domain.Transaction) int {
		if order == domain.SortAsc {
			return compare(a, b)
		}
		return compare(b, a)
	})
}

func comparator(field domain.SortField) func(a, b domain.Transaction) int {
	switch field {
	case domain.SortByQuantity:
		return func(a, b domain.Transaction) int { return cmp.Compare(a.Quantity, b.Quantity) }
	case domain.SortByCustomerName:
		return func(a, b domain.Transaction) int { return cmp.Compare(a.CustomerName, b.CustomerName) }
	case domain.SortByTotalAmount:
		return func(a, b domain.Transaction) int { return cmp.Compare(a.TotalAmount, b.TotalAmount) }
	case domain.SortByFinalAmount:
		return func(a, b domain.Transaction) int { return cmp.Compare(a.FinalAmount, b.FinalAmount) }
	default:
		return func(a, b domain.Transaction) int { return a.Date.Compare(b.Date) }
	}
}

// Paginate returns the requested page of items.
func Paginate(items []domain.Transaction, page, limit int) []domain.Transaction {
	start, end := pagination.Pagination{Page: page, Limit: limit}.Window(len(items))
	return items[start:end]
}

// Apply filters, sorts and pages items according to q, returning the page
// and the number of matches before pagination.
func Apply(items []domain.Transaction, q domain.QuerySpec) domain.Page {
	matched := Filter(items, q)
	Sort(matched, q.SortField, q.SortOrder)
	return domain.Page{
		Items: Paginate(matched, q.Page, q.Limit),
		Total: int64(len(matched)),
	}
}
