package domain

import "time"

type SortField string

const (
	SortByDate         SortField = "date"
	SortByQuantity     SortField = "quantity"
	SortByCustomerName SortField = "customerName"
	SortByTotalAmount  SortField = "totalAmount"
	SortByFinalAmount  SortField = "finalAmount"
)

// Valid reports whether the field is one of the sortable columns.
func (f SortField) Valid() bool {
	switch f {
	case SortByDate, SortByQuantity, SortByCustomerName, SortByTotalAmount, SortByFinalAmount:
		return true
	default:
		return false
	}
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Filters holds the multi-select filters. An empty slice imposes no constraint.
type Filters struct {
	Region        []string
	Gender        []string
	Category      []string
	Tags          []string
	PaymentMethod []string
}

// QuerySpec is the resolved form of one request's search, filter, sort and page parameters.
type QuerySpec struct {
	Search  string
	Filters Filters

	AgeMin *float64
	AgeMax *float64

	// DateStart and DateEnd are calendar dates at UTC midnight.
	DateStart *time.Time
	DateEnd   *time.Time

	SortField SortField
	SortOrder SortOrder

	Page  int
	Limit int
}

// Unrestricted reports whether the spec filters nothing out.
func (q QuerySpec) Unrestricted() bool {
	return q.Search == "" &&
		len(q.Filters.Region) == 0 &&
		len(q.Filters.Gender) == 0 &&
		len(q.Filters.Category) == 0 &&
		len(q.Filters.Tags) == 0 &&
		len(q.Filters.PaymentMethod) == 0 &&
		q.AgeMin == nil && q.AgeMax == nil &&
		q.DateStart == nil && q.DateEnd == nil
}
