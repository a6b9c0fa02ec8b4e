package repository

import (
	"strings"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sortColumns = map[domain.SortField]string{
	domain.SortByDate:         "sale_date",
	domain.SortByQuantity:     "quantity",
	domain.SortByCustomerName: "customer_name",
	domain.SortByTotalAmount:  "total_amount",
	domain.SortByFinalAmount:  "final_amount",
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// filterScope translates the filter part of q into WHERE clauses.
//
// Search lowercases both sides. Postgres and mysql fold unicode in LOWER;
// sqlite folds ASCII only, so non-ASCII searches on sqlite are case sensitive
// outside the ASCII range.
func filterScope(q domain.QuerySpec) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(q.Search)) + "%"
			db = db.Where("(LOWER(customer_name) LIKE ? ESCAPE '!' OR LOWER(phone_number) LIKE ? ESCAPE '!')", pattern, pattern)
		}
		if len(q.Filters.Region) > 0 {
			db = db.Where("customer_region IN ?", q.Filters.Region)
		}
		if len(q.Filters.Gender) > 0 {
			db = db.Where("gender IN ?", q.Filters.Gender)
		}
		if len(q.Filters.Category) > 0 {
			db = db.Where("product_category IN ?", q.Filters.Category)
		}
		if len(q.Filters.PaymentMethod) > 0 {
			db = db.Where("payment_method IN ?", q.Filters.PaymentMethod)
		}
		if len(q.Filters.Tags) > 0 {
			db = db.Where("EXISTS (SELECT 1 FROM sale_tags st WHERE st.sale_id = sales.id AND st.tag IN ?)", q.Filters.Tags)
		}
		if q.AgeMin != nil {
			db = db.Where("age >= ?", *q.AgeMin)
		}
		if q.AgeMax != nil {
			db = db.Where("age <= ?", *q.AgeMax)
		}
		if q.DateStart != nil {
			db = db.Where("sale_date >= ?", q.DateStart.UTC())
		}
		if q.DateEnd != nil {
			db = db.Where("sale_date <= ?", q.DateEnd.UTC())
		}
		return db
	}
}

// orderScope sorts by the requested column and breaks ties on insertion order.
func orderScope(q domain.QuerySpec) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := sortColumns[q.SortField]
		if !ok {
			column = sortColumns[domain.SortByDate]
		}
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.SortOrder != domain.SortAsc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
}
