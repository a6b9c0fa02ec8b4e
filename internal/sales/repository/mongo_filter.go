package repository

import (
	"regexp"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var mongoSortKeys = map[domain.SortField]string{
	domain.SortByDate:         "date",
	domain.SortByQuantity:     "quantity",
	domain.SortByCustomerName: "customerName",
	domain.SortByTotalAmount:  "totalAmount",
	domain.SortByFinalAmount:  "finalAmount",
}

// BuildFilter translates the filter part of q into a mongo query document.
// An unrestricted spec yields an empty document.
func BuildFilter(q domain.QuerySpec) bson.D {
	filter := bson.D{}

	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "customerName", Value: pattern}},
			bson.D{{Key: "phoneNumber", Value: pattern}},
		}})
	}

	in := func(key string, values []string) {
		if len(values) > 0 {
			filter = append(filter, bson.E{Key: key, Value: bson.D{{Key: "$in", Value: values}}})
		}
	}
	in("customerRegion", q.Filters.Region)
	in("gender", q.Filters.Gender)
	in("productCategory", q.Filters.Category)
	in("tags", q.Filters.Tags)
	in("paymentMethod", q.Filters.PaymentMethod)

	if r := mongoRange(q.AgeMin, q.AgeMax); r != nil {
		filter = append(filter, bson.E{Key: "age", Value: r})
	}

	var start, end any
	if q.DateStart != nil {
		start = q.DateStart.UTC()
	}
	if q.DateEnd != nil {
		end = q.DateEnd.UTC()
	}
	if r := bounds(start, end); r != nil {
		filter = append(filter, bson.E{Key: "date", Value: r})
	}

	return filter
}

// BuildSort orders by the requested key and breaks ties on _id ascending.
func BuildSort(q domain.QuerySpec) bson.D {
	key, ok := mongoSortKeys[q.SortField]
	if !ok {
		key = mongoSortKeys[domain.SortByDate]
	}
	dir := -1
	if q.SortOrder == domain.SortAsc {
		dir = 1
	}
	return bson.D{{Key: key, Value: dir}, {Key: "_id", Value: 1}}
}

func mongoRange(min, max *float64) bson.D {
	var lo, hi any
	if min != nil {
		lo = *min
	}
	if max != nil {
		hi = *max
	}
	return bounds(lo, hi)
}

func bounds(lo, hi any) bson.D {
	if lo == nil && hi == nil {
		return nil
	}
	r := bson.D{}
	if lo != nil {
		r = append(r, bson.E{Key: "$gte", Value: lo})
	}
	if hi != nil {
		r = append(r, bson.E{Key: "$lte", Value: hi})
	}
	return r
}
