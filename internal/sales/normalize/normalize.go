// Package normalize maps raw CSV rows and loosely typed documents onto
// domain.Transaction.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
)

// field pairs the CSV header spelling of a column with its camelCase key.
type field struct {
	header string
	key    string
}

var (
	fieldCustomerID         = field{"Customer ID", "customerId"}
	fieldCustomerName       = field{"Customer Name", "customerName"}
	fieldPhoneNumber        = field{"Phone Number", "phoneNumber"}
	fieldGender             = field{"Gender", "gender"}
	fieldAge                = field{"Age", "age"}
	fieldCustomerRegion     = field{"Customer Region", "customerRegion"}
	fieldCustomerType       = field{"Customer Type", "customerType"}
	fieldProductID          = field{"Product ID", "productId"}
	fieldProductName        = field{"Product Name", "productName"}
	fieldBrand              = field{"Brand", "brand"}
	fieldProductCategory    = field{"Product Category", "productCategory"}
	fieldTags               = field{"Tags", "tags"}
	fieldQuantity           = field{"Quantity", "quantity"}
	fieldPricePerUnit       = field{"Price per Unit", "pricePerUnit"}
	fieldDiscountPercentage = field{"Discount Percentage", "discountPercentage"}
	fieldTotalAmount        = field{"Total Amount", "totalAmount"}
	fieldFinalAmount        = field{"Final Amount", "finalAmount"}
	fieldDate               = field{"Date", "date"}
	fieldPaymentMethod      = field{"Payment Method", "paymentMethod"}
	fieldOrderStatus        = field{"Order Status", "orderStatus"}
	fieldDeliveryType       = field{"Delivery Type", "deliveryType"}
	fieldStoreID            = field{"Store ID", "storeId"}
	fieldStoreLocation      = field{"Store Location", "storeLocation"}
	fieldSalespersonID      = field{"Salesperson ID", "salespersonId"}
	fieldEmployeeName       = field{"Employee Name", "employeeName"}
)

// Row is a raw record keyed by column name.
type Row map[string]string

func (r Row) get(f field) string {
	if v, ok := r[f.header]; ok {
		return v
	}
	return r[f.key]
}

// Normalize converts a raw row into a Transaction. The second return value
// is false when the row has no parseable date; such rows must not be stored.
func Normalize(row Row) (domain.Transaction, bool) {
	date, ok := ParseDate(row.get(fieldDate))
	if !ok {
		return domain.Transaction{}, false
	}

	return domain.Transaction{
		CustomerID:     text(row.get(fieldCustomerID)),
		CustomerName:   text(row.get(fieldCustomerName)),
		PhoneNumber:    text(row.get(fieldPhoneNumber)),
		Gender:         text(row.get(fieldGender)),
		Age:            nonNegative(integer(row.get(fieldAge))),
		CustomerRegion: text(row.get(fieldCustomerRegion)),
		CustomerType:   text(row.get(fieldCustomerType)),

		ProductID:       text(row.get(fieldProductID)),
		ProductName:     text(row.get(fieldProductName)),
		Brand:           text(row.get(fieldBrand)),
		ProductCategory: text(row.get(fieldProductCategory)),
		Tags:            SplitTags(row.get(fieldTags)),

		Quantity:           integer(row.get(fieldQuantity)),
		PricePerUnit:       Number(row.get(fieldPricePerUnit)),
		DiscountPercentage: Number(row.get(fieldDiscountPercentage)),
		TotalAmount:        Number(row.get(fieldTotalAmount)),
		FinalAmount:        Number(row.get(fieldFinalAmount)),

		Date:          date,
		PaymentMethod: text(row.get(fieldPaymentMethod)),
		OrderStatus:   text(row.get(fieldOrderStatus)),
		DeliveryType:  text(row.get(fieldDeliveryType)),
		StoreID:       text(row.get(fieldStoreID)),
		StoreLocation: text(row.get(fieldStoreLocation)),
		SalespersonID: text(row.get(fieldSalespersonID)),
		EmployeeName:  text(row.get(fieldEmployeeName)),
	}, true
}

// SplitTags splits a comma-separated tag cell, dropping blanks and keeping order.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tags = append(tags, part)
	}
	return tags
}

// Number strips everything except digits, '.' and '-' and parses the rest.
// Unparseable input yields 0.
func Number(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return 0
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

func integer(raw string) int {
	n := Number(raw)
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0
	}
	return int(n)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func text(raw string) string {
	return strings.TrimSpace(raw)
}
