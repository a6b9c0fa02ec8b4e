package repository

import (
	"slices"
	"time"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"gorm.io/datatypes"
)

type saleRow struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	CustomerID     string `gorm:"column:customer_id;size:64;not null;default:''"`
	CustomerName   string `gorm:"column:customer_name;size:255;not null;default:'';index:idx_sales_customer_name"`
	PhoneNumber    string `gorm:"column:phone_number;size:64;not null;default:'';index:idx_sales_phone_number"`
	Gender         string `gorm:"column:gender;size:32;not null;default:'';index:idx_sales_gender"`
	Age            int    `gorm:"column:age;not null;default:0;index:idx_sales_age"`
	CustomerRegion string `gorm:"column:customer_region;size:64;not null;default:'';index:idx_sales_customer_region"`
	CustomerType   string `gorm:"column:customer_type;size:64;not null;default:''"`

	ProductID       string                      `gorm:"column:product_id;size:64;not null;default:''"`
	ProductName     string                      `gorm:"column:product_name;size:255;not null;default:''"`
	Brand           string                      `gorm:"column:brand;size:255;not null;default:''"`
	ProductCategory string                      `gorm:"column:product_category;size:64;not null;default:'';index:idx_sales_product_category"`
	Tags            datatypes.JSONSlice[string] `gorm:"column:tags"`

	Quantity           int     `gorm:"column:quantity;not null;default:0"`
	PricePerUnit       float64 `gorm:"column:price_per_unit;not null;default:0"`
	DiscountPercentage float64 `gorm:"column:discount_percentage;not null;default:0"`
	TotalAmount        float64 `gorm:"column:total_amount;not null;default:0"`
	FinalAmount        float64 `gorm:"column:final_amount;not null;default:0"`

	SaleDate      time.Time `gorm:"column:sale_date;not null;index:idx_sales_sale_date"`
	PaymentMethod string    `gorm:"column:payment_method;size:64;not null;default:'';index:idx_sales_payment_method"`
	OrderStatus   string    `gorm:"column:order_status;size:64;not null;default:''"`
	DeliveryType  string    `gorm:"column:delivery_type;size:64;not null;default:''"`
	StoreID       string    `gorm:"column:store_id;size:64;not null;default:''"`
	StoreLocation string    `gorm:"column:store_location;size:255;not null;default:''"`
	SalespersonID string    `gorm:"column:salesperson_id;size:64;not null;default:''"`
	EmployeeName  string    `gorm:"column:employee_name;size:255;not null;default:''"`
}

func (saleRow) TableName() string { return "sales" }

type saleTagRow struct {
	SaleID int64  `gorm:"column:sale_id;primaryKey;autoIncrement:false"`
	Tag    string `gorm:"column:tag;primaryKey;size:128;index:idx_sale_tags_tag"`
}

func (saleTagRow) TableName() string { return "sale_tags" }

// Models lists the GORM models backing the sql store.
func Models() []any {
	return []any{&saleRow{}, &saleTagRow{}}
}

func toSaleRow(id int64, t domain.Transaction) saleRow {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return saleRow{
		ID:                 id,
		CustomerID:         t.CustomerID,
		CustomerName:       t.CustomerName,
		PhoneNumber:        t.PhoneNumber,
		Gender:             t.Gender,
		Age:                t.Age,
		CustomerRegion:     t.CustomerRegion,
		CustomerType:       t.CustomerType,
		ProductID:          t.ProductID,
		ProductName:        t.ProductName,
		Brand:              t.Brand,
		ProductCategory:    t.ProductCategory,
		Tags:               datatypes.JSONSlice[string](tags),
		Quantity:           t.Quantity,
		PricePerUnit:       t.PricePerUnit,
		DiscountPercentage: t.DiscountPercentage,
		TotalAmount:        t.TotalAmount,
		FinalAmount:        t.FinalAmount,
		SaleDate:           t.Date.UTC(),
		PaymentMethod:      t.PaymentMethod,
		OrderStatus:        t.OrderStatus,
		DeliveryType:       t.DeliveryType,
		StoreID:            t.StoreID,
		StoreLocation:      t.StoreLocation,
		SalespersonID:      t.SalespersonID,
		EmployeeName:       t.EmployeeName,
	}
}

func (r saleRow) toDomain() domain.Transaction {
	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	return domain.Transaction{
		CustomerID:         r.CustomerID,
		CustomerName:       r.CustomerName,
		PhoneNumber:        r.PhoneNumber,
		Gender:             r.Gender,
		Age:                r.Age,
		CustomerRegion:     r.CustomerRegion,
		CustomerType:       r.CustomerType,
		ProductID:          r.ProductID,
		ProductName:        r.ProductName,
		Brand:              r.Brand,
		ProductCategory:    r.ProductCategory,
		Tags:               tags,
		Quantity:           r.Quantity,
		PricePerUnit:       r.PricePerUnit,
		DiscountPercentage: r.DiscountPercentage,
		TotalAmount:        r.TotalAmount,
		FinalAmount:        r.FinalAmount,
		Date:               r.SaleDate.UTC(),
		PaymentMethod:      r.PaymentMethod,
		OrderStatus:        r.OrderStatus,
		DeliveryType:       r.DeliveryType,
		StoreID:            r.StoreID,
		StoreLocation:      r.StoreLocation,
		SalespersonID:      r.SalespersonID,
		EmployeeName:       r.EmployeeName,
	}
}

// tagRows returns one membership row per distinct tag.
func tagRows(id int64, tags []string) []saleTagRow {
	out := make([]saleTagRow, 0, len(tags))
	seen := make([]string, 0, len(tags))
	for _, tag := range tags {
		if slices.Contains(seen, tag) {
			continue
		}
		seen = append(seen, tag)
		out = append(out, saleTagRow{SaleID: id, Tag: tag})
	}
	return out
}
