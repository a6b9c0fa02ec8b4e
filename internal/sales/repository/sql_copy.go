package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/gorm"
)

var salesCopyColumns = []string{
	"id", "customer_id", "customer_name", "phone_number", "gender", "age",
	"customer_region", "customer_type", "product_id", "product_name", "brand",
	"product_category", "tags", "quantity", "price_per_unit", "discount_percentage",
	"total_amount", "final_amount", "sale_date", "payment_method", "order_status",
	"delivery_type", "store_id", "store_location", "salesperson_id", "employee_name",
}

var saleTagsCopyColumns = []string{"sale_id", "tag"}

// copyRows streams a batch into postgres with COPY inside one transaction.
func copyRows(ctx context.Context, db *gorm.DB, sales []saleRow, tags []saleTagRow) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return conn.Raw(func(driverConn any) error {
		stdConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return errors.New("copy requires a pgx connection")
		}

		tx, err := stdConn.Conn().Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		saleSource, err := salesCopySource(sales)
		if err != nil {
			return err
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"sales"}, salesCopyColumns, saleSource); err != nil {
			return fmt.Errorf("copy sales: %w", err)
		}

		if len(tags) > 0 {
			tagSource := pgx.CopyFromSlice(len(tags), func(i int) ([]any, error) {
				return []any{tags[i].SaleID, tags[i].Tag}, nil
			})
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{"sale_tags"}, saleTagsCopyColumns, tagSource); err != nil {
				return fmt.Errorf("copy sale_tags: %w", err)
			}
		}
		return tx.Commit(ctx)
	})
}

func salesCopySource(sales []saleRow) (pgx.CopyFromSource, error) {
	values := make([][]any, 0, len(sales))
	for _, s := range sales {
		tags, err := json.Marshal([]string(s.Tags))
		if err != nil {
			return nil, err
		}
		values = append(values, []any{
			s.ID, s.CustomerID, s.CustomerName, s.PhoneNumber, s.Gender, int32(s.Age),
			s.CustomerRegion, s.CustomerType, s.ProductID, s.ProductName, s.Brand,
			s.ProductCategory, json.RawMessage(tags), int32(s.Quantity), s.PricePerUnit, s.DiscountPercentage,
			s.TotalAmount, s.FinalAmount, s.SaleDate, s.PaymentMethod, s.OrderStatus,
			s.DeliveryType, s.StoreID, s.StoreLocation, s.SalespersonID, s.EmployeeName,
		})
	}
	return pgx.CopyFromRows(values), nil
}
