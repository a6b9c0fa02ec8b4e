// Package salestest provides deterministic transaction fixtures for tests.
package salestest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
)

var (
	Regions        = []string{"North", "South", "East", "West", "Central"}
	Genders        = []string{"Male", "Female"}
	Categories     = []string{"Beauty", "Clothing", "Electronics"}
	PaymentMethods = []string{"UPI", "Cash", "Credit Card", "Debit Card", "Wallet"}
	TagPool        = []string{"organic", "skincare", "casual", "gadgets", "wireless", "fashion", "accessories"}
	Names          = []string{"Neha Shah", "Ravi Kumar", "Anita Rao", "Arjun Mehta", "Sana Iqbal", "Vikram Singh", "Priya Nair", "Rahul Das"}
)

// Base is the first date Generate assigns.
var Base = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// Generate returns n pseudo-random transactions. The same seed always yields
// the same records.
func Generate(seed int64, n int) []domain.Transaction {
	rng := rand.New(rand.NewSource(seed))
	out := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		qty := 1 + rng.Intn(8)
		price := float64(50+rng.Intn(2000)) + float64(rng.Intn(100))/100
		discount := float64(rng.Intn(30))
		total := price * float64(qty)

		tags := make([]string, 0, 3)
		for _, tag := range TagPool {
			if rng.Intn(4) == 0 {
				tags = append(tags, tag)
			}
		}

		out = append(out, domain.Transaction{
			CustomerID:         fmt.Sprintf("CUST-%04d", rng.Intn(500)),
			CustomerName:       Names[rng.Intn(len(Names))],
			PhoneNumber:        fmt.Sprintf("98%08d", rng.Intn(100000000)),
			Gender:             Genders[rng.Intn(len(Genders))],
			Age:                18 + rng.Intn(50),
			CustomerRegion:     Regions[rng.Intn(len(Regions))],
			CustomerType:       "Regular",
			ProductID:          fmt.Sprintf("PROD-%03d", rng.Intn(200)),
			ProductName:        "Item",
			Brand:              "Brand",
			ProductCategory:    Categories[rng.Intn(len(Categories))],
			Tags:               tags,
			Quantity:           qty,
			PricePerUnit:       price,
			DiscountPercentage: discount,
			TotalAmount:        total,
			FinalAmount:        total * (1 - discount/100),
			Date:               Base.AddDate(0, 0, rng.Intn(365)),
			PaymentMethod:      PaymentMethods[rng.Intn(len(PaymentMethods))],
			OrderStatus:        "Completed",
			DeliveryType:       "Standard",
			StoreID:            fmt.Sprintf("ST-%02d", rng.Intn(20)),
			StoreLocation:      "Mumbai",
			SalespersonID:      fmt.Sprintf("EMP-%03d", rng.Intn(50)),
			EmployeeName:       "Staff",
		})
	}
	return out
}

// RandomSpec draws a QuerySpec over the value pools used by Generate.
func RandomSpec(rng *rand.Rand) domain.QuerySpec {
	spec := domain.QuerySpec{
		SortField: []domain.SortField{
			domain.SortByDate, domain.SortByQuantity, domain.SortByCustomerName,
			domain.SortByTotalAmount, domain.SortByFinalAmount,
		}[rng.Intn(5)],
		SortOrder: []domain.SortOrder{domain.SortAsc, domain.SortDesc}[rng.Intn(2)],
		Page:      1 + rng.Intn(3),
		Limit:     1 + rng.Intn(25),
	}

	if rng.Intn(3) == 0 {
		spec.Search = []string{"neha", "RAV", "ra", "98", "zzz", "a"}[rng.Intn(6)]
	}
	spec.Filters.Region = subset(rng, Regions)
	spec.Filters.Gender = subset(rng, Genders)
	spec.Filters.Category = subset(rng, Categories)
	spec.Filters.Tags = subset(rng, TagPool)
	spec.Filters.PaymentMethod = subset(rng, PaymentMethods)

	if rng.Intn(3) == 0 {
		v := float64(18 + rng.Intn(50))
		spec.AgeMin = &v
	}
	if rng.Intn(3) == 0 {
		v := float64(18 + rng.Intn(50))
		spec.AgeMax = &v
	}
	if rng.Intn(3) == 0 {
		d := Base.AddDate(0, 0, rng.Intn(365))
		spec.DateStart = &d
	}
	if rng.Intn(3) == 0 {
		d := Base.AddDate(0, 0, rng.Intn(365))
		spec.DateEnd = &d
	}
	return spec
}

func subset(rng *rand.Rand, pool []string) []string {
	if rng.Intn(2) == 0 {
		return nil
	}
	var out []string
	for _, v := range pool {
		if rng.Intn(2) == 0 {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		out = append(out, pool[rng.Intn(len(pool))])
	}
	return out
}
