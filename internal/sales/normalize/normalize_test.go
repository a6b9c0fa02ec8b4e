package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"iso", "2023-03-15", day(2023, time.March, 15), true},
		{"iso with time", "2023-03-15T10:00:00Z", day(2023, time.March, 15), true},
		{"iso single digits", "2023-3-5", day(2023, time.March, 5), true},
		{"day first slash", "15/03/2023", day(2023, time.March, 15), true},
		{"day first dash", "5-3-2023", day(2023, time.March, 5), true},
		{"generic long month", "March 15, 2023", day(2023, time.March, 15), true},
		{"generic short month", "Mar 15, 2023", day(2023, time.March, 15), true},
		{"year first slash", "2023/03/15", day(2023, time.March, 15), true},
		{"padded", "  2021-10-01  ", day(2021, time.October, 1), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not-a-date", time.Time{}, false},
		{"month 13", "2023-13-01", time.Time{}, false},
		{"feb 30", "30/02/2023", time.Time{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDate(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestNormalizeHeaderSpelling(t *testing.T) {
	row := Row{
		"Customer ID":         " CUST-1 ",
		"Customer Name":       "Neha Shah",
		"Phone Number":        "9876543210",
		"Gender":              "Female",
		"Age":                 "34",
		"Customer Region":     "North",
		"Product Category":    "Beauty",
		"Tags":                "organic, skincare,, ",
		"Quantity":            "3",
		"Price per Unit":      "₹1,250.50",
		"Discount Percentage": "10%",
		"Total Amount":        "3751.5",
		"Final Amount":        "3376.35",
		"Date":                "2023-03-15",
		"Payment Method":      "UPI",
	}

	tx, ok := Normalize(row)
	require.True(t, ok)

	assert.Equal(t, "CUST-1", tx.CustomerID)
	assert.Equal(t, "Neha Shah", tx.CustomerName)
	assert.Equal(t, 34, tx.Age)
	assert.Equal(t, []string{"organic", "skincare"}, tx.Tags)
	assert.Equal(t, 3, tx.Quantity)
	assert.InDelta(t, 1250.50, tx.PricePerUnit, 1e-9)
	assert.InDelta(t, 10, tx.DiscountPercentage, 1e-9)
	assert.Equal(t, "UPI", tx.PaymentMethod)
	assert.Equal(t, "", tx.Brand)
}

func TestNormalizeCamelCaseFallback(t *testing.T) {
	tx, ok := Normalize(Row{
		"customerName": "Ravi",
		"age":          "abc",
		"quantity":     "",
		"date":         "01/02/2022",
	})
	require.True(t, ok)
	assert.Equal(t, "Ravi", tx.CustomerName)
	assert.Equal(t, 0, tx.Age)
	assert.Equal(t, 0, tx.Quantity)
	assert.Equal(t, time.Date(2022, time.February, 1, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Empty(t, tx.Tags)
}

func TestNormalizeDropsRowWithoutDate(t *testing.T) {
	_, ok := Normalize(Row{"Customer Name": "No Date", "Date": "sometime"})
	assert.False(t, ok)

	_, ok = Normalize(Row{"Customer Name": "Missing"})
	assert.False(t, ok)
}

func TestNumber(t *testing.T) {
	assert.Equal(t, 0.0, Number(""))
	assert.Equal(t, 0.0, Number("n/a"))
	assert.Equal(t, -12.5, Number("-12.5"))
	assert.Equal(t, 1000.0, Number("1,000"))
	assert.Equal(t, 0.0, Number("1.2.3"))
}

func TestNegativeAgeClampsToZero(t *testing.T) {
	tx, ok := Normalize(Row{"Age": "-4", "Date": "2023-01-01"})
	require.True(t, ok)
	assert.Equal(t, 0, tx.Age)
}
