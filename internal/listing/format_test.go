package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"realty-workers/internal/models"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    *int64
		expected string
	}{
		{name: "missing", price: nil, expected: "-"},
		{name: "zero", price: i64(0), expected: "-"},
		{name: "whole eok", price: i64(300_000_000), expected: "3억원"},
		{name: "eok and man", price: i64(350_000_000), expected: "3억 5000만원"},
		{name: "man only", price: i64(15_000_000), expected: "1,500만원"},
		{name: "small man", price: i64(800_000), expected: "80만원"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPrice(tt.price))
		})
	}
}

func TestFormatMonthlyRent(t *testing.T) {
	assert.Equal(t, "-", FormatMonthlyRent(nil, nil))
	assert.Equal(t, "1,000만/80만", FormatMonthlyRent(i64(10_000_000), i64(800_000)))
	assert.Equal(t, "0/50만", FormatMonthlyRent(nil, i64(500_000)))
	assert.Equal(t, "1억/0", FormatMonthlyRent(i64(100_000_000), i64(0)))
}

func TestFormatArea(t *testing.T) {
	assert.Equal(t, "-", FormatArea(nil))
	assert.Equal(t, "-", FormatArea(f64(0)))
	assert.Equal(t, "84m² (25.4평)", FormatArea(f64(84)))
	assert.Equal(t, "59.5m² (18.0평)", FormatArea(f64(59.5)))
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		listing  models.Listing
		expected int64
		ok       bool
	}{
		{
			name:     "sale uses price",
			listing:  models.Listing{TransactionType: models.TransactionSale, Price: i64(500)},
			expected: 500,
			ok:       true,
		},
		{
			name:     "monthly sums deposit and rent",
			listing:  models.Listing{TransactionType: models.TransactionMonthly, Price: i64(1), Deposit: i64(1000), MonthlyRent: i64(50)},
			expected: 1050,
			ok:       true,
		},
		{
			name:    "monthly without amounts",
			listing: models.Listing{TransactionType: models.TransactionMonthly, Price: i64(1)},
			ok:      false,
		},
		{
			name:    "jeonse without price",
			listing: models.Listing{TransactionType: models.TransactionJeonse},
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EffectivePrice(tt.listing)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatDisplayPrice(t *testing.T) {
	assert.Equal(t, "5억원", FormatDisplayPrice(models.Listing{TransactionType: models.TransactionSale, Price: i64(500_000_000)}))
	assert.Equal(t, "1,000만/80만", FormatDisplayPrice(models.Listing{
		TransactionType: models.TransactionMonthly, Deposit: i64(10_000_000), MonthlyRent: i64(800_000),
	}))
}
