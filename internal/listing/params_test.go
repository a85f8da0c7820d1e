package listing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-workers/internal/models"
)

func TestParseValues(t *testing.T) {
	v := url.Values{
		"property_type":    {"apartment"},
		"transaction_type": {"sale"},
		"city":             {"서울"},
		"district":         {" 강남구 "},
		"min_price":        {"100000000"},
		"max_price":        {"abc"},
		"rooms":            {"2"},
		"search":           {"역삼"},
		"sort":             {"price_desc"},
		"page":             {"3"},
	}

	p := ParseValues(v)

	require.NotNil(t, p.Filter.PropertyType)
	assert.Equal(t, models.PropertyTypeApartment, *p.Filter.PropertyType)
	require.NotNil(t, p.Filter.TransactionType)
	assert.Equal(t, models.TransactionSale, *p.Filter.TransactionType)
	assert.Nil(t, p.Filter.Status)
	assert.Equal(t, "서울", *p.Filter.City)
	assert.Equal(t, "강남구", *p.Filter.District)
	assert.Equal(t, 100_000_000.0, *p.Filter.MinPrice)
	assert.Nil(t, p.Filter.MaxPrice)
	assert.Equal(t, 2.0, *p.Filter.MinRooms)
	assert.Equal(t, "역삼", *p.Filter.Search)
	assert.Equal(t, SortPriceDesc, p.Sort)
	assert.Equal(t, 2, p.PageIndex)
}

func TestParseValues_Defaults(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "blank values", query: "city=&search=&min_price="},
		{name: "bad sort and page", query: "sort=popular&page=zero"},
		{name: "page below one", query: "page=0"},
		{name: "NaN price", query: "min_price=NaN&rooms=Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			p := ParseValues(v)
			assert.True(t, p.Filter.IsEmpty())
			assert.Equal(t, SortNewest, p.Sort)
			assert.Equal(t, 0, p.PageIndex)
		})
	}
}

func TestParseValues_ZeroPriceIsKept(t *testing.T) {
	p := ParseValues(url.Values{"min_price": {"0"}})
	require.NotNil(t, p.Filter.MinPrice)
	assert.Equal(t, 0.0, *p.Filter.MinPrice)
}

func TestParams_ValuesRoundTrip(t *testing.T) {
	in := "city=%EC%84%9C%EC%9A%B8&min_price=0&page=2&rooms=3&sort=area_desc"
	v, err := url.ParseQuery(in)
	require.NoError(t, err)

	out := ParseValues(v).Values()
	assert.Equal(t, in, out.Encode())
}
