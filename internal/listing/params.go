// internal/listing/params.go
package listing

import (
	"net/url"
	"strconv"
	"strings"

	"realty-workers/internal/models"
)

// Params is a decoded listing query.
type Params struct {
	Filter    FilterSpec
	Sort      SortKey
	PageIndex int
}

// ParseValues decodes the public list page's query string. Empty values are
// unset, unparseable numbers are unset, and the 1-based page becomes a
// 0-based index.
func ParseValues(v url.Values) Params {
	p := Params{Sort: SortNewest}

	if s := value(v, "property_type"); s != "" {
		pt := models.PropertyType(s)
		p.Filter.PropertyType = &pt
	}
	if s := value(v, "transaction_type"); s != "" {
		tt := models.TransactionType(s)
		p.Filter.TransactionType = &tt
	}
	if s := value(v, "status"); s != "" {
		st := models.ListingStatus(s)
		p.Filter.Status = &st
	}
	if s := value(v, "city"); s != "" {
		p.Filter.City = &s
	}
	if s := value(v, "district"); s != "" {
		p.Filter.District = &s
	}
	p.Filter.MinPrice = number(v, "min_price")
	p.Filter.MaxPrice = number(v, "max_price")
	p.Filter.MinRooms = number(v, "rooms")
	if s := value(v, "search"); s != "" {
		p.Filter.Search = &s
	}

	if s := SortKey(value(v, "sort")); s.Valid() {
		p.Sort = s
	}
	if n, err := strconv.Atoi(value(v, "page")); err == nil && n > 1 {
		p.PageIndex = n - 1
	}
	return p
}

// Values is the inverse of ParseValues, used to build page links.
func (p Params) Values() url.Values {
	v := url.Values{}
	f := p.Filter
	if f.PropertyType != nil {
		v.Set("property_type", string(*f.PropertyType))
	}
	if f.TransactionType != nil {
		v.Set("transaction_type", string(*f.TransactionType))
	}
	if f.Status != nil {
		v.Set("status", string(*f.Status))
	}
	if f.City != nil {
		v.Set("city", *f.City)
	}
	if f.District != nil {
		v.Set("district", *f.District)
	}
	if n := present(f.MinPrice); n != nil {
		v.Set("min_price", strconv.FormatFloat(*n, 'f', -1, 64))
	}
	if n := present(f.MaxPrice); n != nil {
		v.Set("max_price", strconv.FormatFloat(*n, 'f', -1, 64))
	}
	if n := present(f.MinRooms); n != nil {
		v.Set("rooms", strconv.FormatFloat(*n, 'f', -1, 64))
	}
	if f.Search != nil {
		v.Set("search", *f.Search)
	}
	if p.Sort != "" && p.Sort != SortNewest {
		v.Set("sort", string(p.Sort))
	}
	if p.PageIndex > 0 {
		v.Set("page", strconv.Itoa(p.PageIndex+1))
	}
	return v
}

func value(v url.Values, key string) string {
	return strings.TrimSpace(v.Get(key))
}

func number(v url.Values, key string) *float64 {
	s := value(v, key)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return present(&n)
}
