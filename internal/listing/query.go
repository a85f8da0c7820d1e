// internal/listing/query.go
package listing

import (
	"math"
	"sort"
	"strings"

	"realty-workers/internal/models"
)

const (
	// SnapshotLimit caps how many listing documents one collection scan loads.
	SnapshotLimit = 100
	// ResultLimit is how many sorted listings the public list returns.
	ResultLimit = 50
	// MaxPageSize caps caller supplied page sizes.
	MaxPageSize = 100
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortAreaDesc  SortKey = "area_desc"
)

var validSortKeys = map[SortKey]bool{
	SortNewest:    true,
	SortPriceAsc:  true,
	SortPriceDesc: true,
	SortAreaDesc:  true,
}

func (k SortKey) Valid() bool {
	return validSortKeys[k]
}

// FilterSpec narrows a listing collection. A nil field imposes no
// constraint, so an explicit zero (MinPrice = 0) stays distinct from unset.
type FilterSpec struct {
	PropertyType    *models.PropertyType    `json:"propertyType,omitempty"`
	TransactionType *models.TransactionType `json:"transactionType,omitempty"`
	Status          *models.ListingStatus   `json:"status,omitempty"`
	City            *string                 `json:"city,omitempty"`
	District        *string                 `json:"district,omitempty"`
	MinPrice        *float64                `json:"minPrice,omitempty"`
	MaxPrice        *float64                `json:"maxPrice,omitempty"`
	MinRooms        *float64                `json:"minRooms,omitempty"`
	Search          *string                 `json:"search,omitempty"`
}

// IsEmpty reports whether no predicate is set.
func (f FilterSpec) IsEmpty() bool {
	return f.PropertyType == nil && f.TransactionType == nil && f.Status == nil &&
		f.City == nil && f.District == nil &&
		present(f.MinPrice) == nil && present(f.MaxPrice) == nil && present(f.MinRooms) == nil &&
		f.Search == nil
}

type Result struct {
	Items []models.Listing `json:"items"`
	Total int              `json:"total"`
}

// Query filters, sorts and paginates a listing snapshot. It never modifies
// the caller's slice and holds no state between calls.
func Query(listings []models.Listing, spec FilterSpec, key SortKey, pageIndex, pageSize int) Result {
	ordered := Sort(Filter(listings, spec), key)
	page, total := Paginate(ordered, pageIndex, pageSize)
	return Result{Items: page, Total: total}
}

// Filter returns the listings matching every present predicate in spec.
//
// Price bounds compare against Price alone, with a missing price counted as
// zero, even for monthly listings whose deposit and rent carry the real
// amount. EffectivePrice is not consulted here.
func Filter(listings []models.Listing, spec FilterSpec) []models.Listing {
	minPrice := present(spec.MinPrice)
	maxPrice := present(spec.MaxPrice)
	minRooms := present(spec.MinRooms)

	var search string
	if spec.Search != nil {
		search = strings.ToLower(*spec.Search)
	}

	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if spec.PropertyType != nil && l.PropertyType != *spec.PropertyType {
			continue
		}
		if spec.TransactionType != nil && l.TransactionType != *spec.TransactionType {
			continue
		}
		if spec.Status != nil && l.Status != *spec.Status {
			continue
		}
		if spec.City != nil && l.City != *spec.City {
			continue
		}
		if spec.District != nil && l.District != *spec.District {
			continue
		}
		if minPrice != nil && float64(priceOrZero(l)) < *minPrice {
			continue
		}
		if maxPrice != nil && float64(priceOrZero(l)) > *maxPrice {
			continue
		}
		if minRooms != nil && (l.Rooms == nil || float64(*l.Rooms) < *minRooms) {
			continue
		}
		if spec.Search != nil && !matchesSearch(l, search) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Sort returns a stably ordered copy. Unknown keys fall back to newest.
func Sort(listings []models.Listing, key SortKey) []models.Listing {
	out := make([]models.Listing, len(listings))
	copy(out, listings)

	var less func(a, b models.Listing) bool
	switch key {
	case SortPriceAsc:
		less = func(a, b models.Listing) bool { return priceOrZero(a) < priceOrZero(b) }
	case SortPriceDesc:
		less = func(a, b models.Listing) bool { return priceOrZero(a) > priceOrZero(b) }
	case SortAreaDesc:
		less = func(a, b models.Listing) bool { return areaOrZero(a) > areaOrZero(b) }
	default:
		less = func(a, b models.Listing) bool { return createdMillis(a) > createdMillis(b) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Paginate slices one page out of ordered. Out of range pages are empty;
// total is always len(ordered).
func Paginate(ordered []models.Listing, pageIndex, pageSize int) ([]models.Listing, int) {
	total := len(ordered)
	if pageIndex < 0 || pageSize <= 0 {
		return []models.Listing{}, total
	}
	start := pageIndex * pageSize
	if start/pageSize != pageIndex || start >= total {
		return []models.Listing{}, total
	}
	end := start + pageSize
	if end > total || end < start {
		end = total
	}
	page := make([]models.Listing, end-start)
	copy(page, ordered[start:end])
	return page, total
}

// Truncate keeps at most limit listings. A non-positive limit keeps all.
func Truncate(ordered []models.Listing, limit int) []models.Listing {
	if limit <= 0 || len(ordered) <= limit {
		return ordered
	}
	return ordered[:limit]
}

func matchesSearch(l models.Listing, q string) bool {
	for _, field := range []string{l.Title, l.Address, l.City, l.District} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// present drops NaN and infinite bounds so they behave like unset ones.
func present(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

func priceOrZero(l models.Listing) int64 {
	if l.Price == nil {
		return 0
	}
	return *l.Price
}

func areaOrZero(l models.Listing) float64 {
	if l.AreaSquareMeters == nil || math.IsNaN(*l.AreaSquareMeters) {
		return 0
	}
	return *l.AreaSquareMeters
}

func createdMillis(l models.Listing) int64 {
	if l.CreatedAt == nil || l.CreatedAt.IsZero() {
		return 0
	}
	return l.CreatedAt.UnixMilli()
}
