// internal/models/listing.go
package models

import (
	"bytes"
	"encoding/json"
	"time"
)

type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeOfficetel  PropertyType = "officetel"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeOffice     PropertyType = "office"
	PropertyTypeLand       PropertyType = "land"
)

// PropertyTypeLabels maps each property type to its display label.
var PropertyTypeLabels = map[PropertyType]string{
	PropertyTypeApartment:  "아파트",
	PropertyTypeVilla:      "빌라/연립",
	PropertyTypeOfficetel:  "오피스텔",
	PropertyTypeHouse:      "단독주택",
	PropertyTypeCommercial: "상가",
	PropertyTypeOffice:     "사무실",
	PropertyTypeLand:       "토지",
}

func (p PropertyType) Valid() bool {
	_, ok := PropertyTypeLabels[p]
	return ok
}

type TransactionType string

const (
	TransactionSale    TransactionType = "sale"
	TransactionJeonse  TransactionType = "jeonse"
	TransactionMonthly TransactionType = "monthly"
)

var TransactionTypeLabels = map[TransactionType]string{
	TransactionSale:    "매매",
	TransactionJeonse:  "전세",
	TransactionMonthly: "월세",
}

func (t TransactionType) Valid() bool {
	_, ok := TransactionTypeLabels[t]
	return ok
}

type ListingStatus string

const (
	ListingAvailable ListingStatus = "available"
	ListingReserved  ListingStatus = "reserved"
	ListingCompleted ListingStatus = "completed"
)

var ListingStatusLabels = map[ListingStatus]string{
	ListingAvailable: "판매중",
	ListingReserved:  "계약중",
	ListingCompleted: "거래완료",
}

func (s ListingStatus) Valid() bool {
	_, ok := ListingStatusLabels[s]
	return ok
}

// Listing is a single property record as stored in the listings collection.
// Nullable numeric fields are pointers; nil means the admin left them blank.
// For monthly listings Deposit and MonthlyRent are authoritative and Price is
// not; for sale and jeonse listings Price is authoritative.
type Listing struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	Title           string          `json:"title"`
	PropertyType    PropertyType    `json:"propertyType"`
	TransactionType TransactionType `json:"transactionType"`
	Status          ListingStatus   `json:"status"`

	Price          *int64 `json:"price"`
	Deposit        *int64 `json:"deposit"`
	MonthlyRent    *int64 `json:"monthlyRent"`
	MaintenanceFee *int64 `json:"maintenanceFee,omitempty"`

	AreaSquareMeters *float64 `json:"areaSquareMeters"`
	Rooms            *int     `json:"rooms"`
	Bathrooms        *int     `json:"bathrooms,omitempty"`
	Floor            *int     `json:"floor,omitempty"`
	TotalFloors      *int     `json:"totalFloors,omitempty"`

	Address   string   `json:"address"`
	City      string   `json:"city"`
	District  string   `json:"district"`
	Dong      string   `json:"dong,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Description string   `json:"description,omitempty"`
	Features    []string `json:"features,omitempty"`
	MoveInDate  string   `json:"moveInDate,omitempty"`
	BuiltYear   *int     `json:"builtYear,omitempty"`
	ViewCount   int      `json:"viewCount"`

	Images []ListingImage `json:"images,omitempty"`

	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type ListingImage struct {
	ID          string    `json:"id"`
	ListingID   string    `json:"listingId"`
	URL         string    `json:"url"`
	StoragePath string    `json:"storagePath"`
	OrderIndex  int       `json:"orderIndex"`
	IsPrimary   bool      `json:"isPrimary"`
	AltText     string    `json:"altText,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CheckListingPatch reports whether patch, a set of camelCase document keys,
// can be merged into a stored listing and still decode as a Listing. Unknown
// keys and mistyped values (rooms: 2.5, price: "5억") are errors.
func CheckListingPatch(patch map[string]interface{}) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	var l Listing
	return dec.Decode(&l)
}

// Features offered in the admin listing form.
var ListingFeatures = []string{
	"엘리베이터",
	"주차가능",
	"반려동물",
	"베란다/발코니",
	"풀옵션",
	"신축",
	"복층",
	"역세권",
	"학군우수",
	"공원인접",
	"남향",
	"탁트인조망",
}
