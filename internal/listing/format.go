// internal/listing/format.go
package listing

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"realty-workers/internal/models"
)

const (
	eok = 100_000_000
	man = 10_000

	squareMetersPerPyeong = 3.3058
)

var krPrinter = message.NewPrinter(language.Korean)

// EffectivePrice is the amount a listing is advertised at: deposit plus
// monthly rent for monthly listings, price otherwise. ok is false when the
// authoritative fields are all missing.
func EffectivePrice(l models.Listing) (int64, bool) {
	if l.TransactionType == models.TransactionMonthly {
		if l.Deposit == nil && l.MonthlyRent == nil {
			return 0, false
		}
		var total int64
		if l.Deposit != nil {
			total += *l.Deposit
		}
		if l.MonthlyRent != nil {
			total += *l.MonthlyRent
		}
		return total, true
	}
	if l.Price == nil {
		return 0, false
	}
	return *l.Price, true
}

// FormatPrice renders an amount in 억/만원 units, e.g. "3억 5000만원".
func FormatPrice(price *int64) string {
	if price == nil || *price == 0 {
		return "-"
	}
	p := *price
	billions := p / eok
	millions := (p % eok) / man

	switch {
	case billions > 0 && millions > 0:
		return fmt.Sprintf("%d억 %d만원", billions, millions)
	case billions > 0:
		return fmt.Sprintf("%d억원", billions)
	default:
		return krPrinter.Sprintf("%d만원", millions)
	}
}

// FormatMonthlyRent renders "deposit/rent" without the trailing 원.
func FormatMonthlyRent(deposit, monthlyRent *int64) string {
	if isZero(deposit) && isZero(monthlyRent) {
		return "-"
	}
	d := "0"
	if !isZero(deposit) {
		d = strings.Replace(FormatPrice(deposit), "원", "", 1)
	}
	m := "0"
	if !isZero(monthlyRent) {
		m = strings.Replace(FormatPrice(monthlyRent), "원", "", 1)
	}
	return d + "/" + m
}

// FormatArea renders square meters with the pyeong equivalent.
func FormatArea(area *float64) string {
	if area == nil || *area == 0 {
		return "-"
	}
	pyeong := *area / squareMetersPerPyeong
	return fmt.Sprintf("%sm² (%.1f평)", strconv.FormatFloat(*area, 'f', -1, 64), pyeong)
}

// FormatDisplayPrice picks the price rendering matching the transaction type.
func FormatDisplayPrice(l models.Listing) string {
	if l.TransactionType == models.TransactionMonthly {
		return FormatMonthlyRent(l.Deposit, l.MonthlyRent)
	}
	return FormatPrice(l.Price)
}

func isZero(v *int64) bool {
	return v == nil || *v == 0
}
