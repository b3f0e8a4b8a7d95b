// internal/reconcile/text.go
package reconcile

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText: NFC, trim i zwinięcie ciągów białych znaków do jednej spacji
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// round2 zaokrągla cenę do 2 miejsc; NaN/Inf traktujemy jak 0
func round2(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f).Round(2)
}

// priceString formatuje cenę tak jak ją wysyłamy do Woo ("400", "10.5").
// Te same 2 miejsca co przy porównaniu w DetectOutdated.
func priceString(f float64) string {
	return round2(f).String()
}
