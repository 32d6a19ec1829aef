package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ones = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens   = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
	scales = []string{"", "Thousand", "Million", "Billion", "Trillion", "Quadrillion", "Quintillion"}
)

// AmountInWords spells out an amount in English, with the fractional part as
// hundredths: 1234.5 becomes "One Thousand Two Hundred Thirty Four and 50/100 Only".
// Negative amounts are spelled by magnitude. Whole parts too large to spell are
// written as numerals, and NaN or infinite amounts yield "".
func AmountInWords(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ""
	}

	d := decimal.NewFromFloat(amount).Abs().Round(2)
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()

	words := "Zero"
	switch n := whole.BigInt(); {
	case n.Sign() == 0:
	case n.IsUint64():
		words = integerToWords(n.Uint64())
	default:
		words = n.String()
	}

	if cents == 0 {
		return words + " Only"
	}
	return fmt.Sprintf("%s and %02d/100 Only", words, cents)
}

func integerToWords(n uint64) string {
	var groups []string
	for scale := 0; n > 0 && scale < len(scales); scale++ {
		chunk := n % 1000
		n /= 1000
		if chunk == 0 {
			continue
		}
		part := hundredsToWords(int(chunk))
		if scales[scale] != "" {
			part += " " + scales[scale]
		}
		groups = append([]string{part}, groups...)
	}
	return strings.Join(groups, " ")
}

func hundredsToWords(n int) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, ones[n/100], "Hundred")
		n %= 100
	}
	if n >= 20 {
		parts = append(parts, tens[n/10])
		n %= 10
	}
	if n > 0 {
		parts = append(parts, ones[n])
	}
	return strings.Join(parts, " ")
}
