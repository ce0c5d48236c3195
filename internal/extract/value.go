package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// symbolAmountRe matches symbol-prefixed amounts: "$1,500,000.00", "€500".
	symbolAmountRe = regexp.MustCompile(`([$€£])\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)`)
	// codeAmountRe matches ISO-code-adjacent amounts: "USD 1,000", "1500.00 EUR".
	codeAmountRe = regexp.MustCompile(`\b(USD|EUR|GBP|CAD|AUD|JPY)\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)|([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)\s*(USD|EUR|GBP|CAD|AUD|JPY)\b`)
)

var symbolCurrency = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

// ExtractValue returns the largest currency-formatted amount in the text with
// its inferred ISO currency code. Defaults to USD when only "$" is seen.
// ok is false when no currency amount appears.
func ExtractValue(text string) (value float64, currency string, ok bool) {
	currency = "USD"

	consider := func(amountStr, cur string) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(amountStr, ",", ""), 64)
		if err != nil {
			return
		}
		if !ok || v > value {
			value = v
			currency = cur
			ok = true
		}
	}

	for _, m := range symbolAmountRe.FindAllStringSubmatch(text, -1) {
		consider(m[2], symbolCurrency[m[1]])
	}
	for _, m := range codeAmountRe.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			consider(m[2], m[1])
		} else {
			consider(m[3], m[4])
		}
	}
	if !ok {
		return 0, "USD", false
	}
	return value, currency, true
}
