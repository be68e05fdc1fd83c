package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frPrinter = message.NewPrinter(language.French)

// FormatPrice форматирует цену из центов в евро: 45,00 €
func FormatPrice(priceInCents int64) string {
	return frPrinter.Sprintf("%.2f €", float64(priceInCents)/100)
}

// FormatOptionalPrice цена или прочерк
func FormatOptionalPrice(priceInCents *int64) string {
	if priceInCents == nil {
		return "—"
	}
	return FormatPrice(*priceInCents)
}

// ParsePrice разбирает "45", "45,50", "45.5 €" в центы
func ParsePrice(input string) (int64, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(input), "€"))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", input, err)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("price out of range %q", input)
	}
	return int64(math.Round(v * 100)), nil
}
