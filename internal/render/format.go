// Package render formats routing results for terminal output.
package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money formats a monetary value with thousands separators and one
// decimal place.
func Money(v float64) string {
	return printer.Sprintf("%.1f", v)
}

// Percent formats a percentage with one decimal place.
func Percent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}
