// Package extract pulls structured signals out of free-text questions:
// month/year mentions, account tokens, dimension filters, and the
// monetary column a financial question should be answered in.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// monthAliases maps month tokens (full names and standard
// abbreviations) to 1-12.
var monthAliases = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

var monthYearRe = regexp.MustCompile(
	`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec|january|february|march|april|june|july|august|september|october|november|december)\s+(\d{4})\b`)

// aliasRes holds one compiled word-boundary pattern per month token.
var aliasRes = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(monthAliases))
	for token := range monthAliases {
		m[token] = regexp.MustCompile(`\b` + token + `\b`)
	}
	return m
}()

// aliasOrder scans longer tokens first so "september 2024" is not
// claimed by "sep".
var aliasOrder = func() []string {
	order := make([]string, 0, len(monthAliases))
	for token := range monthAliases {
		order = append(order, token)
	}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if len(order[j]) > len(order[i]) || (len(order[j]) == len(order[i]) && order[j] < order[i]) {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	return order
}()

// MonthYear scans the question for a month mention, optionally followed
// by a 4-digit year. It returns (0, 0) when no month token is found and
// (month, 0) when the month appears without an adjacent year. Only the
// first match is used.
func MonthYear(q string) (month, year int) {
	ql := strings.ToLower(q)
	if m := monthYearRe.FindStringSubmatch(ql); m != nil {
		y, _ := strconv.Atoi(m[2])
		return monthAliases[m[1]], y
	}
	best, bestPos := 0, len(ql)
	for _, token := range aliasOrder {
		if loc := aliasRes[token].FindStringIndex(ql); loc != nil && loc[0] < bestPos {
			best, bestPos = monthAliases[token], loc[0]
		}
	}
	return best, 0
}
