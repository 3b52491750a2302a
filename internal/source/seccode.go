package source

import (
	"strconv"
	"strings"
)

// NormalizeSecCode converts an upstream security code to the 4-digit
// equity ticker, or returns "" when the code does not identify a listed
// equity. EDINET and TDnet both publish 5-character codes where the
// trailing character is a check digit ("72030" becomes "7203").
func NormalizeSecCode(raw string) string {
	code := strings.TrimSpace(raw)
	if len(code) == 5 && code[4] == '0' {
		code = code[:4]
	}
	if len(code) != 4 {
		return ""
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return ""
	}
	if isNonEquityCode(n) {
		return ""
	}
	return code
}

// isNonEquityCode reports codes assigned to ETF/ETN and REIT products,
// which carry no company financials worth enriching.
func isNonEquityCode(code int) bool {
	switch {
	case code >= 1305 && code <= 1399: // ETF block
		return true
	case code >= 1540 && code <= 1699: // ETN/commodity ETF block
		return true
	case code >= 2510 && code <= 2569: // newer ETF block
		return true
	case code >= 8951 && code <= 8999: // J-REIT block
		return true
	}
	return false
}
