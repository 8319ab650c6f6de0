package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts user input to a non-negative finite amount.
//
// Surrounding whitespace is ignored. Empty input, anything strconv cannot
// parse, NaN, infinities and negative values are rejected with
// ErrInvalidAmount. No rounding is applied.
//
// Examples:
//
//	ParseAmount("1000")  -> 1000, nil
//	ParseAmount("12.5")  -> 12.5, nil
//	ParseAmount("")      -> 0, ErrInvalidAmount
//	ParseAmount("-3")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if err := validAmount(v); err != nil {
		return 0, err
	}
	if v == 0 {
		v = 0 // drop the sign of "-0"
	}
	return v, nil
}

// FormatAmount renders an amount in its shortest decimal form
// (1000 -> "1000", 12.5 -> "12.5"). Magnitudes of 1e21 and above or below
// 1e-6 switch to exponent form with an unpadded exponent (1e+21, 1.5e-7),
// matching the number format of spreadsheet and JSON tooling.
func FormatAmount(v float64) string {
	if abs := math.Abs(v); abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func validAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return ErrInvalidAmount
	}
	return nil
}
