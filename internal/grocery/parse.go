package grocery

import (
	"strconv"
	"strings"
)

const defaultUnit = "pieces"

// Parsed is a freeform ingredient line split into quantity, unit and name.
type Parsed struct {
	Quantity float64
	Unit     string
	Name     string
}

// ParseIngredient splits a line like "2 cups flour" on whitespace.
// A leading token without a numeric value makes the whole line the name.
// Two tokens are read as quantity and name; three or more as quantity, unit
// and name. Mixed numbers ("1 1/2 cups sugar") are folded into the quantity.
func ParseIngredient(s string) Parsed {
	trimmed := strings.TrimSpace(s)
	tokens := strings.Fields(trimmed)
	switch len(tokens) {
	case 0:
		return Parsed{Quantity: 1, Unit: defaultUnit}
	case 1:
		return Parsed{Quantity: 1, Unit: defaultUnit, Name: tokens[0]}
	}

	qty, ok := parseQuantity(tokens[0])
	if !ok {
		return Parsed{Quantity: 1, Unit: defaultUnit, Name: strings.Join(tokens, " ")}
	}

	rest := tokens[1:]
	if len(rest) >= 2 {
		if frac, ok := parseFraction(rest[0]); ok && !strings.Contains(tokens[0], "/") {
			qty += frac
			rest = rest[1:]
		}
	}

	if len(rest) == 1 {
		return Parsed{Quantity: qty, Unit: defaultUnit, Name: rest[0]}
	}
	return Parsed{Quantity: qty, Unit: rest[0], Name: strings.Join(rest[1:], " ")}
}

// parseQuantity reads a fraction ("1/2") or the leading decimal prefix of a
// token ("2", "1.5", "2x"). A token with a slash is a fraction or nothing.
func parseQuantity(tok string) (float64, bool) {
	if strings.Contains(tok, "/") {
		return parseFraction(tok)
	}

	end := 0
	seenDot := false
	for end < len(tok) {
		c := tok[end]
		if c == '.' && !seenDot {
			seenDot = true
		} else if c < '0' || c > '9' {
			break
		}
		end++
	}
	prefix := strings.TrimSuffix(tok[:end], ".")
	if prefix == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFraction(tok string) (float64, bool) {
	num, den, ok := strings.Cut(tok, "/")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return 0, false
	}
	d, err := strconv.Atoi(den)
	if err != nil || d <= 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}
