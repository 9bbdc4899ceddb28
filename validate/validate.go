// Package validate holds the pure per-kind field validators. Each takes a
// raw value plus contextual bounds where needed and returns a verdict with a
// human-readable reason; none of them touch session state.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/CodingWeeb-Gaurav/backend/types"
)

// Result is a validation verdict. Normalized carries the canonical value to
// store when the input needed cleaning (canonical-cased options, stripped
// phone digits); it is nil when the raw value is already canonical.
type Result struct {
	Valid      bool
	Reason     string
	Normalized any
}

func ok() Result                       { return Result{Valid: true} }
func okWith(v any) Result              { return Result{Valid: true, Normalized: v} }
func fail(format string, a ...any) Result {
	return Result{Valid: false, Reason: fmt.Sprintf(format, a...)}
}

// Bounds extracts the quantity limits from a product snapshot. A missing
// minimum defaults to 1 and a missing maximum to +infinity.
func Bounds(p *types.Product) (min, max float64) {
	min, max = 1, math.Inf(1)
	if p == nil {
		return min, max
	}
	if p.MinQuantity > 0 {
		min = p.MinQuantity
	}
	if p.Quantity > 0 {
		max = p.Quantity
	}
	return min, max
}

// Quantity checks a quantity against product limits.
func Quantity(raw any, min, max float64) Result {
	q, convOK := toFloat(raw)
	if !convOK {
		return fail("invalid number format")
	}
	switch {
	case q < min:
		return fail("quantity must be at least %s (minimum order quantity)", trimFloat(min))
	case q > max:
		return fail("quantity exceeds available stock of %s", trimFloat(max))
	}
	return okWith(q)
}

// PositiveNumber checks a generic numeric field such as price per unit.
func PositiveNumber(raw any) Result {
	v, convOK := toFloat(raw)
	if !convOK {
		return fail("invalid number format")
	}
	if v <= 0 {
		return fail("value must be a positive number")
	}
	return okWith(v)
}

const dateLayout = "2006-01-02"

// Date checks that a date string parses as YYYY-MM-DD and lies strictly after
// the current UTC date of the supplied clock.
func Date(raw string, now time.Time) Result {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return fail("invalid date format, use YYYY-MM-DD")
	}
	today := now.UTC().Truncate(24 * time.Hour)
	if !d.After(today) {
		return fail("date must be after today (%s)", today.Format(dateLayout))
	}
	return okWith(d.Format(dateLayout))
}

// Selection checks a value against the allowed options, case-insensitively,
// and normalizes to the canonical-cased option on success.
func Selection(raw string, options []string) Result {
	want := strings.ToLower(strings.TrimSpace(raw))
	for _, opt := range options {
		if strings.ToLower(opt) == want {
			return okWith(opt)
		}
	}
	return fail("invalid selection, allowed options: %s", strings.Join(options, ", "))
}

var (
	intlPhoneRe    = regexp.MustCompile(`^\+[1-9]\d{9,14}$`)
	genericPhoneRe = regexp.MustCompile(`^\d{10,}$`)
)

// Phone strips spaces, dashes and parentheses, then accepts either a
// leading-plus international digit form or a bare 10+-digit form. The cleaned
// string is returned as the normalized value.
func Phone(raw string) Result {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if len(cleaned) < 10 {
		return fail("phone number must have at least 10 digits")
	}
	if !intlPhoneRe.MatchString(cleaned) && !genericPhoneRe.MatchString(cleaned) {
		return fail("invalid phone number format")
	}
	return okWith(cleaned)
}

// ExpectedPrice computes quantity * pricePerUnit. Either operand being
// non-numeric is a computation error rather than a user-facing verdict.
func ExpectedPrice(quantity, pricePerUnit any) (float64, error) {
	q, qok := toFloat(quantity)
	p, pok := toFloat(pricePerUnit)
	if !qok || !pok {
		return 0, fmt.Errorf("invalid input values for calculation")
	}
	return q * p, nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
