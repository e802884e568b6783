package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Canonical answer letters, in option order.
const (
	AnswerA = "A"
	AnswerB = "B"
	AnswerC = "C"
	AnswerD = "D"
)

// IsValidAnswer reports whether s is a canonical answer letter.
func IsValidAnswer(s string) bool {
	switch s {
	case AnswerA, AnswerB, AnswerC, AnswerD:
		return true
	}
	return false
}

// NormalizeAnswer converts an authored answer to its canonical letter.
//
// Integers and digit-only strings are zero-based option indexes (0 -> "A").
// Out-of-range indexes are not clamped, so 4 yields "E" and fails validation
// later. A single letter a-d is uppercased. Anything else is returned as is.
func NormalizeAnswer(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return normalizeString(v)
	case int:
		return indexLetter(int64(v))
	case int8:
		return indexLetter(int64(v))
	case int16:
		return indexLetter(int64(v))
	case int32:
		return indexLetter(int64(v))
	case int64:
		return indexLetter(v)
	case uint:
		return indexLetter(int64(v))
	case uint8:
		return indexLetter(int64(v))
	case uint16:
		return indexLetter(int64(v))
	case uint32:
		return indexLetter(int64(v))
	case uint64:
		if v > math.MaxInt32 {
			return strconv.FormatUint(v, 10)
		}
		return indexLetter(int64(v))
	case float32:
		return normalizeFloat(float64(v), 32)
	case float64:
		// JSON numbers decode as float64.
		return normalizeFloat(v, 64)
	}
	return fmt.Sprint(raw)
}

func normalizeFloat(v float64, bitSize int) string {
	if v == math.Trunc(v) && math.Abs(v) < math.MaxInt32 {
		return indexLetter(int64(v))
	}
	return strconv.FormatFloat(v, 'f', -1, bitSize)
}

func normalizeString(s string) string {
	if s == "" {
		return s
	}
	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return s
		}
		return indexLetter(n)
	}
	if len(s) == 1 {
		if upper := strings.ToUpper(s); IsValidAnswer(upper) {
			return upper
		}
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func indexLetter(n int64) string {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return strconv.FormatInt(n, 10)
	}
	return string(rune('A' + int32(n)))
}
