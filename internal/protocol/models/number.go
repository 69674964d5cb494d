package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NumberPrefix is the literal prefix of every protocol number. The full
// format PROT-YYYYMMDD-NNNNN is an external contract consumed by dashboards
// and citizen-facing receipts; it must be preserved bit for bit.
const NumberPrefix = "PROT"

// numberPattern validates the persisted format.
var numberPattern = regexp.MustCompile(`^PROT-\d{8}-\d{5}$`)

// DayKey formats the calendar day a number is scoped to, in UTC.
func DayKey(now time.Time) string {
	return now.UTC().Format("20060102")
}

// FormatNumber renders a protocol number for a day and sequence value.
// Sequences are 5-digit zero-padded and reset per calendar day.
func FormatNumber(now time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%05d", NumberPrefix, DayKey(now), seq)
}

// ValidNumber reports whether s matches the persisted number format.
func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// ParseNumber splits a protocol number into its day key and sequence value.
func ParseNumber(s string) (day string, seq int, err error) {
	if !ValidNumber(s) {
		return "", 0, fmt.Errorf("malformed protocol number %q", s)
	}
	parts := strings.SplitN(s, "-", 3)
	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, fmt.Errorf("malformed protocol number %q: %w", s, err)
	}
	return parts[1], seq, nil
}
