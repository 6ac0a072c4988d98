package utils

import "time"

// ToLedgerTime normalizes a timestamp to the ledger's resolution. Identifiers
// and unlock comparisons work in whole UTC seconds, so anything finer is
// dropped before a value enters the domain.
func ToLedgerTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// ParseLedgerTime parses an RFC3339 timestamp and normalizes it
func ParseLedgerTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return ToLedgerTime(t), nil
}

// FormatLedgerTime renders a timestamp the way responses and events carry it
func FormatLedgerTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
