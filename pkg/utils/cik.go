package utils

import (
	"strconv"
	"strings"
)

// CIKWidth is the fixed width of a canonical CIK.
const CIKWidth = 10

// PadCIK left-pads a CIK number to 10 digits with leading zeros.
// Values already 10 or more characters wide are returned unchanged.
func PadCIK(cik string) string {
	if len(cik) >= CIKWidth {
		return cik
	}
	return strings.Repeat("0", CIKWidth-len(cik)) + cik
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// IsCanonicalCIK reports whether s is exactly ten ASCII digits.
func IsCanonicalCIK(s string) bool {
	return len(s) == CIKWidth && IsDigits(s)
}

// UnpadCIK strips leading zeros, as used in EDGAR archive paths.
// "0000320193" → "320193".
func UnpadCIK(cik string) string {
	n, err := strconv.ParseInt(cik, 10, 64)
	if err != nil {
		return strings.TrimLeft(cik, "0")
	}
	return strconv.FormatInt(n, 10)
}

// CleanAccession removes the dashes from an accession number.
// "0000320193-24-000123" → "000032019324000123".
func CleanAccession(accession string) string {
	return strings.ReplaceAll(accession, "-", "")
}
