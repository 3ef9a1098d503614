package utils

import "golang.org/x/text/cases"

// fold builds a fresh Caser per call since a Caser must not be shared between goroutines.
func fold(s string) string {
	return cases.Fold().String(s)
}
