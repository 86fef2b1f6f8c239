package domain

import (
	"errors"
	"fmt"
	"strings"
)

// CabinClass is the closed set of fare classes the inventory tracks.
type CabinClass string

const (
	ClassEconomy  CabinClass = "ECONOMICA"
	ClassBusiness CabinClass = "EJECUTIVA"
	ClassFirst    CabinClass = "PRIMERA"
)

var ErrUnknownClass = errors.New("unknown cabin class")

var classSynonyms = map[string]CabinClass{
	"ECONOMICA": ClassEconomy,
	"ECONÓMICA": ClassEconomy,
	"ECONOMIA":  ClassEconomy,
	"ECONOMÍA":  ClassEconomy,
	"ECONOMY":   ClassEconomy,

	"EJECUTIVA":       ClassBusiness,
	"BUSINESS":        ClassBusiness,
	"BUSSINESS":       ClassBusiness,
	"CLASE EJECUTIVA": ClassBusiness,

	"PRIMERA":       ClassFirst,
	"PRIMERA CLASE": ClassFirst,
	"PRIMERACLASE":  ClassFirst,
	"FIRST":         ClassFirst,
	"FIRST CLASS":   ClassFirst,
}

// NormalizeClass maps a free-text class label to one of the three canonical
// classes. Unrecognized input is rejected rather than silently defaulted.
func NormalizeClass(raw string) (CabinClass, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	if c, ok := classSynonyms[s]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownClass, raw)
}

// NormalizeClassDefault behaves like NormalizeClass but falls back to
// ECONOMICA for an absent label, matching the search contract.
func NormalizeClassDefault(raw string) (CabinClass, error) {
	if strings.TrimSpace(raw) == "" {
		return ClassEconomy, nil
	}
	return NormalizeClass(raw)
}

func (c CabinClass) Valid() bool {
	return c == ClassEconomy || c == ClassBusiness || c == ClassFirst
}
