package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClass_Synonyms(t *testing.T) {
	cases := map[string]CabinClass{
		"ECONOMICA":       ClassEconomy,
		"económica":       ClassEconomy,
		"economy":         ClassEconomy,
		"  Economia  ":    ClassEconomy,
		"EJECUTIVA":       ClassBusiness,
		"business":        ClassBusiness,
		"clase_ejecutiva": ClassBusiness,
		"PRIMERA":         ClassFirst,
		"primera-clase":   ClassFirst,
		"First Class":     ClassFirst,
	}
	for raw, want := range cases {
		got, err := NormalizeClass(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestNormalizeClass_RejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "turista", "PREMIUM", "ECONOMICA PLUS"} {
		_, err := NormalizeClass(raw)
		assert.ErrorIs(t, err, ErrUnknownClass, raw)
	}
}

func TestNormalizeClassDefault(t *testing.T) {
	got, err := NormalizeClassDefault("  ")
	assert.NoError(t, err)
	assert.Equal(t, ClassEconomy, got)

	_, err = NormalizeClassDefault("turista")
	assert.ErrorIs(t, err, ErrUnknownClass)
}
