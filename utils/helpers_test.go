package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{"empty defaults to USD", "", "USD", true},
		{"lowercase is uppercased", "eur", "EUR", true},
		{"whitespace is trimmed", " gbp ", "GBP", true},
		{"already normalized", "JPY", "JPY", true},
		{"too long", "EURO", "", false},
		{"too short", "US", "", false},
		{"digits rejected", "U5D", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeCurrency(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaginationClamping(t *testing.T) {
	t.Run("oversized limit is capped", func(t *testing.T) {
		p := PaginationQuery{Page: 1, Limit: 500}
		assert.Equal(t, 100, p.PageSize())
	})

	t.Run("zero values fall back to defaults", func(t *testing.T) {
		p := PaginationQuery{}
		assert.Equal(t, 20, p.PageSize())
		assert.Equal(t, 0, p.Offset())
	})

	t.Run("negative page treated as first", func(t *testing.T) {
		p := PaginationQuery{Page: -3, Limit: 10}
		assert.Equal(t, 0, p.Offset())
	})

	t.Run("offset uses clamped page size", func(t *testing.T) {
		p := PaginationQuery{Page: 3, Limit: 10}
		assert.Equal(t, 20, p.Offset())
	})
}
