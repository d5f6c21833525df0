package waste

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  Symbol
		ok    bool
	}{
		{"Plastics and Aluminium", PlasticsAluminium, true},
		{"Paper", Paper, true},
		{"Biodegradable waste", Biodegradable, true},
		{"Clear glass", ClearGlass, true},
		{"Colored glass", ColoredGlass, true},
		{"Textile", Textile, true},
		{"paper", 0, false},
		{"Glass", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := FromLabel(tt.label)
		assert.Equal(t, tt.ok, ok, "label %q", tt.label)
		assert.Equal(t, tt.want, got, "label %q", tt.label)
	}
}

func TestSymbolLabelRoundTrip(t *testing.T) {
	for _, s := range CanonicalOrder {
		got, ok := FromLabel(s.Label())
		require.True(t, ok, "symbol %s", s)
		assert.Equal(t, s, got)
	}
	assert.Equal(t, "", Symbol('X').Label())
}

func TestSetCanonicalOrder(t *testing.T) {
	// Insertion order must not matter
	orders := [][]Symbol{
		{Textile, Paper},
		{Paper, Textile},
		{Textile, ColoredGlass, ClearGlass, Biodegradable, Paper, PlasticsAluminium},
		{Biodegradable, PlasticsAluminium, Textile, ClearGlass},
	}
	want := []string{"PT", "PT", "APBGCT", "ABGT"}

	for i, order := range orders {
		var set Set
		for _, s := range order {
			set = set.Add(s)
		}
		assert.Equal(t, want[i], set.String())
	}
}

func TestSetIgnoresUnknown(t *testing.T) {
	var set Set
	set = set.AddLabel("Electronics")
	set = set.Add(Symbol('Z'))
	assert.Equal(t, "", set.String())
	assert.False(t, set.Has(Symbol('Z')))

	set = set.AddLabel("Paper").AddLabel("Paper")
	assert.Equal(t, "P", set.String())
	assert.True(t, set.Has(Paper))
}

func TestParseSet(t *testing.T) {
	assert.Equal(t, "APT", ParseSet("TPA").String())
	assert.Equal(t, "G", ParseSet("xGx").String())
	assert.Equal(t, Set(0), ParseSet(""))
	assert.Equal(t, ParseSet("AB").Union(ParseSet("BT")), ParseSet("ABT"))
}
