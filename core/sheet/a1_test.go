package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange_String(t *testing.T) {
	tests := []struct {
		rng  Range
		want string
	}{
		{FullRowSpan("2026_Spring"), "'2026_Spring'!A:ZZ"},
		{RowSpan("S", 7), "'S'!A7:ZZ7"},
		{Cell("S", 2, 7), "'S'!C7"},
		{Column("S", 1), "'S'!B:B"},
		{Rows("S", 1, 1), "'S'!1:1"},
		{Range{Sheet: "S", StartCol: "E", StartRow: 2, EndCol: "E", EndRow: 4}, "'S'!E2:E4"},
		{Range{Sheet: "Kim's"}, "'Kim''s'"},
	}
	for _, tt := range tests {
		if got := tt.rng.String(); got != tt.want {
			t.Errorf("String() = %q; want %q", got, tt.want)
		}
	}
}

func TestParseRange(t *testing.T) {
	for _, s := range []string{
		"'2026_Spring'!A:ZZ",
		"'S'!A7:ZZ7",
		"'S'!C7",
		"'S'!B:B",
		"'S'!1:1",
		"'S'!E2:E4",
		"'Kim''s'!A1",
	} {
		r, err := ParseRange(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, r.String())
	}

	r, err := ParseRange("Sheet1!b2:d")
	require.NoError(t, err)
	assert.Equal(t, Range{Sheet: "Sheet1", StartCol: "B", StartRow: 2, EndCol: "D"}, r)

	r, err = ParseRange("'Kim''s'")
	require.NoError(t, err)
	assert.Equal(t, "Kim's", r.Sheet)

	for _, s := range []string{"", "'S'!A1:B2:C3", "'S'!1A", "'S'!"} {
		_, err := ParseRange(s)
		assert.Error(t, err, s)
	}
}

func TestRange_Bounds(t *testing.T) {
	sc, ec, sr, er := FullRowSpan("S").Bounds()
	assert.Equal(t, []int{0, 701, 1, 0}, []int{sc, ec, sr, er})

	sc, ec, sr, er = Rows("S", 1, 1).Bounds()
	assert.Equal(t, []int{0, -1, 1, 1}, []int{sc, ec, sr, er})

	assert.True(t, Cell("S", 0, 2).IsCell())
	assert.False(t, RowSpan("S", 2).IsCell())
}
