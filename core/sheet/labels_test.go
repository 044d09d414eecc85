package sheet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/sheet"
	testutil "github.com/impact7/scoredesk/tests"
)

func TestLabelStore_RoundTrip(t *testing.T) {
	db := testutil.NewBackend(t)
	testutil.AddSheet(t, db, "S", [][]string{
		{"이름", "시험종류", "SUM", "lastmark"},
		{"Kim", "", "", ""},
		{"Lee"},
		{"Park"},
		{"Choi", "", "", "untouched"},
	})
	store := sheet.NewLabelStore(db, testutil.SpreadsheetID, testutil.NopLogger{})
	ctx := context.Background()

	labels, err := store.ReadLabels(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, sheet.Labels{}, labels)

	require.NoError(t, store.WriteLabels(ctx, "S", sheet.Labels{"2025_Fall", "", "2025_Spring"}))

	labels, err = store.ReadLabels(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, sheet.Labels{"2025_Fall", "", "2025_Spring"}, labels)

	// nothing else moved
	rows, err := db.Values(ctx, testutil.SpreadsheetID, "'S'!A:ZZ")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"이름", "시험종류", "SUM", "lastmark"},
		{"Kim", "", "", "2025_Fall"},
		{"Lee"},
		{"Park", "", "", "2025_Spring"},
		{"Choi", "", "", "untouched"},
	}, rows)
}

func TestLabelStore_LegacyColumn(t *testing.T) {
	db := testutil.NewBackend(t)
	testutil.AddSheet(t, db, "Old", [][]string{{"이름", "지난시험지"}, {"Kim", "2024_Fall"}})
	store := sheet.NewLabelStore(db, testutil.SpreadsheetID, testutil.NopLogger{})

	labels, err := store.ReadLabels(context.Background(), "Old")
	require.NoError(t, err)
	assert.Equal(t, sheet.Labels{"2024_Fall", "", ""}, labels)
}

func TestLabelStore_NoColumn(t *testing.T) {
	db := testutil.NewBackend(t)
	testutil.AddSheet(t, db, "Bare", [][]string{{"이름", "시험종류"}})
	store := sheet.NewLabelStore(db, testutil.SpreadsheetID, testutil.NopLogger{})
	ctx := context.Background()

	labels, err := store.ReadLabels(ctx, "Bare")
	require.NoError(t, err)
	assert.Equal(t, sheet.Labels{}, labels)

	err = store.WriteLabels(ctx, "Bare", sheet.Labels{"a", "b", "c"})
	assert.Equal(t, sheet.ErrLabelColumnNotFound, err)
	assert.True(t, core.IsWarning(err))

	rows, err := db.Values(ctx, testutil.SpreadsheetID, "'Bare'!A:ZZ")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "a failed write leaves the sheet alone")
}
