package sheet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impact7/scoredesk/core/sheet"
	testutil "github.com/impact7/scoredesk/tests"
)

func TestTrendService_PastAggregates(t *testing.T) {
	db := testutil.NewBackend(t)
	header := []string{"이름", "시험종류", "SUM"}
	testutil.AddSheet(t, db, "2025_Spring", [][]string{header, {"Kim", "", "61"}})
	testutil.AddSheet(t, db, "2025_Summer", [][]string{header, {"Kim", "", "#REF!"}})
	testutil.AddSheet(t, db, "2025_Fall", [][]string{header, {"Lee", "", "50"}})
	testutil.AddSheet(t, db, "2026_Spring", [][]string{header, {"Kim", "", "70"}, {"Kim", "", "75"}})

	svc := sheet.NewTrendService(sheet.NewRecordAdapter(db, testutil.SpreadsheetID, testutil.NopLogger{}))
	ctx := context.Background()

	refs := sheet.Labels{"2025_Fall", "2025_Summer", "2025_Spring"}
	aggs, err := svc.PastAggregates(ctx, "Kim", refs, "2026_Spring")
	require.NoError(t, err)
	assert.Equal(t, sheet.Aggregates{"61", "0", "", "75"}, aggs)
	assert.Equal(t, [4]float64{61, 0, 0, 75}, aggs.Trend())

	// empty slots stay empty
	aggs, err = svc.PastAggregates(ctx, "Kim", sheet.Labels{"", "", "2025_Spring"}, "2026_Spring")
	require.NoError(t, err)
	assert.Equal(t, sheet.Aggregates{"61", "", "", "75"}, aggs)

	aggs, err = svc.PastAggregates(ctx, "  ", refs, "2026_Spring")
	require.NoError(t, err)
	assert.Equal(t, sheet.Aggregates{}, aggs)

	// a reference sheet renamed or deleted since the labels were written leaves its slot empty
	aggs, err = svc.PastAggregates(ctx, "Kim", sheet.Labels{"2025_Fall_old", "", "2025_Spring"}, "2026_Spring")
	require.NoError(t, err)
	assert.Equal(t, sheet.Aggregates{"61", "", "", "75"}, aggs)
}
