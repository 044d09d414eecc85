package sheet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/impact7/scoredesk/core/score"
)

func TestFilter(t *testing.T) {
	complete := map[string]string{
		"L/C (Raw)": "1", "Voca (Raw)": "1", "Gr (Raw)": "1", "R/C (Raw)": "1", "Syn (Raw)": "1",
	}
	records := []Record{
		{ID: 2, Name: "Kim Minjun", School: "Daechi Middle", Grade: "중2", DeptType: score.Middle, Scores: complete},
		{ID: 3, Name: "Lee", School: "Banpo", Grade: "중1", Date: "2026-03-02", DeptType: score.Middle, Scores: map[string]string{}},
		{ID: 4, Name: "Park", Type: "Mock KIM", DeptType: score.Middle, Scores: complete},
	}

	tests := []struct {
		filter Filter
		want   []int
	}{
		{Filter{}, []int{2, 3, 4}},
		{Filter{Search: "kim"}, []int{2, 4}},
		{Filter{Search: " 2026-03 "}, []int{3}},
		{Filter{Search: "중"}, []int{2, 3}},
		{Filter{Status: StatusCompleted}, []int{2, 4}},
		{Filter{Status: StatusIncomplete}, []int{3}},
		{Filter{Search: "kim", Status: StatusIncomplete}, []int{}},
	}
	for _, tt := range tests {
		got := make([]int, 0)
		for _, r := range tt.filter.Apply(records) {
			got = append(got, r.ID)
		}
		assert.Equal(t, tt.want, got, fmt.Sprintf("%+v", tt.filter))
	}
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusCompleted, ParseStatus(" Completed"))
	assert.Equal(t, StatusIncomplete, ParseStatus("incomplete"))
	assert.Equal(t, StatusAll, ParseStatus(""))
	assert.Equal(t, StatusAll, ParseStatus("whatever"))
}

func TestPaginate(t *testing.T) {
	records := make([]Record, 23)
	for i := range records {
		records[i].ID = i + 2
	}

	p := Paginate(records, 1)
	assert.Len(t, p.Records, PageSize)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 23, p.Total)

	p = Paginate(records, 3)
	assert.Len(t, p.Records, 3)
	assert.Equal(t, 22, p.Records[0].ID)

	assert.Equal(t, 3, Paginate(records, 9).Page)
	assert.Equal(t, 1, Paginate(records, -1).Page)

	p = Paginate(nil, 1)
	assert.Empty(t, p.Records)
	assert.Equal(t, 1, p.TotalPages)
}
