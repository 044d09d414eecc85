package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/impact7/scoredesk/apps/api/echo"
	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/report"
	"github.com/impact7/scoredesk/core/score"
	"github.com/impact7/scoredesk/core/sheet"
	testutil "github.com/impact7/scoredesk/tests"
)

func Test_sheetApi_departments(t *testing.T) {
	a := setup(t)
	req, rec := newAuthRequest(http.MethodGet, "/v1/departments", getToken(t, a.conf))
	a.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var specs []score.Spec
	unmarchall(t, rec, &specs)
	require.Len(t, specs, 3)
	assert.Equal(t, score.Elementary, specs[0].Department)
	assert.Equal(t, score.High, specs[2].Department)
	assert.Len(t, specs[2].Fields, 6)
}

func Test_sheetApi_lifecycle(t *testing.T) {
	a := setup(t)
	token := getToken(t, a.conf)

	// fresh spreadsheet: templates only
	req, rec := newAuthRequest(http.MethodGet, "/v1/sheets", token)
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list SheetsResponse
	unmarchall(t, rec, &list)
	assert.Empty(t, list.Sheets)
	assert.Equal(t, []string{"Template_초등부", "Template_중등부", "Template_고등부"}, list.Templates)

	runHTTPTests(t, a, []httpTest{
		{
			name: "create", method: http.MethodPost, path: "/v1/sheets", token: token,
			body: marchallObj(t, CreateSheetRequest{
				Template: "Template_고등부", Title: " 2026_Fall_HS ", Labels: sheet.Labels{"2026_Summer_HS"},
			}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, core.Success(`sheet "2026_Fall_HS" created`)),
		},
		{
			name: "create (duplicate title)", method: http.MethodPost, path: "/v1/sheets", token: token,
			body:     marchallObj(t, CreateSheetRequest{Title: "2026_Fall_HS"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": `a sheet named "2026_Fall_HS" already exists`}),
		},
		{
			name: "create (bad title)", method: http.MethodPost, path: "/v1/sheets", token: token,
			body:     marchallObj(t, CreateSheetRequest{Title: "Fall!"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "sheet titles cannot contain quotes or '!'"}),
		},
		{
			name: "labels", path: "/v1/sheets/2026_Fall_HS/labels", token: token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, LabelsRequest{Labels: sheet.Labels{"2026_Summer_HS", "", ""}}),
		},
		{
			name: "set labels", method: http.MethodPut, path: "/v1/sheets/2026_Fall_HS/labels", token: token,
			body:     marchallObj(t, LabelsRequest{Labels: sheet.Labels{" 2026_Summer_HS", "2026_Spring_HS", ""}}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, core.Success("reference labels saved")),
		},
		{
			name: "labels (saved)", path: "/v1/sheets/2026_Fall_HS/labels", token: token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, LabelsRequest{Labels: sheet.Labels{"2026_Summer_HS", "2026_Spring_HS", ""}}),
		},
		{
			name: "rename", method: http.MethodPut, path: "/v1/sheets/2026_Fall_HS", token: token,
			body:     marchallObj(t, RenameSheetRequest{Title: "2026_Autumn_HS"}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, core.Success(`sheet "2026_Fall_HS" renamed to "2026_Autumn_HS"`)),
		},
		{
			name: "unknown sheet", path: "/v1/sheets/2026_Fall_HS", token: token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, core.Failure(`sheet "2026_Fall_HS" not found, did you mean "2026_Autumn_HS"?`)),
		},
		{
			name: "delete", method: http.MethodDelete, path: "/v1/sheets/2026_Autumn_HS", token: token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, core.Success(`sheet "2026_Autumn_HS" deleted`)),
		},
		{
			name: "delete (again)", method: http.MethodDelete, path: "/v1/sheets/2026_Autumn_HS", token: token,
			wantCode: http.StatusNotFound,
		},
	})
}

func Test_sheetApi_escapedTitle(t *testing.T) {
	a := setup(t)
	req, rec := newAuthRequest(http.MethodGet, "/v1/sheets/"+url.PathEscape("Template_중등부"), getToken(t, a.conf))
	a.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view SheetView
	unmarchall(t, rec, &view)
	assert.Equal(t, "Template_중등부", view.Title)
	assert.Equal(t, sheet.Header(sheet.TemplateHeader(score.Middle)), view.Header)
	assert.Empty(t, view.Records)
}

func Test_sheetApi_records(t *testing.T) {
	a := setup(t)
	token := getToken(t, a.conf)
	a.addExamSheet(t, "HS", []string{"Lee", "Hana", "고1", "", "", "", "8", "5", "10", "5", "10", "10"})
	path := "/v1/sheets/HS/records"

	// append after the last used row
	req, rec := newAuthRequest(http.MethodPost, path, token, marchallObj(t, RecordRequest{
		Name:   " Kim ",
		Grade:  "고2",
		Scores: map[string]string{"청해 (Raw)": "9", "빈칸추론 (Raw)": "7", "SUM": "999"},
	}))
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created MutationResponse
	unmarchall(t, rec, &created)
	assert.Equal(t, core.StatusSuccess, created.Status)
	assert.Equal(t, 3, created.Row)
	require.NotNil(t, created.Sheet)
	require.Len(t, created.Sheet.Records, 2)
	kim := created.Sheet.Records[1]
	assert.Equal(t, "Kim", kim.Name)
	assert.Equal(t, score.High, kim.DeptType)
	assert.Equal(t, "16", kim.Scores["SUM"]) // the formula column is never overwritten
	assert.Equal(t, score.Stats{Total: 2, Completed: 1, Percent: 50, Average: 32}, created.Sheet.Stats)

	runHTTPTests(t, a, []httpTest{
		{
			name: "score over the maximum", method: http.MethodPost, path: path, token: token,
			body:     marchallObj(t, RecordRequest{Name: "Park", Grade: "고1", Scores: map[string]string{"청해 (Raw)": "11"}}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"청해 (Raw)": "the maximum score for 청해 (Raw) is 10"}),
		},
		{
			name: "name required", method: http.MethodPost, path: path, token: token,
			body:     marchallObj(t, RecordRequest{Grade: "고1"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "unknown department", method: http.MethodPost, path: path, token: token,
			body:     marchallObj(t, RecordRequest{Name: "Park", DeptType: "대학부"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"dept_type": "unknown department 대학부"}),
		},
		{
			name: "header row", method: http.MethodPut, path: path + "/1", token: token,
			body:     marchallObj(t, RecordRequest{Name: "Kim"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"row": "a record row is a number from 2"}),
		},
	})

	// update in place
	req, rec = newAuthRequest(http.MethodPut, path+"/3", token, marchallObj(t, RecordRequest{
		Name:  "Kim",
		Grade: "고2",
		Scores: map[string]string{
			"청해 (Raw)": "10", "대의파악 (Raw)": "5", "문법어휘 (Raw)": "10",
			"세부사항 (Raw)": "5", "빈칸추론 (Raw)": "10", "간접쓰기 (Raw)": "10",
		},
	}))
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated MutationResponse
	unmarchall(t, rec, &updated)
	assert.Equal(t, 3, updated.Row)
	assert.Equal(t, "50", updated.Sheet.Records[1].Scores["SUM"])
	assert.Equal(t, 100, updated.Sheet.Stats.Percent)

	// filters
	req, rec = newAuthRequest(http.MethodGet, path+"?search=KIM&status=completed", token)
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var page sheet.Page
	unmarchall(t, rec, &page)
	require.Len(t, page.Records, 1)
	assert.Equal(t, 3, page.Records[0].ID)
	assert.Equal(t, 1, page.TotalPages)

	// clear
	req, rec = newAuthRequest(http.MethodDelete, path+"/2", token)
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cleared MutationResponse
	unmarchall(t, rec, &cleared)
	require.Len(t, cleared.Sheet.Records, 1)
	assert.Equal(t, 3, cleared.Sheet.Records[0].ID) // rows never shift
}

func Test_sheetApi_recordsWithoutDepartment(t *testing.T) {
	a := setup(t)
	token := getToken(t, a.conf)
	header := []string{"이름", "학교", "학년", "응시일", "소속", "시험종류", "L/C (Raw)", "Voca (Raw)", "SUM"}
	testutil.AddSheet(t, a.db, "2026_Spring", [][]string{header}, "L/C (Raw)", "Voca (Raw)")
	path := "/v1/sheets/2026_Spring/records"

	// raw columns are written as they are when no department resolves
	req, rec := newAuthRequest(http.MethodPost, path, token, marchallObj(t, RecordRequest{
		Name:   "Kim",
		Scores: map[string]string{"L/C (Raw)": "8", "Voca (Raw)": "20"},
	}))
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created MutationResponse
	unmarchall(t, rec, &created)
	assert.Equal(t, 2, created.Row)
	require.Len(t, created.Sheet.Records, 1)
	kim := created.Sheet.Records[0]
	assert.Equal(t, "8", kim.Scores["L/C (Raw)"])
	assert.Equal(t, "20", kim.Scores["Voca (Raw)"])
	assert.Equal(t, "28", kim.Scores["SUM"])

	runHTTPTests(t, a, []httpTest{
		{
			name: "department required", method: http.MethodPost, path: path, token: token,
			body:     marchallObj(t, RecordRequest{Name: "Lee", Scores: map[string]string{"Listening": "3"}}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"dept_type": "select a department"}),
		},
		{
			name: "department required (update)", method: http.MethodPut, path: path + "/2", token: token,
			body:     marchallObj(t, RecordRequest{Name: "Kim", Scores: map[string]string{"Listening": "3"}}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"dept_type": "select a department"}),
		},
	})

	records, err := sheet.NewRecordAdapter(a.db, testutil.SpreadsheetID, testutil.NopLogger{}).ListRecords(context.Background(), "2026_Spring")
	require.NoError(t, err)
	assert.Len(t, records, 1, "rejected submissions write nothing")
}

func Test_sheetApi_trend(t *testing.T) {
	a := setup(t)
	token := getToken(t, a.conf)
	a.addExamSheet(t, "Spring", []string{"Kim", "", "고2", "", "", "", "4"})
	a.addExamSheet(t, "Summer", []string{"Kim", "", "고2", "", "", "", "5"}, []string{"Lee", "", "고2", "", "", "", "1"})
	a.addExamSheet(t, "Fall", []string{"Kim", "", "고2", "", "", "", "9", "", "", "", "7"})

	labels := sheet.NewLabelStore(a.db, testutil.SpreadsheetID, testutil.NopLogger{})
	require.NoError(t, labels.WriteLabels(context.Background(), "Fall", sheet.Labels{"Summer", "Spring", ""}))

	req, rec := newAuthRequest(http.MethodGet, "/v1/sheets/Fall/trend?name=Kim", token)
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TrendResponse
	unmarchall(t, rec, &resp)
	assert.Equal(t, "Kim", resp.Name)
	assert.Equal(t, sheet.Aggregates{"", "4", "5", "16"}, resp.Aggregates)
	assert.Equal(t, [4]float64{0, 4, 5, 16}, resp.Trend)

	// unknown students have an empty trend
	req, rec = newAuthRequest(http.MethodGet, "/v1/sheets/Fall/trend?name=Nobody", token)
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarchall(t, rec, &resp)
	assert.Equal(t, sheet.Aggregates{}, resp.Aggregates)
}

func Test_sheetApi_commentary(t *testing.T) {
	a := setup(t)
	token := getToken(t, a.conf)
	a.addExamSheet(t, "HS", []string{"Kim", "", "고2", "", "", "", "9", "", "", "", "7"})

	req, rec := newAuthRequest(http.MethodGet, "/v1/sheets/HS/records/2/commentary", token)
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got report.Commentary
	unmarchall(t, rec, &got)
	assert.NotEmpty(t, got.Commentary)
	assert.NotEmpty(t, got.Footer)

	runHTTPTests(t, a, []httpTest{
		{name: "empty row", path: "/v1/sheets/HS/records/9/commentary", token: token, wantCode: http.StatusNotFound},
		{name: "refresh", path: "/v1/sheets/HS/records/2/commentary?refresh=true", token: token, wantCode: http.StatusOK},
	})
}
