package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/impact7/scoredesk/apps/api/echo"
	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/auth"
	"github.com/impact7/scoredesk/core/report"
	"github.com/impact7/scoredesk/core/score"
	"github.com/impact7/scoredesk/core/sheet"
	inmemsheets "github.com/impact7/scoredesk/storage/sheets/inmem"
	testutil "github.com/impact7/scoredesk/tests"
)

const staffEmail = "teacher@impact7.kr"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// fakeResolver maps provider tokens to the email they belong to.
type fakeResolver map[string]string

func (r fakeResolver) Email(_ context.Context, token string) (string, error) {
	if email, ok := r[token]; ok {
		return email, nil
	}
	return "", errors.New("invalid token")
}

type app struct {
	*Server
	conf *core.Config
	db   *inmemsheets.DB
}

func setup(t *testing.T) *app {
	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Scoredesk",
		SecretKey: "test-secret",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
		Sheets:    core.SheetsConfig{Backend: core.BackendMemory, SpreadsheetID: testutil.SpreadsheetID},
		Auth:      core.AuthConfig{AllowedDomains: []string{"@impact7.kr", "@gw.impact7.kr"}},
		Lookup:    core.LookupConfig{Debounce: 10 * time.Millisecond},
	}
	db := testutil.NewBackend(t)
	logger := testutil.NopLogger{}

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	records := sheet.NewRecordAdapter(db, conf.Sheets.SpreadsheetID, logger)
	labels := sheet.NewLabelStore(db, conf.Sheets.SpreadsheetID, logger)
	resolver := fakeResolver{
		"staff-token":   staffEmail,
		"outside-token": "someone@gmail.com",
	}

	srv := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Authenticator: auth.NewAuthenticator(resolver, conf.Auth.AllowedDomains, logger),
		Records:       records,
		Labels:        labels,
		Lifecycle:     sheet.NewLifecycleManager(db, conf.Sheets.SpreadsheetID, conf.Sheets.TemplatePrefix, labels, logger),
		Trend:         sheet.NewTrendService(records),
		Commentary:    report.NewCache(report.Fallback{Secondary: report.Local{}}),
		Validate:      validate,
		Translator:    translator,
	})
	return &app{Server: srv, conf: conf, db: db}
}

// addExamSheet adds a high-school exam sheet holding the given (name, grade, scores...) rows.
func (a *app) addExamSheet(t *testing.T, title string, data ...[]string) {
	testutil.AddExamSheet(t, a.db, title, score.High, data...)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config) string {
	token, err := GenerateToken(GetUserClaims(core.Identity{Email: staffEmail}, conf), conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarchall(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("unmarchall(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, srv http.Handler, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
