package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impact7/scoredesk/core/sheet"
	testutil "github.com/impact7/scoredesk/tests"
)

type lookupReply struct {
	Name       string           `json:"name"`
	Aggregates sheet.Aggregates `json:"aggregates"`
	Trend      [4]float64       `json:"trend"`
	Error      string           `json:"error"`
}

func dialLookup(t *testing.T, srv *httptest.Server, query url.Values) (*websocket.Conn, *http.Response, error) {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/lookup?" + query.Encode()
	return websocket.DefaultDialer.Dial(u, nil)
}

func Test_lookupApi_lookup(t *testing.T) {
	a := setup(t)
	a.addExamSheet(t, "Summer", []string{"Kim", "", "고2", "", "", "", "5"})
	a.addExamSheet(t, "Fall", []string{"Kim", "", "고2", "", "", "", "9", "", "", "", "7"})

	labels := sheet.NewLabelStore(a.db, testutil.SpreadsheetID, testutil.NopLogger{})
	require.NoError(t, labels.WriteLabels(context.Background(), "Fall", sheet.Labels{"Summer"}))

	srv := httptest.NewServer(a)
	defer srv.Close()

	t.Run("auth required", func(t *testing.T) {
		_, resp, err := dialLookup(t, srv, url.Values{"sheet": {"Fall"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, resp, err := dialLookup(t, srv, url.Values{"sheet": {"Winter"}, "token": {getToken(t, a.conf)}})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("latest query wins", func(t *testing.T) {
		ws, _, err := dialLookup(t, srv, url.Values{"sheet": {"Fall"}, "token": {getToken(t, a.conf)}})
		require.NoError(t, err)
		defer ws.Close()

		for _, name := range []string{"K", "Ki", "Kim"} {
			require.NoError(t, ws.WriteJSON(map[string]string{"name": name}))
		}

		// a slow connection may let an earlier query settle first
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
		var reply lookupReply
		for reply.Name != "Kim" {
			reply = lookupReply{}
			require.NoError(t, ws.ReadJSON(&reply))
		}
		assert.Empty(t, reply.Error)
		assert.Equal(t, sheet.Aggregates{"", "", "5", "16"}, reply.Aggregates)
		assert.Equal(t, [4]float64{0, 0, 5, 16}, reply.Trend)
	})

	t.Run("labels changed during the session", func(t *testing.T) {
		ws, _, err := dialLookup(t, srv, url.Values{"sheet": {"Fall"}, "token": {getToken(t, a.conf)}})
		require.NoError(t, err)
		defer ws.Close()
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

		var reply lookupReply
		require.NoError(t, ws.WriteJSON(map[string]string{"name": "Kim"}))
		require.NoError(t, ws.ReadJSON(&reply))
		assert.Equal(t, sheet.Aggregates{"", "", "5", "16"}, reply.Aggregates)

		require.NoError(t, labels.WriteLabels(context.Background(), "Fall", sheet.Labels{"", "Summer"}))

		reply = lookupReply{}
		require.NoError(t, ws.WriteJSON(map[string]string{"name": "Kim"}))
		require.NoError(t, ws.ReadJSON(&reply))
		assert.Empty(t, reply.Error)
		assert.Equal(t, sheet.Aggregates{"", "5", "", "16"}, reply.Aggregates)
	})
}
