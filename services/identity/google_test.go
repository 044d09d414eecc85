package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleResolver_Email(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			_, _ = w.Write([]byte(`{"email":"teacher@gw.impact7.kr","verified_email":true}`))
		case "Bearer unverified":
			_, _ = w.Write([]byte(`{"email":"teacher@gw.impact7.kr","verified_email":false}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":401,"message":"invalid credentials"}}`))
		}
	}))
	defer srv.Close()

	resolver := GoogleResolver{Endpoint: srv.URL + "/"}

	email, err := resolver.Email(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "teacher@gw.impact7.kr", email)

	_, err = resolver.Email(context.Background(), "unverified")
	assert.Error(t, err)

	_, err = resolver.Email(context.Background(), "bad")
	assert.Error(t, err)
}
