package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/delivery/http/helpers"
)

func TestNewRateLimiter(t *testing.T) {
	mw, err := NewRateLimiter(RateLimitConfig{Rate: "2-M"}, testLogger)
	require.NoError(t, err)
	require.NotNil(t, mw)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234").Code)
	rr := do("10.0.0.1:1234")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = do("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	var env helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, helpers.ErrCodeTooManyRequests, env.Error.Code)

	// Limits are per client.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234").Code)
}

func TestNewRateLimiter_Disabled(t *testing.T) {
	mw, err := NewRateLimiter(RateLimitConfig{}, testLogger)
	require.NoError(t, err)
	assert.Nil(t, mw)
}

func TestNewRateLimiter_BadRate(t *testing.T) {
	_, err := NewRateLimiter(RateLimitConfig{Rate: "lots"}, testLogger)
	require.Error(t, err)
}
