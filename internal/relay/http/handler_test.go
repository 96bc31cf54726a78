package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localink/localink-backend/internal/relay/domain"
	"github.com/localink/localink-backend/internal/relay/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context, string) (*repository.Snapshot, error) {
	return nil, f.err
}

func (f failingStore) Save(context.Context, string, repository.Snapshot) error {
	return f.err
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newRelayRouter(store repository.Store, opts Options) *gin.Engine {
	if opts.Now == nil {
		clock := &testClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
		opts.Now = clock.Now
	}
	r := gin.New()
	NewBusinessHandler(store, opts).Register(r, BusinessPath)
	NewConsumerHandler(store, opts).Register(r, ConsumerPath)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

var bearer = map[string]string{"Authorization": "Bearer automation-token"}

func TestRelay_Options(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{RequireAuth: true})

	w, _ := do(t, r, http.MethodOptions, BusinessPath, "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, AllowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, AllowHeaders, w.Header().Get("Access-Control-Allow-Headers"))
}

func TestRelay_GetBeforeAnyWrite(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{RequireAuth: true})

	w, body := do(t, r, http.MethodGet, BusinessPath, "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["hasNewData"])
	assert.NotEmpty(t, body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, domain.SourceDefault, data["source"])
	assert.Equal(t, AllowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRelay_WriteThenRead(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{RequireAuth: true})

	w, body := do(t, r, http.MethodPost, BusinessPath, `{"description":"hello"}`, bearer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["textProcessed"])
	assert.Equal(t, false, body["imageProcessed"])
	assert.Equal(t, true, body["realContentFound"])
	assert.NotNil(t, body["transformedData"])

	w, body = do(t, r, http.MethodGet, BusinessPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["hasNewData"])
	assert.NotEmpty(t, body["lastUpdated"])

	data := body["data"].(map[string]any)
	promo := data["personalizedPromotions"].(map[string]any)
	assert.Equal(t, "hello", promo["socialMediaDescription"])
	assert.Equal(t, domain.StockImageURL, promo["imageUrl"])
	assert.Nil(t, promo["imageBlob"])

	insights := data["salesForecast"].(map[string]any)["keyInsights"].([]any)
	assert.Equal(t, []any{
		"Data updated from n8n automation",
		"Real-time webhook integration active",
		"Custom promotion generated",
	}, insights)
}

func TestRelay_ImageRoundTrip(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{})
	img := strings.Repeat("QUJD", 40)

	w, body := do(t, r, http.MethodPost, BusinessPath, `{"Image":"`+img+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["imageProcessed"])

	_, body = do(t, r, http.MethodGet, BusinessPath, "", nil)
	promo := body["data"].(map[string]any)["personalizedPromotions"].(map[string]any)
	assert.Equal(t, img, promo["imageBlob"])
	assert.Equal(t, "data:image/jpeg;base64,"+img, promo["imageUrl"])
}

func TestRelay_ReadIsIdempotent(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{RequireAuth: true})
	do(t, r, http.MethodPost, BusinessPath, `{"Description":"stable","keyInsights":["a","b"]}`, bearer)

	first, _ := do(t, r, http.MethodGet, BusinessPath, "", nil)
	second, _ := do(t, r, http.MethodGet, BusinessPath, "", nil)

	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestRelay_LastWriteWins(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{RequireAuth: true})

	do(t, r, http.MethodPost, BusinessPath, `{"description":"A"}`, bearer)
	do(t, r, http.MethodPost, BusinessPath, `{"description":"B"}`, bearer)

	_, body := do(t, r, http.MethodGet, BusinessPath, "", nil)
	promo := body["data"].(map[string]any)["personalizedPromotions"].(map[string]any)
	assert.Equal(t, "B", promo["socialMediaDescription"])
}

func TestRelay_Unauthorized(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{RequireAuth: true})

	for _, header := range []map[string]string{
		nil,
		{"Authorization": ""},
		{"Authorization": "Bearer "},
		{"Authorization": "Basic dXNlcjpwYXNz"},
	} {
		w, body := do(t, r, http.MethodPost, BusinessPath, `{"description":"nope"}`, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Unauthorized", body["error"])
	}

	_, body := do(t, r, http.MethodGet, BusinessPath, "", nil)
	assert.Equal(t, false, body["hasNewData"], "rejected writes must not mutate state")
}

func TestRelay_AuthDisabled(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{RequireAuth: false})

	w, _ := do(t, r, http.MethodPost, BusinessPath, `{"description":"open"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRelay_InvalidPayload(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{RequireAuth: true})

	for _, payload := range []string{
		`{not json`,
		`[1,2,3]`,
		`null`,
		``,
		`{"description":"hello"} this is not json`,
		`{"description":"hello"}{"description":"again"}`,
	} {
		w, body := do(t, r, http.MethodPost, BusinessPath, payload, bearer)
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
		assert.Equal(t, "Invalid JSON payload", body["error"])
		assert.NotEmpty(t, body["details"])
	}

	w, body := do(t, r, http.MethodGet, BusinessPath, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["hasNewData"], "rejected payloads must not be stored")
}

func TestRelay_MethodNotAllowed(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{})

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		w, body := do(t, r, method, BusinessPath, `{}`, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "Method not allowed", body["error"])
	}
}

func TestRelay_StoreFailure(t *testing.T) {
	r := newRelayRouter(failingStore{err: errors.New("database is down")}, Options{RequireAuth: true})

	w, body := do(t, r, http.MethodPost, BusinessPath, `{"description":"x"}`, bearer)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to store webhook data", body["error"])
	assert.Contains(t, body["details"], "database is down")

	w, body = do(t, r, http.MethodGet, BusinessPath, "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, body["details"], "database is down")
}

func TestRelay_RateLimit(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{RequireAuth: true, RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		w, _ := do(t, r, http.MethodPost, BusinessPath, `{"description":"x"}`, bearer)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w, _ := do(t, r, http.MethodPost, BusinessPath, `{"description":"x"}`, bearer)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Reads are not limited.
	w, _ = do(t, r, http.MethodGet, BusinessPath, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRelay_ConsumerVariant(t *testing.T) {
	r := newRelayRouter(repository.NewMemoryStore(), Options{RequireAuth: true})

	_, body := do(t, r, http.MethodGet, ConsumerPath, "", nil)
	assert.Equal(t, false, body["hasNewData"])
	assert.Equal(t, domain.SourceConsumerDefault, body["data"].(map[string]any)["source"])

	w, _ := do(t, r, http.MethodPost, ConsumerPath, `{"insights":["Farmers market on Saturday"]}`, bearer)
	require.Equal(t, http.StatusOK, w.Code)

	_, body = do(t, r, http.MethodGet, ConsumerPath, "", nil)
	assert.Equal(t, true, body["hasNewData"])
	data := body["data"].(map[string]any)
	assert.Equal(t, domain.SourceConsumerAutomation, data["source"])
	assert.Equal(t, []any{"Farmers market on Saturday"}, data["communityInsights"].(map[string]any)["insights"])

	// The business slot is untouched.
	_, body = do(t, r, http.MethodGet, BusinessPath, "", nil)
	assert.Equal(t, false, body["hasNewData"])
}

func TestHasBearerToken(t *testing.T) {
	assert.True(t, hasBearerToken("Bearer abc"))
	assert.True(t, hasBearerToken("bearer abc"))
	assert.False(t, hasBearerToken(""))
	assert.False(t, hasBearerToken("Bearer"))
	assert.False(t, hasBearerToken("Bearer    "))
	assert.False(t, hasBearerToken("Token abc"))
}
