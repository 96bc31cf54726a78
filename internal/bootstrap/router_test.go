package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/localink/localink-backend/config"
	"github.com/localink/localink-backend/internal/auth"
	"github.com/localink/localink-backend/internal/automation"
	"github.com/localink/localink-backend/internal/chat"
	relayhttp "github.com/localink/localink-backend/internal/relay/http"
	"github.com/localink/localink-backend/internal/relay/repository"
)

func testRouter(t *testing.T, chatURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := RelayStore(config.StoreMemory, nil, nil)
	require.NoError(t, err)

	return BuildRouter(RouterDeps{
		ServiceName:  "localink-test",
		Version:      "test",
		Logger:       zaptest.NewLogger(t),
		RelayStore:   store,
		RelayOptions: relayhttp.Options{RequireAuth: true},
		Auth:         auth.HeaderIdentity(),
		Chat:         chat.NewHandler(chat.NewRelay(automation.NewClient(chatURL, 0))),
	})
}

func TestRouter_RelayRoundTrip(t *testing.T) {
	r := testRouter(t, "")

	body := `{"description":"Fresh autumn menu now available at our cafe"}`
	req := httptest.NewRequest(http.MethodPost, relayhttp.BusinessPath, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer anything")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, relayhttp.BusinessPath, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Success    bool `json:"success"`
		HasNewData bool `json:"hasNewData"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.True(t, got.HasNewData)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, relayhttp.ConsumerPath, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hasNewData":false`)
}

func TestRouter_Preflight(t *testing.T) {
	r := testRouter(t, "")

	req := httptest.NewRequest(http.MethodOptions, relayhttp.BusinessPath, nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := testRouter(t, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}

func TestRouter_APIRequiresIdentity(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"hello there"}`))
	}))
	defer upstream.Close()

	r := testRouter(t, upstream.URL)

	send := func(withUser bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/messages", strings.NewReader(`{"message":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		if withUser {
			req.Header.Set("X-User-Id", "u-1")
			req.Header.Set("X-User-Email", "u1@example.com")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, send(false).Code)

	w := send(true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "hello there")
}

func TestRelayStore(t *testing.T) {
	s, err := RelayStore(config.StoreMemory, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryStore{}, s)

	_, err = RelayStore(config.StorePostgres, nil, nil)
	assert.Error(t, err)

	_, err = RelayStore(config.StoreRedis, nil, nil)
	assert.Error(t, err)

	_, err = RelayStore("dynamo", nil, nil)
	assert.Error(t, err)
}
