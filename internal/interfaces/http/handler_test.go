package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"resilient-wa-agent/internal/infrastructure"
	"resilient-wa-agent/internal/repository"
	"resilient-wa-agent/internal/usecases"
)

type sentMessage struct {
	To   string
	Text string
}

type fakeMessenger struct {
	failFor map[string]bool
	sent    []sentMessage
}

func (f *fakeMessenger) SendMessage(ctx context.Context, to, content string) error {
	if f.failFor[to] {
		return errors.New("delivery refused")
	}
	f.sent = append(f.sent, sentMessage{To: to, Text: content})
	return nil
}

type fakeNotifier struct {
	alerts []string
}

func (f *fakeNotifier) Notify(ctx context.Context, text string) error {
	f.alerts = append(f.alerts, text)
	return nil
}

type testServer struct {
	router    *gin.Engine
	registry  *repository.TemplateRegistry
	messenger *fakeMessenger
	notifier  *fakeNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry, err := repository.LoadTemplates("")
	require.NoError(t, err)

	messenger := &fakeMessenger{failFor: map[string]bool{}}
	notifier := &fakeNotifier{}
	stats := infrastructure.NewStats()
	resolver := usecases.NewResolver(registry, nil, 100*time.Millisecond, stats, zap.NewNop())

	h := NewHandler(resolver, messenger, notifier, registry, stats, "secret-token", "740549401652542", zap.NewNop())
	router := gin.New()
	SetupRoutes(router, h, zap.NewNop())

	return &testServer{router: router, registry: registry, messenger: messenger, notifier: notifier}
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestVerifyWebhook(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantBody string
	}{
		{"valid handshake", "hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=xyz", http.StatusOK, "xyz"},
		{"wrong token", "hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=xyz", http.StatusForbidden, "Verification failed"},
		{"wrong mode", "hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=xyz", http.StatusForbidden, "Verification failed"},
		{"missing everything", "", http.StatusForbidden, "Verification failed"},
		{"missing challenge", "hub.mode=subscribe&hub.verify_token=secret-token", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodGet, "/webhook?"+tt.query, "")
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestWebhookDelivery(t *testing.T) {
	ts := newTestServer(t)

	body := `{"entry":[{"changes":[{"field":"messages","value":{"messages":[{"from":"123","id":"m1","text":{"body":"hello"}}]}}]}]}`
	w := ts.do(http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", gjson.Get(w.Body.String(), "status").String())

	require.Len(t, ts.messenger.sent, 1)
	assert.Equal(t, "123", ts.messenger.sent[0].To)
	assert.Equal(t, ts.registry.Fallback().Response, ts.messenger.sent[0].Text,
		`"hello" matches the general rule's template`)
}

func TestWebhookDeliveryMissingTextBody(t *testing.T) {
	ts := newTestServer(t)

	// No text field at all: treated as empty text, which falls through to
	// the fallback template. A reply is still attempted.
	body := `{"entry":[{"changes":[{"field":"messages","value":{"messages":[{"from":"123","id":"m1"}]}}]}]}`
	w := ts.do(http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ts.messenger.sent, 1)
	assert.Equal(t, ts.registry.Fallback().Response, ts.messenger.sent[0].Text)
}

func TestWebhookDeliveryMalformedShape(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{
		`{}`,
		`{"object":"whatsapp_business_account"}`,
		`{"entry":[]}`,
		`{"entry":[{"changes":[]}]}`,
		`{"entry":[{"changes":[{"field":"statuses","value":{}}]}]}`,
	} {
		w := ts.do(http.MethodPost, "/webhook", body)
		assert.Equal(t, http.StatusOK, w.Code, "body: %s", body)
		assert.Equal(t, "success", gjson.Get(w.Body.String(), "status").String())
	}
	assert.Empty(t, ts.messenger.sent, "shape mismatches yield zero sends")
}

func TestWebhookDeliveryInvalidJSON(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/webhook", `{"entry": [`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", gjson.Get(w.Body.String(), "status").String())
	assert.NotEmpty(t, gjson.Get(w.Body.String(), "message").String())
}

func TestWebhookPerMessageIsolation(t *testing.T) {
	ts := newTestServer(t)
	ts.messenger.failFor["111"] = true

	body := `{"entry":[{"changes":[{"field":"messages","value":{"messages":[
		{"from":"111","id":"m1","text":{"body":"hello"}},
		{"from":"222","id":"m2","text":{"body":"hello"}}
	]}}]}]}`
	w := ts.do(http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusOK, w.Code, "send failures never change the webhook status")
	require.Len(t, ts.messenger.sent, 1, "second message still processed after the first send fails")
	assert.Equal(t, "222", ts.messenger.sent[0].To)

	require.Len(t, ts.notifier.alerts, 1)
	assert.Contains(t, ts.notifier.alerts[0], "111")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", gjson.Get(w.Body.String(), "status").String())

	ts2 := gjson.Get(w.Body.String(), "timestamp").String()
	_, err := time.Parse(time.RFC3339, ts2)
	assert.NoError(t, err)
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	body := `{"entry":[{"changes":[{"field":"messages","value":{"messages":[{"from":"123","id":"m1","text":{"body":"hello"}}]}}]}]}`
	ts.do(http.MethodPost, "/webhook", body)

	w := ts.do(http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "messages_received").Int())
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "template_replies").Int())
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "send_failures").Int())
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "740549401652542")
	assert.Contains(t, w.Body.String(), "5 categories")
	assert.Contains(t, w.Body.String(), "info@regtech.agency")
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("he\x00llo"))
	assert.Equal(t, "ok", SanitizeString(string([]byte{'o', 0xff, 'k'})))
	assert.Equal(t, "ab", TruncateString("abcd", 2))
	assert.Equal(t, "ab", TruncateString("ab", 4))
}
