package channels

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456789:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type botAPIRecorder struct {
	mu       sync.Mutex
	paths    []string
	payloads []map[string]any
}

func newBotAPIServer(t *testing.T, ok bool) (*httptest.Server, *botAPIRecorder) {
	t.Helper()
	rec := &botAPIRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		payload := map[string]any{}
		_ = json.Unmarshal(body, &payload)

		rec.mu.Lock()
		rec.paths = append(rec.paths, r.URL.Path)
		rec.payloads = append(rec.payloads, payload)
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":1700000000,"chat":{"id":-100200300,"type":"supergroup"}}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestNewTelegramChannel_RequiresToken(t *testing.T) {
	_, err := NewTelegramChannel(TelegramOptions{})
	assert.Error(t, err)
}

func TestNewTelegramChannel_InvalidProxy(t *testing.T) {
	_, err := NewTelegramChannel(TelegramOptions{Token: testBotToken, Proxy: "://bad"})
	assert.Error(t, err)
}

func TestTelegramChannel_SendMessage(t *testing.T) {
	srv, rec := newBotAPIServer(t, true)
	ch, err := NewTelegramChannel(TelegramOptions{
		Token:     testBotToken,
		APIServer: srv.URL,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "telegram", ch.Name())

	require.NoError(t, ch.SendMessage(context.Background(), "-100200300", "[LINE] U1: hello"))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.paths, 1)
	assert.True(t, strings.HasSuffix(rec.paths[0], "/sendMessage"), "path %q", rec.paths[0])
	assert.Equal(t, "[LINE] U1: hello", rec.payloads[0]["text"])
	assert.EqualValues(t, -100200300, rec.payloads[0]["chat_id"])
}

func TestTelegramChannel_SendMessageAPIError(t *testing.T) {
	srv, _ := newBotAPIServer(t, false)
	ch, err := NewTelegramChannel(TelegramOptions{Token: testBotToken, APIServer: srv.URL})
	require.NoError(t, err)

	err = ch.SendMessage(context.Background(), "-1", "hi")
	assert.Error(t, err)
}

func TestTelegramChannel_SendMessageInvalidChat(t *testing.T) {
	srv, rec := newBotAPIServer(t, true)
	ch, err := NewTelegramChannel(TelegramOptions{Token: testBotToken, APIServer: srv.URL})
	require.NoError(t, err)

	assert.Error(t, ch.SendMessage(context.Background(), "not-a-chat", "hi"))
	assert.Empty(t, rec.paths, "invalid chat ids must not reach the API")
}

func TestParseChatID(t *testing.T) {
	id, err := ParseChatID("-100200300")
	require.NoError(t, err)
	assert.Equal(t, int64(-100200300), id.ID)

	id, err = ParseChatID("@bridge_channel")
	require.NoError(t, err)
	assert.Equal(t, "@bridge_channel", id.Username)

	for _, bad := range []string{"", "@", "0", "abc"} {
		_, err := ParseChatID(bad)
		assert.Error(t, err, "ParseChatID(%q)", bad)
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", truncateRunes("hello", 10))
	assert.Equal(t, "hell…", truncateRunes("hello world", 5))
	assert.Equal(t, "日本…", truncateRunes("日本語です", 3))
	assert.Equal(t, "anything", truncateRunes("anything", 0))
}
