package bridge

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tinyland-inc/picobridge/pkg/state"
)

var fixedNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

type sentText struct {
	To   string
	Text string
}

type fakeLINE struct {
	mu       sync.Mutex
	replies  []sentText
	pushes   []sentText
	replyErr error
	pushErr  error
}

func (f *fakeLINE) Name() string { return "line" }

func (f *fakeLINE) ReplyMessage(_ context.Context, replyToken, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, sentText{To: replyToken, Text: text})
	return f.replyErr
}

func (f *fakeLINE) PushMessage(_ context.Context, to, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, sentText{To: to, Text: text})
	return f.pushErr
}

func (f *fakeLINE) Pushes() []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentText(nil), f.pushes...)
}

func (f *fakeLINE) Replies() []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentText(nil), f.replies...)
}

type fakeTelegram struct {
	mu    sync.Mutex
	sends []sentText
	err   error
}

func (f *fakeTelegram) Name() string { return "telegram" }

func (f *fakeTelegram) SendMessage(_ context.Context, chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentText{To: chatID, Text: text})
	return f.err
}

func (f *fakeTelegram) Sends() []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentText(nil), f.sends...)
}

// brokenStore fails every operation.
type brokenStore struct {
	loadErr error
	saveErr error
}

func (s *brokenStore) Load(context.Context) (state.Binding, bool, error) {
	return state.Binding{}, false, s.loadErr
}

func (s *brokenStore) Save(context.Context, state.Binding) error { return s.saveErr }

func (s *brokenStore) Close() error { return nil }

var errBoom = errors.New("boom")

type harness struct {
	ctrl     *Controller
	store    *state.FileStore
	line     *fakeLINE
	telegram *fakeTelegram
	metrics  *Metrics
}

// newHarness wires a controller with tags "A" and "B" so the rendered
// bodies read "[A] U1: hello" and "[B - Sam]: hi".
func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		store:    state.NewFileStore(filepath.Join(t.TempDir(), "state", "binding.json")),
		line:     &fakeLINE{},
		telegram: &fakeTelegram{},
		metrics:  NewMetrics(nil),
	}
	opts := Options{
		TelegramChatID: "-100200300",
		LINETag:        "A",
		TelegramTag:    "B",
		UnknownSender:  "Unknown",
		JoinReply:      "bridge connected",
		Metrics:        h.metrics,
		Now:            func() time.Time { return fixedNow },
	}
	for _, m := range mutate {
		m(&opts)
	}
	h.ctrl = NewController(h.store, h.line, h.telegram, opts)
	return h
}
