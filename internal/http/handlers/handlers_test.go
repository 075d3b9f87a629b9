package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"solardryer/internal/models"
	"solardryer/internal/repository"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Push(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fakeDeleter struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeDeleter) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeFeed struct {
	mu        sync.Mutex
	published int
}

func (f *fakeFeed) PublishSessionChange(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published++
}

func (f *fakeFeed) publishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.published
}

type fakeSessions struct {
	list []models.Session
	err  error
}

func (f *fakeSessions) List(ctx context.Context) ([]models.Session, error) {
	return f.list, f.err
}

func (f *fakeSessions) Get(ctx context.Context, id string) (*models.Session, error) {
	for i := range f.list {
		if f.list[i].ID == id {
			return &f.list[i], nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

type fakeSamples struct {
	samples []models.Sample
}

func (f *fakeSamples) ListBySession(ctx context.Context, sessionID string) ([]models.Sample, error) {
	return f.samples, nil
}

type fakeCounter struct {
	synced int
}

func (f *fakeCounter) SyncCounter(max int) {
	f.synced = max
}

func deleteRequest(id, confirm string) *http.Request {
	body := strings.NewReader(`{"confirm": "` + confirm + `"}`)
	r := httptest.NewRequest(http.MethodDelete, "/sessions/"+id, body)
	r.SetPathValue("id", id)
	return r
}

func TestSessionDeleteRequiresExactWord(t *testing.T) {
	cases := []struct {
		name    string
		confirm string
	}{
		{"wrong word", "yes"},
		{"empty", ""},
		{"partial", "experimen"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deleter := &fakeDeleter{}
			feed := &fakeFeed{}
			notifier := &fakeNotifier{}
			handler := NewSessionDeleteHandler(deleter, feed, notifier, zap.NewNop())

			w := httptest.NewRecorder()
			handler(w, deleteRequest("s1", tc.confirm))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if len(deleter.deleted) != 0 {
				t.Fatalf("delete must not be issued on failed confirmation")
			}
			if notifier.count() != 1 {
				t.Fatalf("expected one failure notice, got %d", notifier.count())
			}
			if feed.publishCount() != 0 {
				t.Fatalf("aborted delete must not publish a change event")
			}
		})
	}
}

func TestSessionDeleteCaseInsensitiveConfirm(t *testing.T) {
	deleter := &fakeDeleter{}
	handler := NewSessionDeleteHandler(deleter, &fakeFeed{}, &fakeNotifier{}, zap.NewNop())

	w := httptest.NewRecorder()
	handler(w, deleteRequest("s1", "Experiment"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(deleter.deleted) != 1 || deleter.deleted[0] != "s1" {
		t.Fatalf("expected s1 deleted, got %v", deleter.deleted)
	}
}

func TestSessionDeletePublishesChangeEvent(t *testing.T) {
	// Deleting the running session must reach the live-query watchers, or
	// the reconciled active session would stay visible forever.
	deleter := &fakeDeleter{}
	feed := &fakeFeed{}
	handler := NewSessionDeleteHandler(deleter, feed, &fakeNotifier{}, zap.NewNop())

	w := httptest.NewRecorder()
	handler(w, deleteRequest("s1", "experiment"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if feed.publishCount() != 1 {
		t.Fatalf("expected one change event after delete, got %d", feed.publishCount())
	}
}

func TestSessionDeleteMissingSession(t *testing.T) {
	deleter := &fakeDeleter{err: repository.ErrSessionNotFound}
	feed := &fakeFeed{}
	handler := NewSessionDeleteHandler(deleter, feed, &fakeNotifier{}, zap.NewNop())

	w := httptest.NewRecorder()
	handler(w, deleteRequest("ghost", "experiment"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if feed.publishCount() != 0 {
		t.Fatalf("failed delete must not publish a change event")
	}
}

func TestSessionsHandlerOrdersAndResyncsCounter(t *testing.T) {
	t3 := time.UnixMilli(3000)
	t1 := time.UnixMilli(1000)
	sessions := &fakeSessions{list: []models.Session{
		{ID: "c", Name: "Experiment 7", CreatedAt: &t3},
		{ID: "a", Name: "Experiment 2", CreatedAt: &t1},
		{ID: "b", Name: "drying run", CreatedAtClient: 2000},
	}}
	counter := &fakeCounter{}
	handler := NewSessionsHandler(sessions, counter, zap.NewNop())

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Sessions []models.Session `json:"sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	got := make([]string, 0, len(resp.Sessions))
	for _, s := range resp.Sessions {
		got = append(got, s.ID)
	}
	// Numbered experiments first in numeric order, unnumbered names last.
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}

	if counter.synced != 7 {
		t.Fatalf("expected counter synced to 7, got %d", counter.synced)
	}
}

func TestSessionExportHandler(t *testing.T) {
	ms := int64(1000)
	temp := 25.0
	created := time.UnixMilli(1000)
	sessions := &fakeSessions{list: []models.Session{{ID: "s1", Name: "Experiment 1", CreatedAt: &created}}}
	samples := &fakeSamples{samples: []models.Sample{
		{SessionID: "s1", DryerTempC: &temp, TimestampMs: &ms},
	}}
	handler := NewSessionExportHandler(sessions, samples, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/sessions/s1/export", nil)
	r.SetPathValue("id", "s1")
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `"Experiment 1.csv"`) {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if body := w.Body.String(); !strings.Contains(body, "1970-01-01T00:00:01.000Z,25,--,--") {
		t.Fatalf("unexpected csv body %q", body)
	}
}

func TestSessionDetailHandlerNotFound(t *testing.T) {
	handler := NewSessionDetailHandler(&fakeSessions{}, &fakeSamples{}, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/sessions/ghost", nil)
	r.SetPathValue("id", "ghost")
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
