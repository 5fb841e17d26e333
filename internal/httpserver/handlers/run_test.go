package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/expiryguard/expiryguard/internal/logger"
	"github.com/expiryguard/expiryguard/internal/notify"
	"github.com/expiryguard/expiryguard/internal/reconcile"
	"github.com/expiryguard/expiryguard/internal/store/memory"
)

func TestRun_TriggersOnceThenBacksOff(t *testing.T) {
	d := testDeps(memory.NewStore())
	d.RunTrigger = make(chan struct{}, 1)
	h := Run(d)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first trigger status = %d, want 202", rec.Code)
	}

	// Trigger still pending: the channel is full, so back off.
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second trigger status = %d, want 429", rec.Code)
	}

	select {
	case <-d.RunTrigger:
	default:
		t.Error("trigger channel should hold one pending run")
	}
}

func TestRun_AlsoTriggersSeedReload(t *testing.T) {
	d := testDeps(memory.NewStore())
	d.RunTrigger = make(chan struct{}, 1)
	d.SeedReloadTrigger = make(chan struct{}, 1)

	rec := httptest.NewRecorder()
	Run(d)(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	select {
	case <-d.SeedReloadTrigger:
	default:
		t.Error("seed reload was not triggered")
	}
}

func TestInfra(t *testing.T) {
	store := memory.NewStore()
	d := testDeps(store)
	d.Job = reconcile.New(store, nil, d.Logger, 30, false)
	d.Dispatcher = notify.NewDispatcher(d.Logger, nil, nil)

	rec := httptest.NewRecorder()
	Infra(d)(rec, httptest.NewRequest(http.MethodGet, "/infra", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got struct {
		Mode       string                     `json:"mode"`
		Components map[string]componentStatus `json:"components"`
		LastRun    lastRunStatus              `json:"last_run"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// No channel configured: degraded, not critical (store is fine).
	if got.Mode != "degraded" {
		t.Errorf("mode = %q, want degraded", got.Mode)
	}
	if !got.Components["store"].OK || got.Components["store"].Mode != "memory" {
		t.Errorf("store component = %+v", got.Components["store"])
	}
	if got.Components["scheduler"].Mode != "manual-only" {
		t.Errorf("scheduler component = %+v", got.Components["scheduler"])
	}
	if got.LastRun.Ran {
		t.Error("no run has happened yet")
	}
}

func TestNotifyTest(t *testing.T) {
	received := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := logger.New("error", false)
	d := testDeps(memory.NewStore())
	d.Dispatcher = notify.NewDispatcher(log, nil, []notify.Notifier{notify.NewSlack(srv.URL, 0)})

	rec := httptest.NewRecorder()
	NotifyTest(d)(rec, httptest.NewRequest(http.MethodPost, "/notify/test", strings.NewReader(`{}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if received != 1 {
		t.Errorf("webhook received %d posts, want 1", received)
	}

	var got notifyTestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Channels) != 1 || !got.Channels[0].OK {
		t.Errorf("channels = %+v", got.Channels)
	}
}

func TestNotifyTest_NoChannels(t *testing.T) {
	log := logger.New("error", false)
	d := testDeps(memory.NewStore())
	d.Dispatcher = notify.NewDispatcher(log, nil, nil)

	rec := httptest.NewRecorder()
	NotifyTest(d)(rec, httptest.NewRequest(http.MethodPost, "/notify/test", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
