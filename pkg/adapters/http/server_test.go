package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/aretw0/concord/pkg/adapters/http"
	"github.com/aretw0/concord/pkg/coordinator"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/ports"
	"github.com/aretw0/concord/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guidanceOK(text string) ports.GuidanceClient {
	return ports.GuidanceClientFunc(func(ctx context.Context, env domain.Envelope) (*domain.GuidanceResponse, error) {
		return &domain.GuidanceResponse{StatusCode: 200, Body: []byte(`{"guidance":"` + text + `"}`)}, nil
	})
}

func newTestServer(client ports.GuidanceClient, opts ...httpadapter.Option) (*session.Registry, http.Handler) {
	streams := httpadapter.NewStreamManager()
	reg := session.NewRegistry(client, session.WithPageHooks(streams.Hooks()))
	opts = append(opts, httpadapter.WithStreams(streams))
	return reg, httpadapter.NewHandler(reg, opts...)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) coordinator.View {
	t.Helper()
	var v coordinator.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestServer_RootRedirects(t *testing.T) {
	_, h := newTestServer(guidanceOK("x"))
	rec := do(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/onboarding", rec.Header().Get("Location"))
}

func TestServer_OnboardingRendersAndMounts(t *testing.T) {
	reg, h := newTestServer(guidanceOK("x"))
	rec := do(h, http.MethodGet, "/onboarding", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Contextual Questions")
	assert.Contains(t, body, "Choose Your Mediator Style")
	assert.Contains(t, body, "Define Your Goals")
	assert.Contains(t, body, "Submit Onboarding Data")
	assert.Equal(t, 1, reg.Len())
	assert.Contains(t, body, reg.IDs()[0])
}

func TestServer_EditAndSubmitFlow(t *testing.T) {
	var got domain.Envelope
	client := ports.GuidanceClientFunc(func(ctx context.Context, env domain.Envelope) (*domain.GuidanceResponse, error) {
		got = env
		return &domain.GuidanceResponse{StatusCode: 200, Body: []byte(`{"guidance":"Talk it over."}`)}, nil
	})
	_, h := newTestServer(client)

	rec := do(h, http.MethodPost, "/api/pages", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeView(t, rec).PageID
	require.NotEmpty(t, id)
	base := "/api/pages/" + id

	rec = do(h, http.MethodPatch, base+"/contextual", `{"field":"conflictDescription","value":"Noise\u0000 at night"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(h, http.MethodPatch, base+"/goals", `{"field":"desiredOutcome","value":"Quiet"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(h, http.MethodPut, base+"/mediator", `{"mediator":"direct"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPost, base+"/submit?wait=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)

	assert.Equal(t, domain.StatusSuccess, v.Status)
	require.NotNil(t, v.Result)
	assert.Equal(t, coordinator.ToneSuccess, v.Result.Tone)
	assert.Equal(t, "Talk it over.", v.Result.Message)
	assert.Equal(t, "Noise at night", got.OnboardingData.ConflictDescription)
	assert.Equal(t, "Quiet", got.OnboardingData.DesiredOutcome)
	assert.Equal(t, domain.MediatorPreference("direct"), got.OnboardingData.MediatorPreference)
}

func TestServer_Rejections(t *testing.T) {
	reg, h := newTestServer(guidanceOK("x"))
	id := reg.Mount().ID
	base := "/api/pages/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"unknown page", http.MethodGet, "/api/pages/missing", "", http.StatusNotFound},
		{"unknown page submit", http.MethodPost, "/api/pages/missing/submit", "", http.StatusNotFound},
		{"unknown field", http.MethodPatch, base + "/contextual", `{"field":"desiredOutcome","value":"x"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPatch, base + "/goals", `{`, http.StatusBadRequest},
		{"oversized input", http.MethodPatch, base + "/goals", `{"field":"desiredOutcome","value":"` + strings.Repeat("a", 5000) + `"}`, http.StatusBadRequest},
		{"unknown mediator", http.MethodPut, base + "/mediator", `{"mediator":"loud"}`, http.StatusBadRequest},
		{"empty mediator", http.MethodPut, base + "/mediator", `{"mediator":""}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}

	page, err := reg.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.Form{}, page.Coordinator.Form())
}

func TestServer_Unmount(t *testing.T) {
	reg, h := newTestServer(guidanceOK("x"))
	id := reg.Mount().ID

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/api/pages/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/api/pages/"+id, "").Code)
	assert.Equal(t, 0, reg.Len())
}

func TestServer_AsyncSubmitReturnsLoadingView(t *testing.T) {
	release := make(chan struct{})
	client := ports.GuidanceClientFunc(func(ctx context.Context, env domain.Envelope) (*domain.GuidanceResponse, error) {
		<-release
		return &domain.GuidanceResponse{StatusCode: 503, Body: []byte(`{"details":"busy"}`)}, nil
	})
	reg, h := newTestServer(client)
	page := reg.Mount()

	rec := do(h, http.MethodPost, "/api/pages/"+page.ID+"/submit", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, domain.StatusLoading, v.Status)
	assert.Equal(t, coordinator.Button{Label: coordinator.LabelSubmitting, Disabled: true}, v.Button)
	assert.Nil(t, v.Result)

	close(release)
	require.Eventually(t, func() bool {
		return page.Coordinator.State().Status == domain.StatusError
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Error: busy", page.Coordinator.State().Text())
}

func TestServer_DrainWaitsForBackgroundSubmits(t *testing.T) {
	release := make(chan struct{})
	client := ports.GuidanceClientFunc(func(ctx context.Context, env domain.Envelope) (*domain.GuidanceResponse, error) {
		<-release
		return &domain.GuidanceResponse{StatusCode: 200, Body: []byte(`{"guidance":"ok"}`)}, nil
	})
	var resolved []string
	reg := session.NewRegistry(client, session.WithPageHooks(domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) { resolved = append(resolved, e.PageID) },
	}))
	s := httpadapter.NewServer(reg)
	h := s.Handler()
	page := reg.Mount()

	require.Equal(t, http.StatusAccepted, do(h, http.MethodPost, "/api/pages/"+page.ID+"/submit", "").Code)

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Drain(short), context.DeadlineExceeded)

	close(release)
	require.NoError(t, s.Drain(context.Background()))
	assert.Equal(t, domain.StatusSuccess, page.Coordinator.State().Status)
	assert.Equal(t, []string{page.ID}, resolved)
}

func TestServer_DrainWithNothingPending(t *testing.T) {
	s := httpadapter.NewServer(session.NewRegistry(guidanceOK("x")))
	assert.NoError(t, s.Drain(context.Background()))
}

func TestServer_EventsStreamTransitions(t *testing.T) {
	release := make(chan struct{})
	client := ports.GuidanceClientFunc(func(ctx context.Context, env domain.Envelope) (*domain.GuidanceResponse, error) {
		<-release
		return &domain.GuidanceResponse{StatusCode: 200, Body: []byte(`{"guidance":"ok"}`)}, nil
	})
	streams := httpadapter.NewStreamManager()
	reg := session.NewRegistry(client, session.WithPageHooks(streams.Hooks()))
	srv := httptest.NewServer(httpadapter.NewHandler(reg, httpadapter.WithStreams(streams)))
	defer srv.Close()
	page := reg.Mount()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/pages/"+page.ID+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func() domain.TransitionEvent {
		t.Helper()
		for lines.Scan() {
			line := lines.Text()
			if data, ok := strings.CutPrefix(line, "data: "); ok && data != "connected" {
				var e domain.TransitionEvent
				require.NoError(t, json.Unmarshal([]byte(data), &e))
				return e
			}
		}
		t.Fatal("stream ended")
		return domain.TransitionEvent{}
	}

	require.Eventually(t, func() bool { return streams.Subscribers(page.ID) == 1 }, time.Second, 5*time.Millisecond)

	submit, err := http.Post(srv.URL+"/api/pages/"+page.ID+"/submit", "application/json", nil)
	require.NoError(t, err)
	submit.Body.Close()
	assert.Equal(t, http.StatusAccepted, submit.StatusCode)

	loading := next()
	assert.Equal(t, page.ID, loading.PageID)
	assert.Equal(t, domain.StatusLoading, loading.To)

	close(release)
	done := next()
	assert.Equal(t, domain.StatusSuccess, done.To)
	require.NotNil(t, done.Message)
	assert.Equal(t, "ok", *done.Message)
}

func TestServer_EventsUnknownPage(t *testing.T) {
	_, h := newTestServer(guidanceOK("x"))
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/pages/nope/events", "").Code)
}

func TestServer_MetaAndExtraRoutes(t *testing.T) {
	_, h := newTestServer(guidanceOK("x"), httpadapter.WithRoutes(func(r chi.Router) {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		})
	}))

	assert.JSONEq(t, `{"status":"ok"}`, do(h, http.MethodGet, "/health", "").Body.String())
	assert.Contains(t, do(h, http.MethodGet, "/info", "").Body.String(), `"app":"concord"`)
	assert.Equal(t, "metrics", do(h, http.MethodGet, "/metrics", "").Body.String())

	rec := do(h, http.MethodOptions, "/api/pages", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := httpadapter.NewStreamManager()
	ch, unsubscribe := sm.Subscribe("p")
	for i := 0; i < 20; i++ {
		sm.Broadcast("p", "m")
	}
	assert.Len(t, ch, cap(ch))

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, sm.Subscribers("p"))
	sm.Broadcast("p", "after")
}
