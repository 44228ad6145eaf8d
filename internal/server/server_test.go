package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hash-resume/internal/payment"
	"github.com/jonathan/hash-resume/internal/server/ratelimit"
	"github.com/jonathan/hash-resume/internal/session"
	"github.com/jonathan/hash-resume/internal/storage"
	"github.com/jonathan/hash-resume/internal/types"
)

type stubGateway struct {
	status atomic.Value // string
}

func newStubGateway(status string) *stubGateway {
	g := &stubGateway{}
	g.status.Store(status)
	return g
}

func (g *stubGateway) Register(context.Context, string) error { return nil }

func (g *stubGateway) Status(context.Context, string) (string, error) {
	return g.status.Load().(string), nil
}

func newTestServer(t *testing.T, gateway payment.Gateway) (*Server, *session.Session) {
	t.Helper()
	sess := session.New(storage.NewMemoryStore(), session.Options{
		QuietPeriod: 10 * time.Millisecond,
		Gateway:     gateway,
		Flow: payment.FlowConfig{
			PollInterval:       10 * time.Millisecond,
			ConfirmDelay:       time.Hour,
			MinReferenceLength: 6,
		},
		PrintPDF: func(context.Context, string) ([]byte, error) {
			return []byte("%PDF-1.4"), nil
		},
	})
	srv, err := New(Config{
		Session:   sess,
		RateLimit: &ratelimit.Config{Enabled: false},
		KeepAlive: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		srv.rateLimiter.Stop()
		_ = sess.Close(context.Background())
	})
	return srv, sess
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNew_RequiresSession(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestCORS_Preflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodOptions, "/document", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestDocument_EditAndGet(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/document/edits", `{"path":"personalInfo.fullName","value":"Jane Doe"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[session.Snapshot](t, rec)
	assert.Equal(t, "Jane Doe", snap.Document.PersonalInfo.FullName)

	rec = do(t, srv, http.MethodGet, "/document", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[session.Snapshot](t, rec)
	assert.Equal(t, "Jane Doe", got.Document.PersonalInfo.FullName)
	assert.Equal(t, snap.Revision, got.Revision)
}

func TestDocument_EditErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed JSON", body: `{"path":`, want: http.StatusBadRequest},
		{name: "missing path", body: `{"value":"x"}`, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"path":"personalInfo.shoeSize","value":"x"}`, want: http.StatusBadRequest},
		{name: "non-numeric index", body: `{"path":"experience.first.title","value":"x"}`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/document/edits", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestDocument_Replace(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPut, "/document", `{"summary":"Backend engineer","skills":["Go"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[session.Snapshot](t, rec)
	assert.Equal(t, "Backend engineer", snap.Document.Summary)
	assert.Equal(t, []string{"Go"}, snap.Document.Skills)
	assert.NotNil(t, snap.Document.Experience)

	rec = do(t, srv, http.MethodPut, "/document", `{"experience":[{"title":42}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, "/document", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocument_Entries(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/document/experience/entries", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decode[EntryResponse](t, rec)
	assert.NotEmpty(t, entry.ID)
	require.Len(t, entry.Document.Experience, 1)
	assert.Equal(t, entry.ID, entry.Document.Experience[0].ID)

	rec = do(t, srv, http.MethodPost, "/document/hobbies/entries", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/document/experience/entries/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/document/experience/entries/0", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[session.Snapshot](t, rec).Document.Experience)
}

func TestDocument_Skills(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/document/skills", `{"skill":"Go"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[SkillResponse](t, rec).Added)

	rec = do(t, srv, http.MethodPost, "/document/skills", `{"skill":"Go"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[SkillResponse](t, rec).Added)

	rec = do(t, srv, http.MethodPost, "/document/skills/merge", `{"skill":"Go, Kubernetes , SQL"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Go", "Kubernetes", "SQL"}, decode[session.Snapshot](t, rec).Document.Skills)

	rec = do(t, srv, http.MethodDelete, "/document/skills/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Go", "SQL"}, decode[session.Snapshot](t, rec).Document.Skills)
}

func TestDrag_HandleOnlyReorder(t *testing.T) {
	srv, sess := newTestServer(t, nil)
	for range 3 {
		_, _, err := sess.AddEntry(types.ListProjects)
		require.NoError(t, err)
	}
	before := sess.Document().Document.Projects

	rec := do(t, srv, http.MethodPost, "/drag/start", `{"list":"projects","index":0,"region":"body"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/drag/start", `{"list":"projects","index":0,"region":"handle"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	drag := decode[DragResponse](t, rec)
	require.True(t, drag.Active)
	assert.Equal(t, 0, drag.Source.Index)
	assert.Equal(t, before[0].ID, drag.Source.ID)

	rec = do(t, srv, http.MethodPost, "/drag/start", `{"list":"projects","index":1,"region":"handle"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, "/drag/drop", `{"list":"projects","index":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	drop := decode[DropResponse](t, rec)
	assert.True(t, drop.Moved)
	require.Len(t, drop.Document.Projects, 3)
	assert.Equal(t, before[0].ID, drop.Document.Projects[2].ID)
	assert.Equal(t, before[1].ID, drop.Document.Projects[0].ID)

	rec = do(t, srv, http.MethodGet, "/drag", "")
	assert.False(t, decode[DragResponse](t, rec).Active)
}

func TestDrag_Cancel(t *testing.T) {
	srv, sess := newTestServer(t, nil)
	_, _, err := sess.AddEntry(types.ListEducation)
	require.NoError(t, err)

	rec := do(t, srv, http.MethodPost, "/drag/start", `{"list":"education","index":0,"region":"handle"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/drag/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[DragResponse](t, rec).Active)
}

func TestAI_FallbacksWithoutKey(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/ai/ats", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ats := decode[types.ATSAnalysis](t, rec)
	assert.Equal(t, 0, ats.Score)

	rec = do(t, srv, http.MethodPost, "/ai/draft", `{"section":"summary"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decode[DraftResponse](t, rec)
	assert.Equal(t, types.SectionSummary, draft.Section)
	assert.NotEmpty(t, draft.Text)

	rec = do(t, srv, http.MethodPost, "/ai/draft", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobDescription_SetAndGet(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPut, "/job-description", `{"jobDescription":"Go developer"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/job-description", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Go developer", decode[JobDescriptionResponse](t, rec).JobDescription)
}

func TestJobDescription_FetchWithoutFetcher(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/job-description/fetch", `{"url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/job-description/fetch", `{"url":"https://boards.greenhouse.io/acme/jobs/1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExport_LockedUntilPaid(t *testing.T) {
	srv, _ := newTestServer(t, newStubGateway("paid"))

	rec := do(t, srv, http.MethodGet, "/export?format=html", "")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = do(t, srv, http.MethodPost, "/export/request", "")
	require.Equal(t, http.StatusOK, rec.Code)
	req := decode[ExportRequestResponse](t, rec)
	assert.False(t, req.Allowed)
	assert.NotEqual(t, payment.StateIdle, req.Payment.State)

	rec = do(t, srv, http.MethodPut, "/payment/reference", `{"reference":"ABC123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/payment/submit", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Eventually(t, func() bool {
		return decode[session.PaymentView](t, do(t, srv, http.MethodGet, "/payment", "")).Unlocked
	}, time.Second, 10*time.Millisecond)

	rec = do(t, srv, http.MethodPost, "/export/request", "")
	assert.True(t, decode[ExportRequestResponse](t, rec).Allowed)

	rec = do(t, srv, http.MethodGet, "/export?format=latex", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-tex; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="resume.tex"`)

	rec = do(t, srv, http.MethodGet, "/export?format=pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/export?format=docx", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayment_ShortReference(t *testing.T) {
	srv, _ := newTestServer(t, newStubGateway("pending"))

	do(t, srv, http.MethodPost, "/payment/open", "")
	rec := do(t, srv, http.MethodPut, "/payment/reference", `{"reference":"12345"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/payment/submit", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[PaymentErrorResponse](t, rec)
	assert.Equal(t, payment.MsgInvalidReference, resp.Payment.Error)
	assert.False(t, resp.Payment.Unlocked)
}

func TestPayment_CloseReturnsToIdle(t *testing.T) {
	srv, _ := newTestServer(t, newStubGateway("pending"))

	do(t, srv, http.MethodPost, "/payment/open", "")
	do(t, srv, http.MethodPut, "/payment/reference", `{"reference":"ABC123"}`)
	rec := do(t, srv, http.MethodPost, "/payment/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/payment/close", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[session.PaymentView](t, rec)
	assert.Equal(t, payment.StateIdle, view.State)
	assert.False(t, view.Unlocked)
}

func TestPaymentEvents_StreamsSnapshots(t *testing.T) {
	srv, _ := newTestServer(t, newStubGateway("pending"))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/payment/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	do(t, srv, http.MethodPost, "/payment/open", "")

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case line := <-lines:
			if strings.HasPrefix(line, "event: payment") {
				return
			}
		case <-timeout:
			t.Fatal("no payment event received")
		}
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	sess := session.New(storage.NewMemoryStore(), session.Options{})
	defer func() { _ = sess.Close(context.Background()) }()

	srv, err := New(Config{
		Session: sess,
		RateLimit: &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  2,
			DefaultWindow: time.Minute,
		},
	})
	require.NoError(t, err)
	defer srv.rateLimiter.Stop()

	var last *httptest.ResponseRecorder
	for range 3 {
		last = do(t, srv, http.MethodGet, "/document", "")
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decode[map[string]any](t, last)["error"])
}

func TestExtractClientID(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", srv.extractClientID(req))

	req.RemoteAddr = "unix"
	assert.Equal(t, "unix", srv.extractClientID(req))
}
