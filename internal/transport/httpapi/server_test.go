package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/shelfmate/shelfmate/internal/db/sqlite"
	"github.com/shelfmate/shelfmate/internal/domain"
	readsrepo "github.com/shelfmate/shelfmate/internal/repository/reads"
	reviewsrepo "github.com/shelfmate/shelfmate/internal/repository/reviews"
	sessionsrepo "github.com/shelfmate/shelfmate/internal/repository/sessions"
	lookupuc "github.com/shelfmate/shelfmate/internal/usecase/lookup"
	readsuc "github.com/shelfmate/shelfmate/internal/usecase/reads"
	recommenduc "github.com/shelfmate/shelfmate/internal/usecase/recommend"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}, nil
}

type stubGenerator struct {
	recs []domain.BookRecommendation
	err  error
}

func (g stubGenerator) Generate(_ context.Context, _ domain.GenerationInput) ([]domain.BookRecommendation, error) {
	return g.recs, g.err
}

type stubCatalog struct {
	results []domain.BookSearchResult
}

func (c stubCatalog) Search(_ context.Context, _ string, _ int) ([]domain.BookSearchResult, error) {
	return c.results, nil
}

func (c stubCatalog) LookupISBN(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

// newTestServer wires the full stack over a throwaway database, with stubbed
// external providers.
func newTestServer(t *testing.T, gen domain.Generator) *httptest.Server {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "shelfmate.db"))
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	readRepo := readsrepo.New(db)
	sessionRepo := sessionsrepo.New(db)
	reviewRepo := reviewsrepo.New(db)

	readSvc := readsuc.New(readRepo, reviewRepo, nil, stubEmbedder{}, zap.NewNop())
	recommendSvc := recommenduc.New(readRepo, sessionRepo, reviewRepo, stubEmbedder{}, gen, zap.NewNop())
	lookupSvc := lookupuc.New(stubCatalog{results: []domain.BookSearchResult{{Title: "Dune", Author: "Frank Herbert", Source: "stub"}}}, nil, zap.NewNop())

	srv := NewServer(readSvc, recommendSvc, lookupSvc, db, zap.NewNop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestLogAndGetRead(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp := postJSON(t, ts.URL+"/v1/reads", logReadRequest{
		Title:      "Dune",
		Author:     "Frank Herbert",
		Rating:     5,
		Review:     "Sandworms.",
		Status:     "finished",
		FinishedAt: "2026-06-15",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	created := decode[readResponse](t, resp)
	if created.ID == "" || created.Rating != 5 || created.FinishedAt != "2026-06-15" {
		t.Fatalf("created = %+v", created)
	}

	resp, err := http.Get(ts.URL + "/v1/reads/" + created.ID)
	if err != nil {
		t.Fatalf("GET read: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[readResponse](t, resp)
	if got.Title != "Dune" || got.Review != "Sandworms." {
		t.Fatalf("got = %+v", got)
	}
}

func TestLogRead_DuplicateConflict(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	req := logReadRequest{Title: "Dune", Author: "Frank Herbert"}
	resp := postJSON(t, ts.URL+"/v1/reads", req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first insert status = %d", resp.StatusCode)
	}

	req.Title = "DUNE"
	resp = postJSON(t, ts.URL+"/v1/reads", req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", resp.StatusCode)
	}
	errResp := decode[errorResponse](t, resp)
	if errResp.Code != "duplicate_read" {
		t.Errorf("error code = %q, want duplicate_read", errResp.Code)
	}
}

func TestLogRead_Validation(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	for name, req := range map[string]logReadRequest{
		"missing title": {Author: "x"},
		"bad rating":    {Title: "a", Author: "b", Rating: 9},
		"bad status":    {Title: "a", Author: "b", Status: "paused"},
		"bad date":      {Title: "a", Author: "b", StartedAt: "June 2024"},
	} {
		resp := postJSON(t, ts.URL+"/v1/reads", req)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, resp.StatusCode)
		}
	}
}

func TestGetRead_NotFound(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp, err := http.Get(ts.URL + "/v1/reads/deadbeef")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListReads_Filtered(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	for _, req := range []logReadRequest{
		{Title: "A", Author: "x", Rating: 5, Status: "finished"},
		{Title: "B", Author: "x", Rating: 2, Status: "abandoned"},
	} {
		resp := postJSON(t, ts.URL+"/v1/reads", req)
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/v1/reads?min_rating=4")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	list := decode[struct {
		Items []readResponse `json:"items"`
	}](t, resp)
	if len(list.Items) != 1 || list.Items[0].Title != "A" {
		t.Fatalf("filtered items = %+v", list.Items)
	}
}

func TestRecommendFlow(t *testing.T) {
	gen := stubGenerator{recs: []domain.BookRecommendation{
		{Title: "Hyperion", Author: "Dan Simmons", Reason: "more space opera", Match: domain.MatchClose},
	}}
	ts := newTestServer(t, gen)

	resp := postJSON(t, ts.URL+"/v1/recommendations", recommendRequest{Mood: "epic space opera", Direction: "go-deeper"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	session := decode[sessionResponse](t, resp)
	if len(session.Recommendations) != 1 || session.Recommendations[0].Title != "Hyperion" {
		t.Fatalf("session = %+v", session)
	}

	resp, err := http.Get(ts.URL + "/v1/sessions")
	if err != nil {
		t.Fatalf("GET sessions: %v", err)
	}
	list := decode[struct {
		Items []sessionResponse `json:"items"`
	}](t, resp)
	if len(list.Items) != 1 || list.Items[0].ID != session.ID {
		t.Fatalf("sessions = %+v", list.Items)
	}

	resp, err = http.Get(ts.URL + "/v1/sessions/" + session.ID)
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	one := decode[sessionResponse](t, resp)
	if one.Mood != "epic space opera" || one.Direction != "go-deeper" {
		t.Fatalf("session = %+v", one)
	}
}

func TestRecommend_ProviderFailure(t *testing.T) {
	ts := newTestServer(t, stubGenerator{err: domain.ErrGenerationProvider})

	resp := postJSON(t, ts.URL+"/v1/recommendations", recommendRequest{Mood: "anything"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestSearchBooks(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp, err := http.Get(ts.URL + "/v1/books/search?q=dune")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	list := decode[struct {
		Items []bookResponse `json:"items"`
	}](t, resp)
	if len(list.Items) != 1 || list.Items[0].Source != "stub" {
		t.Fatalf("items = %+v", list.Items)
	}

	resp, err = http.Get(ts.URL + "/v1/books/search")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing q status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}
