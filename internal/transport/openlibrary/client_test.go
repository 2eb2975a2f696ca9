package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleResponse = `{
	"docs": [
		{
			"key": "/works/OW123",
			"title": "Hyperion",
			"author_name": ["Dan Simmons"],
			"isbn": ["0553283685", "9780553283686"],
			"first_publish_year": 1989,
			"number_of_pages_median": 482,
			"subject": ["Science fiction", "Pilgrims", "Poets", "Space opera", "Hugo winner", "Shrike"],
			"ratings_average": 4.2,
			"ratings_count": 900
		},
		{
			"title": "Bare Minimum"
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := New()
	c.baseURL = server.URL
	return c
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "hyperion" {
			t.Errorf("q = %q", got)
		}
		if r.URL.Query().Get("fields") == "" {
			t.Error("fields param missing")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	})

	results, err := c.Search(context.Background(), "hyperion", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}

	first := results[0]
	if first.Title != "Hyperion" || first.Author != "Dan Simmons" {
		t.Errorf("first = %+v", first)
	}
	if first.ISBN != "9780553283686" {
		t.Errorf("ISBN = %q, want 13-digit preferred", first.ISBN)
	}
	if first.PublishedDate != "1989" {
		t.Errorf("PublishedDate = %q", first.PublishedDate)
	}
	if len(first.Categories) != maxCategories {
		t.Errorf("categories len = %d, want capped at %d", len(first.Categories), maxCategories)
	}
	if first.InfoURL != "https://openlibrary.org/works/OW123" {
		t.Errorf("InfoURL = %q", first.InfoURL)
	}

	second := results[1]
	if second.Author != "Unknown" || second.ISBN != "" || second.PublishedDate != "" {
		t.Errorf("defaults not applied: %+v", second)
	}
}

func TestSearch_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := c.Search(context.Background(), "hyperion", 5); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestPickISBN(t *testing.T) {
	tests := []struct {
		name  string
		isbns []string
		want  string
	}{
		{"prefers 13-digit", []string{"0553283685", "9780553283686"}, "9780553283686"},
		{"falls back to first", []string{"0553283685", "055328999X"}, "0553283685"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickISBN(tt.isbns); got != tt.want {
				t.Errorf("pickISBN = %q, want %q", got, tt.want)
			}
		})
	}
}
