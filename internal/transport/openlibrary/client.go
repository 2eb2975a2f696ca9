// Package openlibrary is a thin client for the Open Library search API.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shelfmate/shelfmate/internal/domain"
)

const (
	searchURL = "https://openlibrary.org/search.json"
	siteURL   = "https://openlibrary.org"

	// maxCategories bounds the subject tags copied into a result.
	maxCategories = 5
)

// Client searches the Open Library catalog. No credential required.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates an Open Library client.
func New() *Client {
	return &Client{
		baseURL:    searchURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

// searchDoc decodes with explicit defaults; every field may be absent.
type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	FirstPublishYear int      `json:"first_publish_year"`
	PagesMedian      int      `json:"number_of_pages_median"`
	Subject          []string `json:"subject"`
	RatingsAverage   float64  `json:"ratings_average"`
	RatingsCount     int      `json:"ratings_count"`
}

// Search returns up to maxResults candidate books for a free-text query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.BookSearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(maxResults))
	params.Set("fields", "key,title,author_name,isbn,first_publish_year,number_of_pages_median,subject,ratings_average,ratings_count")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open library search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open library search: status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode open library response: %w", err)
	}

	results := make([]domain.BookSearchResult, 0, len(decoded.Docs))
	for _, doc := range decoded.Docs {
		results = append(results, convert(doc))
	}
	return results, nil
}

// LookupISBN tries to find an ISBN for a title + author pair. Returns "" when
// nothing matched.
func (c *Client) LookupISBN(ctx context.Context, title, author string) (string, error) {
	results, err := c.Search(ctx, title+" "+author, 1)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].ISBN, nil
}

func convert(doc searchDoc) domain.BookSearchResult {
	title := doc.Title
	if title == "" {
		title = "Unknown"
	}
	author := "Unknown"
	if len(doc.AuthorName) > 0 {
		author = strings.Join(doc.AuthorName, ", ")
	}

	published := ""
	if doc.FirstPublishYear > 0 {
		published = strconv.Itoa(doc.FirstPublishYear)
	}

	categories := doc.Subject
	if len(categories) > maxCategories {
		categories = categories[:maxCategories]
	}

	return domain.BookSearchResult{
		Title:         title,
		Author:        author,
		ISBN:          pickISBN(doc.ISBN),
		PublishedDate: published,
		PageCount:     doc.PagesMedian,
		Categories:    categories,
		AverageRating: doc.RatingsAverage,
		RatingsCount:  doc.RatingsCount,
		Source:        "open_library",
		InfoURL:       siteURL + doc.Key,
	}
}

// pickISBN prefers the first 13-digit ISBN, falling back to the first listed.
func pickISBN(isbns []string) string {
	for _, isbn := range isbns {
		if len(isbn) == 13 {
			return isbn
		}
	}
	if len(isbns) > 0 {
		return isbns[0]
	}
	return ""
}
