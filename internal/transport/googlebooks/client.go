// Package googlebooks is a thin client for the Google Books volumes API.
package googlebooks

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

const baseURL = "https://www.googleapis.com/books/v1/volumes"

// Client searches the Google Books catalog. The API key is optional; without
// one Google applies stricter anonymous quotas.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a Google Books client.
func New(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// API response shapes, decoded with explicit defaults: a missing field stays
// at its zero value and never fails the decode.
type volumesResponse struct {
	Items []struct {
		VolumeInfo volumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Authors             []string `json:"authors"`
	Description         string   `json:"description"`
	PublishedDate       string   `json:"publishedDate"`
	PageCount           int      `json:"pageCount"`
	Categories          []string `json:"categories"`
	AverageRating       float64  `json:"averageRating"`
	RatingsCount        int      `json:"ratingsCount"`
	InfoLink            string   `json:"infoLink"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
}

// Search returns up to maxResults candidate books for a free-text query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.BookSearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google books search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books search: status %d", resp.StatusCode)
	}

	var decoded volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode google books response: %w", err)
	}

	results := make([]domain.BookSearchResult, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		results = append(results, convert(item.VolumeInfo))
	}
	return results, nil
}

// LookupISBN tries to find an ISBN for a title + author pair. Returns "" when
// nothing matched.
func (c *Client) LookupISBN(ctx context.Context, title, author string) (string, error) {
	query := fmt.Sprintf("intitle:%s inauthor:%s", title, author)
	results, err := c.Search(ctx, query, 1)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].ISBN, nil
}

func convert(info volumeInfo) domain.BookSearchResult {
	title := info.Title
	if title == "" {
		title = "Unknown"
	}
	author := "Unknown"
	if len(info.Authors) > 0 {
		author = strings.Join(info.Authors, ", ")
	}

	return domain.BookSearchResult{
		Title:         title,
		Author:        author,
		ISBN:          pickISBN(info),
		Description:   info.Description,
		PublishedDate: info.PublishedDate,
		PageCount:     info.PageCount,
		Categories:    info.Categories,
		AverageRating: info.AverageRating,
		RatingsCount:  info.RatingsCount,
		Source:        "google_books",
		InfoURL:       info.InfoLink,
	}
}

// pickISBN prefers ISBN-13, falling back to the last ISBN-10 seen.
func pickISBN(info volumeInfo) string {
	isbn := ""
	for _, ident := range info.IndustryIdentifiers {
		if ident.Type == "ISBN_13" {
			return ident.Identifier
		}
		if ident.Type == "ISBN_10" {
			isbn = ident.Identifier
		}
	}
	return isbn
}
