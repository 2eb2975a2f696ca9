package domain

// BookSearchResult is a candidate book from an external catalog search.
// Every field a catalog may omit has an explicit zero default; the transport
// clients fill exactly this shape at the boundary.
type BookSearchResult struct {
	Title         string
	Author        string
	ISBN          string
	Description   string
	PublishedDate string
	PageCount     int
	Categories    []string
	AverageRating float64
	RatingsCount  int
	Source        string
	InfoURL       string
}
