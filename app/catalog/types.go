package catalog

// Book is one normalized catalog entry. Every Book produced by this package
// has passed Sanitize, so no field exceeds its documented cap.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Summary       string   `json:"summary"`
	Cover         string   `json:"cover"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	DownloadLink  string   `json:"download_link"`
	Language      string   `json:"language"`
	Level         string   `json:"level,omitempty"`
	Categories    []string `json:"categories"`
	Tags          []string `json:"tags"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"` // YYYY-MM-DD
	Rating        *float64 `json:"rating,omitempty"`         // clamped to [0,5]
}

// CatalogLink is one crawlable sub-catalog discovered in a feed.
type CatalogLink struct {
	Href  string `json:"href"`
	Title string `json:"title"`
}

// Page is the parsed content of a single feed page.
type Page struct {
	CatalogLinks []CatalogLink
	Books        []Book
	NextHref     string // raw href of the rel="next" link, empty on the last page
}

// Field caps applied by Sanitize.
const (
	TitleMaxLen     = 200
	AuthorMaxLen    = 100
	SummaryMaxLen   = 1000
	URLMaxLen       = 500
	LanguageMaxLen  = 50
	LevelMaxLen     = 50
	TermMaxLen      = 50
	PublisherMaxLen = 100
	DateLen         = 10
)
