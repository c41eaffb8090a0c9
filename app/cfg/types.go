package cfg

type Cfg struct {
	// Catalog source
	OpdsURL         string
	PrimaryLanguage string

	// Crawl behavior
	WorkerCount     int
	MaxRetries      int
	RetryDelayMs    int
	FetchTimeoutSec int
	PageTimeoutSec  int
	MaxPages        int
	BatchIntervalMs int

	// Persistence
	DBPath string

	// Taxonomy
	TaxonomiesFile string

	// HTTP server
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
