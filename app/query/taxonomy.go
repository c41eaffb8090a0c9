package query

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

// LevelOrder is the canonical reading-level ladder, in facet display order.
var LevelOrder = []string{"Level 1", "Level 2", "Level 3", "Level 4"}

var defaultLevelAliases = map[string]string{
	"level 1":         "Level 1",
	"level1":          "Level 1",
	"foundations":     "Level 1",
	"beginner":        "Level 1",
	"level 2":         "Level 2",
	"level2":          "Level 2",
	"early reader":    "Level 2",
	"early":           "Level 2",
	"level 3":         "Level 3",
	"level3":          "Level 3",
	"intermediate":    "Level 3",
	"level 4":         "Level 4",
	"level4":          "Level 4",
	"advanced":        "Level 4",
	"advanced reader": "Level 4",
}

var defaultLanguageAliases = map[string]string{
	"en": "English", "eng": "English", "english": "English",
	"fr": "French", "fra": "French", "french": "French",
	"es": "Spanish", "spa": "Spanish", "spanish": "Spanish",
	"hi": "Hindi", "hin": "Hindi", "hindi": "Hindi",
	"ta": "Tamil", "tam": "Tamil", "tamil": "Tamil",
	"te": "Telugu", "tel": "Telugu", "telugu": "Telugu",
	"kn": "Kannada", "kan": "Kannada", "kannada": "Kannada",
	"ml": "Malayalam", "mal": "Malayalam", "malayalam": "Malayalam",
	"mr": "Marathi", "mar": "Marathi", "marathi": "Marathi",
	"bn": "Bengali", "ben": "Bengali", "bengali": "Bengali",
	"gu": "Gujarati", "guj": "Gujarati", "gujarati": "Gujarati",
	"pa": "Punjabi", "pan": "Punjabi", "punjabi": "Punjabi",
	"ur": "Urdu", "urd": "Urdu", "urdu": "Urdu",
	"as": "Assamese", "asm": "Assamese", "assamese": "Assamese",
	"or": "Odia", "ori": "Odia", "odia": "Odia", "oriya": "Odia",
	"sw": "Swahili", "swa": "Swahili", "swahili": "Swahili",
	"ne": "Nepali", "nep": "Nepali", "nepali": "Nepali",
	"si": "Sinhala", "sin": "Sinhala", "sinhala": "Sinhala",
	"vi": "Vietnamese", "vie": "Vietnamese", "vietnamese": "Vietnamese",
	"id": "Indonesian", "ind": "Indonesian", "indonesian": "Indonesian",
	"pt": "Portuguese", "por": "Portuguese", "portuguese": "Portuguese",
	"de": "German", "deu": "German", "german": "German",
	"zh": "Chinese", "zho": "Chinese", "chinese": "Chinese",
	"ar": "Arabic", "ara": "Arabic", "arabic": "Arabic",
}

var defaultCategoryOrder = []string{
	"Adventure",
	"Animals",
	"Environment",
	"Family & Friends",
	"Fiction",
	"Folktales",
	"Funny",
	"Growing Up",
	"History",
	"Non-fiction",
	"Poems & Songs",
	"School",
	"Science & Technology",
	"Sports",
}

var defaultCategoryAliases = map[string]string{
	"adventure & mystery": "Adventure",
	"mystery":             "Adventure",
	"animal":              "Animals",
	"nature":              "Environment",
	"environment & nature": "Environment",
	"family":              "Family & Friends",
	"friends":             "Family & Friends",
	"friendship":          "Family & Friends",
	"folktale":            "Folktales",
	"folk tale":           "Folktales",
	"folk tales":          "Folktales",
	"humour":              "Funny",
	"humor":               "Funny",
	"growing-up":          "Growing Up",
	"nonfiction":          "Non-fiction",
	"non fiction":         "Non-fiction",
	"poems":               "Poems & Songs",
	"songs":               "Poems & Songs",
	"rhymes":              "Poems & Songs",
	"poetry":              "Poems & Songs",
	"science":             "Science & Technology",
	"technology":          "Science & Technology",
	"stem":                "Science & Technology",
	"sport":               "Sports",
}

// Taxonomy maps the raw labels catalogs publish onto the canonical vocabulary
// the filter facets expose. Lookups are keyed on trimmed lowercase labels.
type Taxonomy struct {
	languageAliases map[string]string
	categoryAliases map[string]string
	categoryOrder   []string
	levelAliases    map[string]string
}

type taxonomyFile struct {
	Languages map[string]string `yaml:"languages"`
	Levels    map[string]string `yaml:"levels"`
	Categories []struct {
		Name    string   `yaml:"name"`
		Aliases []string `yaml:"aliases"`
	} `yaml:"categories"`
}

// DefaultTaxonomy returns the built-in vocabulary tables.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		languageAliases: defaultLanguageAliases,
		categoryAliases: defaultCategoryAliases,
		categoryOrder:   defaultCategoryOrder,
		levelAliases:    defaultLevelAliases,
	}
}

// LoadTaxonomy reads a YAML vocabulary file and merges it over the built-in
// tables. File entries win on alias collisions.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}

	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file: %w", err)
	}

	t := &Taxonomy{
		languageAliases: cloneAliases(defaultLanguageAliases),
		categoryAliases: cloneAliases(defaultCategoryAliases),
		categoryOrder:   append([]string{}, defaultCategoryOrder...),
		levelAliases:    cloneAliases(defaultLevelAliases),
	}

	for alias, canonical := range file.Languages {
		t.languageAliases[normalizeKey(alias)] = canonical
	}
	for alias, canonical := range file.Levels {
		t.levelAliases[normalizeKey(alias)] = canonical
	}
	for _, category := range file.Categories {
		if category.Name == "" {
			continue
		}
		if !containsString(t.categoryOrder, category.Name) {
			t.categoryOrder = append(t.categoryOrder, category.Name)
		}
		for _, alias := range category.Aliases {
			t.categoryAliases[normalizeKey(alias)] = category.Name
		}
	}

	return t, nil
}

// CanonicalLanguage resolves a raw language label to its canonical display
// name, falling back to BCP 47 tag resolution for codes the alias table does
// not cover. Returns "" when nothing resolves.
func (t *Taxonomy) CanonicalLanguage(raw string) string {
	key := normalizeKey(raw)
	if key == "" {
		return ""
	}
	if canonical, ok := t.languageAliases[key]; ok {
		return canonical
	}

	tag, err := language.Parse(key)
	if err != nil {
		return ""
	}
	name := display.English.Languages().Name(tag)
	if name == "" || strings.EqualFold(name, "unknown language") {
		return ""
	}
	return name
}

// CanonicalCategory resolves a raw category label to a canonical facet name,
// or "" when the label maps to nothing.
func (t *Taxonomy) CanonicalCategory(raw string) string {
	key := normalizeKey(raw)
	if key == "" {
		return ""
	}
	if canonical, ok := t.categoryAliases[key]; ok {
		return canonical
	}
	for _, canonical := range t.categoryOrder {
		if strings.EqualFold(canonical, raw) {
			return canonical
		}
	}
	return ""
}

// CanonicalLevel resolves a raw level label against the level ladder: exact
// alias match first, then substring containment in either direction. Labels
// that resolve to nothing return "".
func (t *Taxonomy) CanonicalLevel(raw string) string {
	key := normalizeKey(raw)
	if key == "" {
		return ""
	}
	if canonical, ok := t.levelAliases[key]; ok {
		return canonical
	}
	for alias, canonical := range t.levelAliases {
		if strings.Contains(key, alias) || strings.Contains(alias, key) {
			return canonical
		}
	}
	return ""
}

// CategoryOrder returns the canonical facet ordering for categories.
func (t *Taxonomy) CategoryOrder() []string {
	return t.categoryOrder
}

func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func cloneAliases(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
