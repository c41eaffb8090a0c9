package catalog

import (
	"errors"
	"testing"
)

const rootFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>StoryWeaver Catalog</title>
  <id>urn:storyweaver:catalog</id>
  <updated>2024-01-01T00:00:00Z</updated>
  <link href="https://example.com/catalog/english.xml" title="English" type="application/atom+xml;profile=opds-catalog;kind=navigation" rel="subsection"/>
  <link href="https://example.com/catalog/french.xml" title="French" type="application/atom+xml;profile=opds-catalog;kind=acquisition"/>
  <link href="https://example.com/catalog/hindi.xml" title="Hindi" rel="http://opds-spec.org/navigation"/>
  <link href="https://example.com/search" rel="search" type="application/opensearchdescription+xml"/>
  <link href="https://example.com/untitled.xml" type="application/atom+xml;kind=navigation"/>
</feed>`

func TestParsePageDiscoversCatalogLinks(t *testing.T) {
	parser := NewParser()
	page, err := parser.ParsePage([]byte(rootFeedXML), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(page.CatalogLinks) != 3 {
		t.Fatalf("Expected 3 catalog links, got %d", len(page.CatalogLinks))
	}

	expected := []CatalogLink{
		{Href: "https://example.com/catalog/english.xml", Title: "English"},
		{Href: "https://example.com/catalog/french.xml", Title: "French"},
		{Href: "https://example.com/catalog/hindi.xml", Title: "Hindi"},
	}
	for i, want := range expected {
		if page.CatalogLinks[i] != want {
			t.Errorf("Link %d: expected %+v, got %+v", i, want, page.CatalogLinks[i])
		}
	}
}

func TestParsePageDuplicateLinksKept(t *testing.T) {
	data := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Catalog</title>
  <link href="https://example.com/a.xml" title="Same" rel="subsection"/>
  <link href="https://example.com/a.xml" title="Same" rel="subsection"/>
</feed>`

	parser := NewParser()
	page, err := parser.ParsePage([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Duplicates merge by book id downstream, not here
	if len(page.CatalogLinks) != 2 {
		t.Errorf("Expected 2 catalog links, got %d", len(page.CatalogLinks))
	}
}

func TestParsePageNextLink(t *testing.T) {
	data := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>English</title>
  <link href="/catalog/english.xml?page=2" rel="next"/>
  <entry>
    <title>A Fox Tale</title>
    <id>SW-1</id>
  </entry>
</feed>`

	parser := NewParser()
	page, err := parser.ParsePage([]byte(data), "English")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if page.NextHref != "/catalog/english.xml?page=2" {
		t.Errorf("Expected next href '/catalog/english.xml?page=2', got '%s'", page.NextHref)
	}
	if len(page.Books) != 1 {
		t.Fatalf("Expected 1 book, got %d", len(page.Books))
	}
	if page.Books[0].Language != "English" {
		t.Errorf("Expected language 'English', got '%s'", page.Books[0].Language)
	}
}

func TestParsePageNoNextLink(t *testing.T) {
	data := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>English</title>
</feed>`

	parser := NewParser()
	page, err := parser.ParsePage([]byte(data), "English")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if page.NextHref != "" {
		t.Errorf("Expected empty next href, got '%s'", page.NextHref)
	}
}

func TestParsePageMalformedXML(t *testing.T) {
	parser := NewParser()
	_, err := parser.ParsePage([]byte("not xml at all <<<"), "English")
	if err == nil {
		t.Fatal("Expected parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected *ParseError, got: %T", err)
	}
}
