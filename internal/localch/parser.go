package localch

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"localch-scraper/internal/models"
)

// Each field is read from the first selector in its chain that yields text.
var (
	nameSelectors    = []string{"h1"}
	addressSelectors = []string{"address", "[data-testid='address']"}
	phoneSelectors   = []string{"a[href^='tel:']"}
	emailSelectors   = []string{"a[href^='mailto:']"}
)

// ParseListing extracts a record from a detail page. It never fails: markup
// that cannot be parsed or fields that are missing come back as the sentinel.
func ParseListing(body []byte, pageURL string) models.ListingRecord {
	record := models.ListingRecord{
		Name:    models.NotAvailable,
		Address: models.NotAvailable,
		Phone:   models.NotAvailable,
		Email:   models.NotAvailable,
		URL:     pageURL,
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return record
	}
	record.Name = firstText(doc, nameSelectors)
	record.Address = firstText(doc, addressSelectors)
	record.Phone = firstText(doc, phoneSelectors)
	record.Email = firstText(doc, emailSelectors)
	return record
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := cleanText(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return models.NotAvailable
}

// cleanText trims and collapses inner whitespace runs to single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
