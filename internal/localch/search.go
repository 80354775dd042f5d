package localch

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DetailPathMarker appears in the path of every English listing detail page.
const DetailPathMarker = "/en/d/"

const listingLinkSelector = "a[href*='" + DetailPathMarker + "']"

// SearchURL builds the search results URL for keyword and a 1-based page number.
func SearchURL(baseURL, keyword string, page int) string {
	return baseURL + url.QueryEscape(strings.TrimSpace(keyword)) + "?page=" + strconv.Itoa(page)
}

// ExtractListingLinks returns detail-page links found in a search results page,
// resolved against siteRoot, in document order. Duplicates are kept; the
// collector owns deduplication.
func ExtractListingLinks(body []byte, siteRoot string) ([]string, error) {
	root, err := url.Parse(siteRoot)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find(listingLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		links = append(links, root.ResolveReference(ref).String())
	})
	return links, nil
}
