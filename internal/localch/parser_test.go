package localch

import (
	"testing"

	"localch-scraper/internal/models"
)

const detailURL = "https://www.local.ch/en/d/zurich/8001/bakery/beck-glatz-abc123"

func TestParseListingAllFields(t *testing.T) {
	page := []byte(`<!doctype html>
<html><body>
  <h1>
     Beck Glatz
  </h1>
  <h1>Second heading</h1>
  <address>Bahnhofstrasse 1, 8001 Zürich</address>
  <div data-testid="address">ignored fallback</div>
  <a href="tel:+41441234567">044 123 45 67</a>
  <a href="tel:+41000000000">second phone</a>
  <a href="mailto:info@beck.ch">info@beck.ch</a>
</body></html>`)

	got := ParseListing(page, detailURL)
	want := models.ListingRecord{
		Name:    "Beck Glatz",
		Address: "Bahnhofstrasse 1, 8001 Zürich",
		Phone:   "044 123 45 67",
		Email:   "info@beck.ch",
		URL:     detailURL,
	}
	if got != want {
		t.Fatalf("unexpected record:\n got  %+v\n want %+v", got, want)
	}
}

func TestParseListingAllMissing(t *testing.T) {
	got := ParseListing([]byte(`<html><body><p>Nothing here</p></body></html>`), detailURL)
	want := models.ListingRecord{
		Name:    models.NotAvailable,
		Address: models.NotAvailable,
		Phone:   models.NotAvailable,
		Email:   models.NotAvailable,
		URL:     detailURL,
	}
	if got != want {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestParseListingHeadingOnly(t *testing.T) {
	got := ParseListing([]byte(`<h1>Only A Name</h1>`), detailURL)
	if got.Name != "Only A Name" {
		t.Fatalf("unexpected name %q", got.Name)
	}
	for field, value := range map[string]string{"address": got.Address, "phone": got.Phone, "email": got.Email} {
		if value != models.NotAvailable {
			t.Errorf("expected %s to be sentinel, got %q", field, value)
		}
	}
	if got.URL != detailURL {
		t.Fatalf("URL not preserved: %q", got.URL)
	}
}

func TestParseListingAddressFallback(t *testing.T) {
	page := []byte(`<h1>Shop</h1><span data-testid="address">Limmatquai 2 8001 Zürich</span>`)
	if got := ParseListing(page, detailURL).Address; got != "Limmatquai 2 8001 Zürich" {
		t.Fatalf("expected data-testid fallback, got %q", got)
	}
}

func TestParseListingEmptyAddressFallsThrough(t *testing.T) {
	page := []byte(`<address>   </address><div data-testid="address">Seestrasse 9</div>`)
	if got := ParseListing(page, detailURL).Address; got != "Seestrasse 9" {
		t.Fatalf("expected blank address element to fall through, got %q", got)
	}
}

func TestParseListingIgnoresNonSchemeLinks(t *testing.T) {
	page := []byte(`<a href="/call">Call us</a><a href="https://x.ch/mailto:">not mail</a>`)
	got := ParseListing(page, detailURL)
	if got.Phone != models.NotAvailable || got.Email != models.NotAvailable {
		t.Fatalf("expected sentinels for non-scheme links, got %+v", got)
	}
}

func TestParseListingEmptyBody(t *testing.T) {
	got := ParseListing(nil, detailURL)
	if got.Name != models.NotAvailable || got.URL != detailURL {
		t.Fatalf("unexpected record for empty body: %+v", got)
	}
}
