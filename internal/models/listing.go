package models

// NotAvailable is the sentinel written for any field that could not be extracted.
const NotAvailable = "N/A"

// ListingURL is the absolute URL of one detail page.
type ListingURL = string

// ListingRecord holds the contact fields scraped from one detail page.
type ListingRecord struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	URL     string `json:"url"`
}

// Columns is the fixed output column order.
var Columns = []string{"Name", "Address", "Phone", "Email", "URL"}

// Row returns the record's fields in Columns order.
func (r ListingRecord) Row() []string {
	return []string{r.Name, r.Address, r.Phone, r.Email, r.URL}
}

// RecordFromRow builds a record from a row in Columns order. Missing
// trailing cells are treated as the sentinel.
func RecordFromRow(row []string) ListingRecord {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return NotAvailable
	}
	return ListingRecord{
		Name:    cell(0),
		Address: cell(1),
		Phone:   cell(2),
		Email:   cell(3),
		URL:     cell(4),
	}
}
