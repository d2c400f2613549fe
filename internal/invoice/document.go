package invoice

import (
	"strconv"
	"time"

	"github.com/glunkad/invoice-service/internal/models"
)

const (
	Title = "Booking Confirmation"

	SectionTripOverview   = "Trip Overview"
	SectionPaymentDetails = "Payment Details"
	SectionHostPolicy     = "Host & Policy"

	mapLinkText = "View Map"
)

// Document is the layout-independent content of an invoice. Encoders draw it;
// they never look at the BookingRecord directly.
type Document struct {
	Title       string
	BookingID   string
	GeneratedOn string
	Sections    []Section
}

// Section is either a key/value table (Rows) or a list of titled notes.
type Section struct {
	Heading string
	Rows    []Row
	Notes   []Note
}

// Row is one label/value line of a table. Link, when set, makes Value a hyperlink.
type Row struct {
	Label string
	Value string
	Link  string
}

// Note is a titled paragraph.
type Note struct {
	Title string
	Body  string
}

// Build maps a completed booking into the invoice layout. generatedAt is the
// date printed in the header.
func Build(rec models.BookingRecord, generatedAt time.Time) Document {
	return Document{
		Title:       Title,
		BookingID:   rec.BookingID,
		GeneratedOn: FormatDate(generatedAt),
		Sections: []Section{
			{
				Heading: SectionTripOverview,
				Rows: []Row{
					{Label: "Guest:", Value: rec.GuestName},
					{Label: "Property:", Value: rec.PropertyName},
					{Label: "Location:", Value: mapLinkText, Link: rec.Location},
					{Label: "Guests:", Value: strconv.Itoa(rec.GuestCount)},
					{Label: "Check-in:", Value: FormatDateTime(rec.CheckIn)},
					{Label: "Check-out:", Value: FormatDateTime(rec.CheckOut)},
				},
			},
			{
				Heading: SectionPaymentDetails,
				Rows: []Row{
					{Label: "Total Amount:", Value: FormatCurrency(rec.TotalAmount)},
					{Label: "Amount Paid:", Value: FormatCurrency(rec.AmountPaid)},
					{Label: "Remaining Balance:", Value: FormatCurrency(rec.RemainingBalance())},
				},
			},
			{
				Heading: SectionHostPolicy,
				Notes: []Note{
					{Title: "Host", Body: rec.HostName},
					{Title: "Cancellation Policy", Body: rec.CancellationPolicy},
				},
			},
		},
	}
}

// Section returns the section with the given heading.
func (d Document) Section(heading string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Heading == heading {
			return s, true
		}
	}
	return Section{}, false
}

// Value returns the value of the row with the given label.
func (s Section) Value(label string) (string, bool) {
	for _, r := range s.Rows {
		if r.Label == label {
			return r.Value, true
		}
	}
	return "", false
}
