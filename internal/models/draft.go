package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrIncompleteDraft is returned by Draft.Complete when a field is still missing.
var ErrIncompleteDraft = errors.New("booking draft is incomplete")

// Draft accumulates a booking while the conversation is running. User supplied
// fields stay nil until their step has been validated.
type Draft struct {
	BookingID string   `json:"booking_id"`
	Property  Property `json:"property"`

	GuestName        *string          `json:"guest_name,omitempty"`
	CheckIn          *time.Time       `json:"check_in,omitempty"`
	CheckOut         *time.Time       `json:"check_out,omitempty"`
	TotalAmount      *decimal.Decimal `json:"total_amount,omitempty"`
	AmountPaid       *decimal.Decimal `json:"amount_paid,omitempty"`
	GuestCount       *int             `json:"guest_count,omitempty"`
	ConfirmationCode *string          `json:"confirmation_code,omitempty"`
}

// NewDraft starts an empty draft for the given booking ID and property.
func NewDraft(bookingID string, property Property) Draft {
	return Draft{BookingID: bookingID, Property: property}
}

// Complete turns the draft into a BookingRecord. It fails if any field is unset.
func (d Draft) Complete() (BookingRecord, error) {
	var missing []string
	if d.GuestName == nil {
		missing = append(missing, "guest_name")
	}
	if d.CheckIn == nil {
		missing = append(missing, "check_in")
	}
	if d.CheckOut == nil {
		missing = append(missing, "check_out")
	}
	if d.TotalAmount == nil {
		missing = append(missing, "total_amount")
	}
	if d.AmountPaid == nil {
		missing = append(missing, "amount_paid")
	}
	if d.GuestCount == nil {
		missing = append(missing, "guest_count")
	}
	if d.ConfirmationCode == nil {
		missing = append(missing, "confirmation_code")
	}
	if len(missing) > 0 {
		return BookingRecord{}, fmt.Errorf("%w: missing %v", ErrIncompleteDraft, missing)
	}

	return BookingRecord{
		BookingID:          d.BookingID,
		PropertyName:       d.Property.Name,
		Location:           d.Property.Location,
		HostName:           d.Property.Host,
		CancellationPolicy: d.Property.CancellationPolicy,
		GuestName:          *d.GuestName,
		CheckIn:            *d.CheckIn,
		CheckOut:           *d.CheckOut,
		TotalAmount:        *d.TotalAmount,
		AmountPaid:         *d.AmountPaid,
		GuestCount:         *d.GuestCount,
		ConfirmationCode:   *d.ConfirmationCode,
	}, nil
}
