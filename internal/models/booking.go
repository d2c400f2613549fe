package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property describes the rental the bot issues invoices for. It is fixed per
// deployment and copied into every booking at session start.
type Property struct {
	Name               string `yaml:"name" json:"name"`
	Location           string `yaml:"location" json:"location"`
	Host               string `yaml:"host" json:"host"`
	CancellationPolicy string `yaml:"cancellation_policy" json:"cancellation_policy"`
}

// DefaultProperty is used when the config file does not override the property.
var DefaultProperty = Property{
	Name:               "River's Edge Villa",
	Location:           "https://maps.app.goo.gl/VhdYPepvED3ivRfq5",
	Host:               "Gunjan",
	CancellationPolicy: "No cancellation",
}

// BookingRecord is a fully collected booking, ready to be rendered.
type BookingRecord struct {
	BookingID          string          `json:"booking_id" validate:"required,len=10,alphanum,uppercase"`
	PropertyName       string          `json:"property_name" validate:"required"`
	Location           string          `json:"location" validate:"required"`
	HostName           string          `json:"host_name" validate:"required"`
	CancellationPolicy string          `json:"cancellation_policy" validate:"required"`
	GuestName          string          `json:"guest_name" validate:"required"`
	CheckIn            time.Time       `json:"check_in" validate:"required"`
	CheckOut           time.Time       `json:"check_out" validate:"required,gtfield=CheckIn"`
	TotalAmount        decimal.Decimal `json:"total_amount" validate:"gt=0"`
	AmountPaid         decimal.Decimal `json:"amount_paid" validate:"gte=0"`
	GuestCount         int             `json:"guest_count" validate:"gt=0"`
	ConfirmationCode   string          `json:"confirmation_code"`
}

// RemainingBalance is TotalAmount minus AmountPaid.
func (r BookingRecord) RemainingBalance() decimal.Decimal {
	return r.TotalAmount.Sub(r.AmountPaid)
}
