package validation

import (
	"testing"
	"time"

	"github.com/glunkad/invoice-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validRecord() models.BookingRecord {
	checkIn := time.Date(2030, 1, 1, 14, 0, 0, 0, time.UTC)
	return models.BookingRecord{
		BookingID:          "AB12CD34EF",
		PropertyName:       models.DefaultProperty.Name,
		Location:           models.DefaultProperty.Location,
		HostName:           models.DefaultProperty.Host,
		CancellationPolicy: models.DefaultProperty.CancellationPolicy,
		GuestName:          "Alice",
		CheckIn:            checkIn,
		CheckOut:           checkIn.Add(21 * time.Hour),
		TotalAmount:        decimal.NewFromInt(500),
		AmountPaid:         decimal.NewFromInt(200),
		GuestCount:         2,
		ConfirmationCode:   "ABC123",
	}
}

func TestValidateStruct_ValidRecord(t *testing.T) {
	assert.Nil(t, ValidateStruct(validRecord()))
}

func TestValidateStruct_EmptyConfirmationCodeAllowed(t *testing.T) {
	rec := validRecord()
	rec.ConfirmationCode = ""
	assert.Nil(t, ValidateStruct(rec))
}

func TestValidateStruct_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.BookingRecord)
		field  string
	}{
		{"short booking id", func(r *models.BookingRecord) { r.BookingID = "ABC" }, "BookingID"},
		{"lowercase booking id", func(r *models.BookingRecord) { r.BookingID = "ab12cd34ef" }, "BookingID"},
		{"empty guest", func(r *models.BookingRecord) { r.GuestName = "" }, "GuestName"},
		{"checkout before checkin", func(r *models.BookingRecord) { r.CheckOut = r.CheckIn.Add(-time.Hour) }, "CheckOut"},
		{"checkout equals checkin", func(r *models.BookingRecord) { r.CheckOut = r.CheckIn }, "CheckOut"},
		{"zero total", func(r *models.BookingRecord) { r.TotalAmount = decimal.Zero }, "TotalAmount"},
		{"negative paid", func(r *models.BookingRecord) { r.AmountPaid = decimal.NewFromInt(-1) }, "AmountPaid"},
		{"zero guests", func(r *models.BookingRecord) { r.GuestCount = 0 }, "GuestCount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)

			errs := ValidateStruct(rec)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestFormatValidationErrors_Sorted(t *testing.T) {
	got := FormatValidationErrors(map[string]string{
		"b": "second",
		"a": "first",
	})
	assert.Equal(t, "a: first; b: second", got)
}
