package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glunkad/invoice-service/internal/domain"
	"github.com/shopspring/decimal"
)

// InputLayout is the expected check-in/check-out format, YYYY-MM-DD HH:MM.
// Single-digit month, day and hour are accepted as well.
const InputLayout = "2006-1-2 15:04"

var (
	ErrEmptyGuestName          = errors.New("guest name is empty")
	ErrInvalidDateFormat       = errors.New("invalid date format")
	ErrPastCheckIn             = errors.New("check-in is in the past")
	ErrCheckOutNotAfterCheckIn = errors.New("check-out is not after check-in")
	ErrInvalidNumber           = errors.New("not a valid number")
	ErrNonPositiveAmount       = errors.New("amount must be positive")
	ErrAmountTooLarge          = errors.New("amount is too large")
	ErrPaidOutOfRange          = errors.New("amount paid is outside [0, total]")
	ErrNonPositiveGuestCount   = errors.New("guest count must be positive")
)

// ValidationError is a rejected user input. The session stays on Step.
type ValidationError struct {
	Step domain.Step
	Err  error
}

// Error prefixes the cause with the step name.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ParseGuestName accepts any non-blank name.
func ParseGuestName(text string) (string, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return "", ErrEmptyGuestName
	}
	return name, nil
}

func parseDateTime(text string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(InputLayout, strings.TrimSpace(text), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDateFormat, err)
	}
	return t, nil
}

// ParseCheckIn accepts a date that is not before now.
func ParseCheckIn(text string, loc *time.Location, now time.Time) (time.Time, error) {
	checkIn, err := parseDateTime(text, loc)
	if err != nil {
		return time.Time{}, err
	}
	if checkIn.Before(now) {
		return time.Time{}, ErrPastCheckIn
	}
	return checkIn, nil
}

// ParseCheckOut accepts a date strictly after checkIn.
func ParseCheckOut(text string, loc *time.Location, checkIn time.Time) (time.Time, error) {
	checkOut, err := parseDateTime(text, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, ErrCheckOutNotAfterCheckIn
	}
	return checkOut, nil
}

// maxAmount bounds money input; anything at or above it is rejected.
var maxAmount = decimal.New(1, 12)

// parseDecimal accepts plain decimal notation with at most two fractional
// digits. Exponent notation is refused before parsing so a short input cannot
// expand into a huge number.
func parseDecimal(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if strings.ContainsAny(text, "eE") {
		return decimal.Decimal{}, fmt.Errorf("%w: exponent notation", ErrInvalidNumber)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Decimal{}, fmt.Errorf("%w: more than two decimal places", ErrInvalidNumber)
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, ErrAmountTooLarge
	}
	return d, nil
}

// ParseTotalAmount accepts a positive amount.
func ParseTotalAmount(text string) (decimal.Decimal, error) {
	total, err := parseDecimal(text)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !total.IsPositive() {
		return decimal.Decimal{}, ErrNonPositiveAmount
	}
	return total, nil
}

// ParseAmountPaid accepts 0 <= paid <= total.
func ParseAmountPaid(text string, total decimal.Decimal) (decimal.Decimal, error) {
	paid, err := parseDecimal(text)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if paid.IsNegative() || paid.GreaterThan(total) {
		return decimal.Decimal{}, ErrPaidOutOfRange
	}
	return paid, nil
}

// ParseGuestCount accepts a positive whole number.
func ParseGuestCount(text string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	if count <= 0 {
		return 0, ErrNonPositiveGuestCount
	}
	return count, nil
}

// ParseConfirmationCode only trims. An empty code is accepted, unlike the
// guest name.
func ParseConfirmationCode(text string) string {
	return strings.TrimSpace(text)
}
