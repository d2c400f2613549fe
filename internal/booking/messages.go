package booking

import (
	"errors"
	"fmt"

	"github.com/glunkad/invoice-service/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Replies use Telegram Markdown (v1).
const (
	msgInvalidDate     = "❌ Invalid date! Use format: YYYY-MM-DD HH:MM"
	msgInvalidNumber   = "❌ Please enter a valid number."
	msgCancelled       = "❌ Booking process canceled."
	msgNothingToCancel = "There is no booking in progress. Send /start to begin."
	msgNoSession       = "Send /start to begin a new booking."
	msgInvoiceCaption  = "✅ Booking confirmed! Your invoice is attached."
	msgInvoiceFailed   = "❌ Error generating invoice. Please try again with /start."
	msgSessionBroken   = "❌ Something went wrong with your booking. Please start again with /start."

	msgHelp = "*Booking bot*\n\n" +
		"/start - start a new booking (discards the current one)\n" +
		"/cancel - cancel the booking in progress\n" +
		"/help - show this message"
)

var stepPrompts = map[domain.Step]string{
	domain.StepAwaitingCheckIn:          "Enter *Check-in Date (YYYY-MM-DD HH:MM)*:",
	domain.StepAwaitingCheckOut:         "Enter *Check-out Date (YYYY-MM-DD HH:MM)*:",
	domain.StepAwaitingTotalAmount:      "Enter *Total Amount*:",
	domain.StepAwaitingAmountPaid:       "Enter *Amount Paid*:",
	domain.StepAwaitingGuestCount:       "Enter *Number of Guests*:",
	domain.StepAwaitingConfirmationCode: "Enter *Confirmation Code*:",
}

func welcomeMessage(propertyName string) string {
	return fmt.Sprintf("Welcome to *%s*! 🏡\n\nEnter your *Guest Name*:",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, propertyName))
}

// rejectionMessage maps a validation error to the reply shown to the user.
func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyGuestName):
		return "❌ Guest name cannot be empty!"
	case errors.Is(err, ErrInvalidDateFormat):
		return msgInvalidDate
	case errors.Is(err, ErrPastCheckIn):
		return "❌ Check-in date cannot be in the past!"
	case errors.Is(err, ErrCheckOutNotAfterCheckIn):
		return "❌ Check-out must be after check-in!"
	case errors.Is(err, ErrNonPositiveAmount):
		return "❌ Amount must be positive!"
	case errors.Is(err, ErrAmountTooLarge):
		return "❌ Amount is too large!"
	case errors.Is(err, ErrPaidOutOfRange):
		return "❌ Amount paid must be between 0 and total amount!"
	case errors.Is(err, ErrNonPositiveGuestCount):
		return "❌ Guest count must be positive!"
	default:
		return msgInvalidNumber
	}
}
