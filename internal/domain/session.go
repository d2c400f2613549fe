package domain

import (
	"fmt"
	"time"

	"github.com/glunkad/invoice-service/internal/models"
)

// Step is the position of a session in the booking conversation.
type Step int

const (
	StepIdle Step = iota
	StepAwaitingGuestName
	StepAwaitingCheckIn
	StepAwaitingCheckOut
	StepAwaitingTotalAmount
	StepAwaitingAmountPaid
	StepAwaitingGuestCount
	StepAwaitingConfirmationCode
	StepCompleted
	StepCancelled
)

var stepNames = map[Step]string{
	StepIdle:                     "idle",
	StepAwaitingGuestName:        "awaiting_guest_name",
	StepAwaitingCheckIn:          "awaiting_check_in",
	StepAwaitingCheckOut:         "awaiting_check_out",
	StepAwaitingTotalAmount:      "awaiting_total_amount",
	StepAwaitingAmountPaid:       "awaiting_amount_paid",
	StepAwaitingGuestCount:       "awaiting_guest_count",
	StepAwaitingConfirmationCode: "awaiting_confirmation_code",
	StepCompleted:                "completed",
	StepCancelled:                "cancelled",
}

// String returns the snake_case step name.
func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Terminal reports whether no further input is accepted in this step.
func (s Step) Terminal() bool {
	return s == StepCompleted || s == StepCancelled
}

// Next returns the step that follows s on valid input. Terminal and idle
// steps return themselves.
func (s Step) Next() Step {
	if s < StepAwaitingGuestName || s >= StepCompleted {
		return s
	}
	return s + 1
}

// SessionKey identifies one user's conversation in one chat.
type SessionKey struct {
	ChatID int64 `json:"chat_id"`
	UserID int64 `json:"user_id"`
}

// String formats the key for logs and Redis keys.
func (k SessionKey) String() string {
	return fmt.Sprintf("%d:%d", k.ChatID, k.UserID)
}

// Session is the per-user conversation state. It exists from /start until the
// booking is completed or cancelled.
type Session struct {
	Key       SessionKey   `json:"key"`
	ID        string       `json:"id"`
	Step      Step         `json:"step"`
	Draft     models.Draft `json:"draft"`
	StartedAt time.Time    `json:"started_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
