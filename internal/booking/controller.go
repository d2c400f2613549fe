package booking

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/glunkad/invoice-service/internal/domain"
	"github.com/glunkad/invoice-service/internal/invoice"
	"github.com/glunkad/invoice-service/internal/metrics"
	"github.com/glunkad/invoice-service/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Responder delivers replies to a chat.
type Responder interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, doc domain.Attachment) error
}

// Options wires a Controller. Store, Renderer and Responder are required.
type Options struct {
	Store     domain.StateRepository
	Renderer  invoice.Renderer
	Responder Responder
	Property  models.Property
	// Location interprets check-in/check-out input. Defaults to time.Local.
	Location     *time.Location
	Now          func() time.Time
	NewBookingID func() (string, error)
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
}

// Controller runs the booking conversation, one user turn per call.
type Controller struct {
	store    domain.StateRepository
	renderer invoice.Renderer
	out      Responder
	property models.Property
	loc      *time.Location
	now      func() time.Time
	newID    func() (string, error)
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewController fills unset clock, ID generator, location and logger with defaults.
func NewController(opts Options) *Controller {
	c := &Controller{
		store:    opts.Store,
		renderer: opts.Renderer,
		out:      opts.Responder,
		property: opts.Property,
		loc:      opts.Location,
		now:      opts.Now,
		newID:    opts.NewBookingID,
		metrics:  opts.Metrics,
		log:      opts.Logger,
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = NewBookingID
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.With(zap.String("component", "booking"))
	return c
}

// Start discards any session of key and begins a new booking.
func (c *Controller) Start(ctx context.Context, key domain.SessionKey) (domain.Step, error) {
	if err := c.store.Delete(ctx, key); err != nil {
		return domain.StepIdle, fmt.Errorf("clear previous session: %w", err)
	}

	bookingID, err := c.newID()
	if err != nil {
		return domain.StepIdle, err
	}

	now := c.now()
	session := &domain.Session{
		Key:       key,
		ID:        uuid.NewString(),
		Step:      domain.StepAwaitingGuestName,
		Draft:     models.NewDraft(bookingID, c.property),
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := c.store.Save(ctx, session); err != nil {
		return domain.StepIdle, fmt.Errorf("save session: %w", err)
	}

	c.metrics.IncSessionStarted()
	c.sessionLogger(session).Info("booking session started")

	return session.Step, c.reply(ctx, key, welcomeMessage(c.property.Name))
}

// Handle feeds one text message into the session of key and returns the
// resulting step. Rejected input keeps the step and is not an error.
func (c *Controller) Handle(ctx context.Context, key domain.SessionKey, text string) (domain.Step, error) {
	session, err := c.store.Get(ctx, key)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.StepIdle, c.reply(ctx, key, msgNoSession)
	}
	if err != nil {
		return domain.StepIdle, fmt.Errorf("load session: %w", err)
	}

	log := c.sessionLogger(session)

	if err := c.apply(session, text); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			// The stored draft is missing a field an earlier step should have set.
			log.Error("corrupt booking session", zap.Error(err))
			_ = c.store.Delete(ctx, key)
			return domain.StepIdle, errors.Join(err, c.reply(ctx, key, msgSessionBroken))
		}

		c.metrics.IncValidationRejection(session.Step.String())
		log.Debug("input rejected", zap.Error(err))
		return session.Step, c.reply(ctx, key, rejectionMessage(err))
	}

	session.Step = session.Step.Next()
	session.UpdatedAt = c.now()

	if session.Step == domain.StepCompleted {
		return c.complete(ctx, session)
	}

	if err := c.store.Save(ctx, session); err != nil {
		return session.Step, fmt.Errorf("save session: %w", err)
	}
	return session.Step, c.reply(ctx, key, stepPrompts[session.Step])
}

// Cancel drops the session of key, discarding everything collected so far.
func (c *Controller) Cancel(ctx context.Context, key domain.SessionKey) (domain.Step, error) {
	session, err := c.store.Get(ctx, key)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.StepIdle, c.reply(ctx, key, msgNothingToCancel)
	}
	if err != nil {
		return domain.StepIdle, fmt.Errorf("load session: %w", err)
	}

	if err := c.store.Delete(ctx, key); err != nil {
		return session.Step, fmt.Errorf("delete session: %w", err)
	}

	c.metrics.IncSessionCancelled()
	c.sessionLogger(session).Info("booking session cancelled", zap.Stringer("at_step", session.Step))

	return domain.StepCancelled, c.reply(ctx, key, msgCancelled)
}

// Help lists the commands. It never touches the session.
func (c *Controller) Help(ctx context.Context, key domain.SessionKey) error {
	return c.reply(ctx, key, msgHelp)
}

// apply validates text for the session's current step and stores the value in
// the draft.
func (c *Controller) apply(session *domain.Session, text string) error {
	draft := &session.Draft
	reject := func(err error) error {
		return &ValidationError{Step: session.Step, Err: err}
	}

	switch session.Step {
	case domain.StepAwaitingGuestName:
		name, err := ParseGuestName(text)
		if err != nil {
			return reject(err)
		}
		draft.GuestName = &name

	case domain.StepAwaitingCheckIn:
		checkIn, err := ParseCheckIn(text, c.loc, c.now())
		if err != nil {
			return reject(err)
		}
		draft.CheckIn = &checkIn

	case domain.StepAwaitingCheckOut:
		if draft.CheckIn == nil {
			return fmt.Errorf("%w: check_in", models.ErrIncompleteDraft)
		}
		checkOut, err := ParseCheckOut(text, c.loc, *draft.CheckIn)
		if err != nil {
			return reject(err)
		}
		draft.CheckOut = &checkOut

	case domain.StepAwaitingTotalAmount:
		total, err := ParseTotalAmount(text)
		if err != nil {
			return reject(err)
		}
		draft.TotalAmount = &total

	case domain.StepAwaitingAmountPaid:
		if draft.TotalAmount == nil {
			return fmt.Errorf("%w: total_amount", models.ErrIncompleteDraft)
		}
		paid, err := ParseAmountPaid(text, *draft.TotalAmount)
		if err != nil {
			return reject(err)
		}
		draft.AmountPaid = &paid

	case domain.StepAwaitingGuestCount:
		count, err := ParseGuestCount(text)
		if err != nil {
			return reject(err)
		}
		draft.GuestCount = &count

	case domain.StepAwaitingConfirmationCode:
		code := ParseConfirmationCode(text)
		draft.ConfirmationCode = &code

	default:
		return fmt.Errorf("session in unexpected step %s", session.Step)
	}
	return nil
}

// complete renders and delivers the invoice. The session ends in Completed
// whatever the outcome; failures are reported to the user once, never retried.
func (c *Controller) complete(ctx context.Context, session *domain.Session) (domain.Step, error) {
	log := c.sessionLogger(session)

	if err := c.store.Delete(ctx, session.Key); err != nil {
		log.Warn("failed to delete finished session", zap.Error(err))
	}

	if err := c.deliverInvoice(ctx, session); err != nil {
		c.metrics.IncInvoiceFailure()
		log.Error("invoice generation failed", zap.Error(err))
		return domain.StepCompleted, c.reply(ctx, session.Key, msgInvoiceFailed)
	}

	c.metrics.IncSessionCompleted()
	log.Info("booking completed")
	return domain.StepCompleted, nil
}

func (c *Controller) deliverInvoice(ctx context.Context, session *domain.Session) error {
	record, err := session.Draft.Complete()
	if err != nil {
		return err
	}

	started := time.Now()
	artifact, err := c.renderer.Render(ctx, record)
	c.metrics.ObserveInvoiceRender(time.Since(started).Seconds())
	if err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}

	defer func() {
		if err := os.Remove(artifact.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.sessionLogger(session).Warn("failed to remove invoice file",
				zap.String("path", artifact.Path), zap.Error(err))
		}
	}()

	err = c.out.SendDocument(ctx, session.Key.ChatID, domain.Attachment{
		Path:     artifact.Path,
		FileName: invoice.FileName(record.BookingID, artifact.Ext),
		Caption:  msgInvoiceCaption,
	})
	if err != nil {
		return fmt.Errorf("send invoice: %w", err)
	}
	return nil
}

func (c *Controller) reply(ctx context.Context, key domain.SessionKey, text string) error {
	if err := c.out.SendMessage(ctx, key.ChatID, text); err != nil {
		return fmt.Errorf("reply to %s: %w", key, err)
	}
	return nil
}

func (c *Controller) sessionLogger(session *domain.Session) *zap.Logger {
	return c.log.With(
		zap.String("session_id", session.ID),
		zap.String("booking_id", session.Draft.BookingID),
		zap.Int64("user_id", session.Key.UserID),
	)
}
