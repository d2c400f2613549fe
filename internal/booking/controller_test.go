package booking

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/glunkad/invoice-service/internal/domain"
	"github.com/glunkad/invoice-service/internal/invoice"
	"github.com/glunkad/invoice-service/internal/metrics"
	"github.com/glunkad/invoice-service/internal/models"
	"github.com/glunkad/invoice-service/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentDocument struct {
	chatID   int64
	fileName string
	caption  string
	content  []byte
	existed  bool
}

type fakeResponder struct {
	mu        sync.Mutex
	messages  []string
	documents []sentDocument
	docErr    error
}

func (f *fakeResponder) SendMessage(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeResponder) SendDocument(_ context.Context, chatID int64, doc domain.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, err := os.ReadFile(doc.Path)
	f.documents = append(f.documents, sentDocument{
		chatID:   chatID,
		fileName: doc.FileName,
		caption:  doc.Caption,
		content:  content,
		existed:  err == nil,
	})
	return f.docErr
}

func (f *fakeResponder) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

// utf16BE encodes s the way the PDF encoder writes text with its embedded font.
func utf16BE(s string) string {
	var b strings.Builder
	for _, u := range utf16.Encode([]rune(s)) {
		b.WriteByte(byte(u >> 8))
		b.WriteByte(byte(u))
	}
	return b.String()
}

type recordingRenderer struct {
	inner   invoice.Renderer
	err     error
	records []models.BookingRecord
	paths   []string
}

func (r *recordingRenderer) Render(ctx context.Context, rec models.BookingRecord) (*invoice.Artifact, error) {
	r.records = append(r.records, rec)
	if r.err != nil {
		return nil, r.err
	}
	a, err := r.inner.Render(ctx, rec)
	if a != nil {
		r.paths = append(r.paths, a.Path)
	}
	return a, err
}

type harness struct {
	ctrl     *Controller
	store    *repository.MemoryStateRepository
	out      *fakeResponder
	renderer *recordingRenderer
	metrics  *metrics.Metrics
	key      domain.SessionKey
}

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := func() time.Time { return testNow }
	h := &harness{
		store: repository.NewMemoryStateRepository(0, clock),
		out:   &fakeResponder{},
		renderer: &recordingRenderer{
			inner: invoice.NewFileRenderer(invoice.PDFEncoder{Compress: false}, t.TempDir(), clock),
		},
		metrics: metrics.New(prometheus.NewRegistry()),
		key:     domain.SessionKey{ChatID: 100, UserID: 7},
	}
	h.ctrl = NewController(Options{
		Store:        h.store,
		Renderer:     h.renderer,
		Responder:    h.out,
		Property:     models.DefaultProperty,
		Location:     time.UTC,
		Now:          clock,
		NewBookingID: func() (string, error) { return "AB12CD34EF", nil },
		Metrics:      h.metrics,
	})
	return h
}

func (h *harness) send(t *testing.T, text string) domain.Step {
	t.Helper()
	step, err := h.ctrl.Handle(context.Background(), h.key, text)
	require.NoError(t, err)
	return step
}

func (h *harness) session(t *testing.T) *domain.Session {
	t.Helper()
	s, err := h.store.Get(context.Background(), h.key)
	require.NoError(t, err)
	return s
}

// aliceInputs drives a session from AwaitingGuestName to Completed.
var aliceInputs = []string{
	"Alice",
	"2030-01-01 14:00",
	"2030-01-05 11:00",
	"500",
	"200",
	"2",
	"HM123",
}

func TestController_StartSendsWelcome(t *testing.T) {
	h := newHarness(t)

	step, err := h.ctrl.Start(context.Background(), h.key)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingGuestName, step)

	assert.Equal(t, "Welcome to *River's Edge Villa*! 🏡\n\nEnter your *Guest Name*:", h.out.last())

	s := h.session(t)
	assert.Equal(t, "AB12CD34EF", s.Draft.BookingID)
	assert.Equal(t, models.DefaultProperty, s.Draft.Property)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, testNow, s.StartedAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SessionsStarted))
}

func TestController_FullConversation(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.Start(context.Background(), h.key)
	require.NoError(t, err)

	wantSteps := []domain.Step{
		domain.StepAwaitingCheckIn,
		domain.StepAwaitingCheckOut,
		domain.StepAwaitingTotalAmount,
		domain.StepAwaitingAmountPaid,
		domain.StepAwaitingGuestCount,
		domain.StepAwaitingConfirmationCode,
		domain.StepCompleted,
	}
	for i, input := range aliceInputs {
		step := h.send(t, input)
		require.Equal(t, wantSteps[i], step, "after %q", input)
		if !step.Terminal() {
			assert.Equal(t, stepPrompts[step], h.out.last())
		}
	}

	require.Len(t, h.renderer.records, 1)
	rec := h.renderer.records[0]
	assert.Equal(t, "Alice", rec.GuestName)
	assert.Equal(t, "AB12CD34EF", rec.BookingID)
	assert.Equal(t, 2, rec.GuestCount)
	assert.Equal(t, "HM123", rec.ConfirmationCode)
	assert.Equal(t, "300", rec.RemainingBalance().String())

	require.Len(t, h.out.documents, 1)
	doc := h.out.documents[0]
	assert.Equal(t, h.key.ChatID, doc.chatID)
	assert.Equal(t, "invoice_AB12CD34EF.pdf", doc.fileName)
	assert.Equal(t, msgInvoiceCaption, doc.caption)
	require.True(t, doc.existed)
	assert.True(t, strings.HasPrefix(string(doc.content), "%PDF-"))
	assert.Contains(t, string(doc.content), utf16BE("$300.00"))

	// Artifact is removed after delivery and the session is gone.
	require.Len(t, h.renderer.paths, 1)
	assert.NoFileExists(t, h.renderer.paths[0])
	assert.Equal(t, 0, h.store.Len())

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SessionsCompleted))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.InvoiceFailures))
}

func TestController_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		prefix  int
		input   string
		step    domain.Step
		message string
	}{
		{"empty name", 0, "   ", domain.StepAwaitingGuestName, "❌ Guest name cannot be empty!"},
		{"bad date", 1, "2030/01/01", domain.StepAwaitingCheckIn, msgInvalidDate},
		{"past check-in", 1, "2020-01-01 10:00", domain.StepAwaitingCheckIn, "❌ Check-in date cannot be in the past!"},
		{"check-out before check-in", 2, "2029-12-31 10:00", domain.StepAwaitingCheckOut, "❌ Check-out must be after check-in!"},
		{"total not a number", 3, "five hundred", domain.StepAwaitingTotalAmount, msgInvalidNumber},
		{"total zero", 3, "0", domain.StepAwaitingTotalAmount, "❌ Amount must be positive!"},
		{"total in exponent form", 3, "1e200000", domain.StepAwaitingTotalAmount, msgInvalidNumber},
		{"total too large", 3, "5000000000000", domain.StepAwaitingTotalAmount, "❌ Amount is too large!"},
		{"paid above total", 4, "600", domain.StepAwaitingAmountPaid, "❌ Amount paid must be between 0 and total amount!"},
		{"guests zero", 5, "0", domain.StepAwaitingGuestCount, "❌ Guest count must be positive!"},
		{"guests fraction", 5, "1.5", domain.StepAwaitingGuestCount, msgInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.ctrl.Start(context.Background(), h.key)
			require.NoError(t, err)
			for _, input := range aliceInputs[:tt.prefix] {
				h.send(t, input)
			}
			before := h.session(t).Draft

			step := h.send(t, tt.input)
			assert.Equal(t, tt.step, step)
			assert.Equal(t, tt.message, h.out.last())

			s := h.session(t)
			assert.Equal(t, tt.step, s.Step)
			assert.Equal(t, before, s.Draft)
			assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ValidationRejections.WithLabelValues(tt.step.String())))

			// The same step accepts a valid retry.
			next := h.send(t, aliceInputs[tt.prefix])
			assert.Equal(t, tt.step.Next(), next)
		})
	}
}

func TestController_PaidAboveSmallTotal(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.Start(context.Background(), h.key)
	require.NoError(t, err)
	for _, input := range []string{"Bob", "2030-01-01 14:00", "2030-01-02 10:00", "100"} {
		h.send(t, input)
	}

	assert.Equal(t, domain.StepAwaitingAmountPaid, h.send(t, "150"))
	assert.Equal(t, domain.StepAwaitingGuestCount, h.send(t, "100"))
}

func TestController_EmptyConfirmationCodeAccepted(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.Start(context.Background(), h.key)
	require.NoError(t, err)
	for _, input := range aliceInputs[:6] {
		h.send(t, input)
	}

	assert.Equal(t, domain.StepCompleted, h.send(t, "  "))
	require.Len(t, h.renderer.records, 1)
	assert.Equal(t, "", h.renderer.records[0].ConfirmationCode)
}

func TestController_CancelFromEveryStep(t *testing.T) {
	for prefix := 0; prefix < len(aliceInputs); prefix++ {
		h := newHarness(t)
		_, err := h.ctrl.Start(context.Background(), h.key)
		require.NoError(t, err)
		for _, input := range aliceInputs[:prefix] {
			h.send(t, input)
		}

		step, err := h.ctrl.Cancel(context.Background(), h.key)
		require.NoError(t, err)
		assert.Equal(t, domain.StepCancelled, step)
		assert.Equal(t, msgCancelled, h.out.last())
		assert.Equal(t, 0, h.store.Len())
		assert.Empty(t, h.renderer.records)
		assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SessionsCancelled))

		// Later text is not treated as booking input.
		assert.Equal(t, domain.StepIdle, h.send(t, "Alice"))
		assert.Equal(t, msgNoSession, h.out.last())
	}
}

func TestController_CancelWithoutSession(t *testing.T) {
	h := newHarness(t)

	step, err := h.ctrl.Cancel(context.Background(), h.key)
	require.NoError(t, err)
	assert.Equal(t, domain.StepIdle, step)
	assert.Equal(t, msgNothingToCancel, h.out.last())
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.SessionsCancelled))
}

func TestController_TextWithoutSession(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, domain.StepIdle, h.send(t, "hello"))
	assert.Equal(t, msgNoSession, h.out.last())
	assert.Equal(t, 0, h.store.Len())
}

func TestController_StartRestartsSession(t *testing.T) {
	h := newHarness(t)
	ids := []string{"FIRST00001", "SECOND0002"}
	h.ctrl.newID = func() (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}

	_, err := h.ctrl.Start(context.Background(), h.key)
	require.NoError(t, err)
	h.send(t, "Alice")
	h.send(t, "2030-01-01 14:00")

	step, err := h.ctrl.Start(context.Background(), h.key)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingGuestName, step)

	s := h.session(t)
	assert.Equal(t, "SECOND0002", s.Draft.BookingID)
	assert.Nil(t, s.Draft.GuestName)
	assert.Nil(t, s.Draft.CheckIn)
}

func TestController_SessionsAreIndependent(t *testing.T) {
	h := newHarness(t)
	other := domain.SessionKey{ChatID: 100, UserID: 8}

	_, err := h.ctrl.Start(context.Background(), h.key)
	require.NoError(t, err)
	_, err = h.ctrl.Start(context.Background(), other)
	require.NoError(t, err)

	h.send(t, "Alice")
	h.send(t, "2030-01-01 14:00")

	// The other user is still on the name step, so a date is just a name.
	step, err := h.ctrl.Handle(context.Background(), other, "2030-01-01 14:00")
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingCheckIn, step)

	s, err := h.store.Get(context.Background(), other)
	require.NoError(t, err)
	require.NotNil(t, s.Draft.GuestName)
	assert.Equal(t, "2030-01-01 14:00", *s.Draft.GuestName)
	assert.Nil(t, s.Draft.CheckIn)

	mine := h.session(t)
	assert.Equal(t, domain.StepAwaitingCheckOut, mine.Step)
	assert.Equal(t, "Alice", *mine.Draft.GuestName)
}

func TestController_RenderFailure(t *testing.T) {
	h := newHarness(t)
	h.renderer.err = errors.New("font missing")

	_, err := h.ctrl.Start(context.Background(), h.key)
	require.NoError(t, err)
	var step domain.Step
	for _, input := range aliceInputs {
		step = h.send(t, input)
	}

	assert.Equal(t, domain.StepCompleted, step)
	assert.Equal(t, msgInvoiceFailed, h.out.last())
	assert.Empty(t, h.out.documents)
	assert.Equal(t, 0, h.store.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.InvoiceFailures))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.SessionsCompleted))
}

func TestController_SendDocumentFailureRemovesArtifact(t *testing.T) {
	h := newHarness(t)
	h.out.docErr = errors.New("telegram unavailable")

	_, err := h.ctrl.Start(context.Background(), h.key)
	require.NoError(t, err)
	for _, input := range aliceInputs {
		h.send(t, input)
	}

	assert.Equal(t, msgInvoiceFailed, h.out.last())
	require.Len(t, h.renderer.paths, 1)
	assert.NoFileExists(t, h.renderer.paths[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.InvoiceFailures))
}

func TestController_CorruptSessionIsDropped(t *testing.T) {
	h := newHarness(t)
	broken := &domain.Session{
		Key:   h.key,
		ID:    "broken",
		Step:  domain.StepAwaitingAmountPaid,
		Draft: models.NewDraft("AB12CD34EF", models.DefaultProperty),
	}
	require.NoError(t, h.store.Save(context.Background(), broken))

	step, err := h.ctrl.Handle(context.Background(), h.key, "100")
	assert.ErrorIs(t, err, models.ErrIncompleteDraft)
	assert.Equal(t, domain.StepIdle, step)
	assert.Equal(t, msgSessionBroken, h.out.last())
	assert.Equal(t, 0, h.store.Len())
}

func TestController_Help(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.Start(context.Background(), h.key)
	require.NoError(t, err)

	require.NoError(t, h.ctrl.Help(context.Background(), h.key))
	assert.Equal(t, msgHelp, h.out.last())
	assert.Equal(t, domain.StepAwaitingGuestName, h.session(t).Step)
}
