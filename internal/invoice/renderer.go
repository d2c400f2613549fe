package invoice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/glunkad/invoice-service/internal/models"
	"github.com/glunkad/invoice-service/internal/validation"
)

// ErrInvalidRecord is returned when a record reaching the renderer breaks a
// booking invariant.
var ErrInvalidRecord = errors.New("invalid booking record")

// Encoder writes a Document in one file format.
type Encoder interface {
	Ext() string
	Encode(w io.Writer, doc Document) error
}

// Artifact is a rendered invoice on disk. The caller owns the file and must
// remove it once delivered.
type Artifact struct {
	Path string
	Ext  string
}

// FileName is the name the invoice is delivered under.
func FileName(bookingID, ext string) string {
	return fmt.Sprintf("invoice_%s.%s", bookingID, ext)
}

// Renderer turns a completed booking into an invoice artifact.
type Renderer interface {
	Render(ctx context.Context, rec models.BookingRecord) (*Artifact, error)
}

// FileRenderer encodes invoices into temporary files.
type FileRenderer struct {
	encoder Encoder
	dir     string
	now     func() time.Time
}

// NewEncoder returns the encoder for a configured invoice format.
func NewEncoder(format string) (Encoder, error) {
	switch format {
	case "pdf", "":
		return PDFEncoder{Compress: true}, nil
	case "xlsx":
		return XLSXEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported invoice format %q", format)
	}
}

// NewFileRenderer writes artifacts into dir, or the OS temp dir when empty.
func NewFileRenderer(encoder Encoder, dir string, now func() time.Time) *FileRenderer {
	if now == nil {
		now = time.Now
	}
	return &FileRenderer{encoder: encoder, dir: dir, now: now}
}

// Render validates rec and writes its invoice to a new temp file.
func (r *FileRenderer) Render(ctx context.Context, rec models.BookingRecord) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if errs := validation.ValidateStruct(rec); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecord, validation.FormatValidationErrors(errs))
	}
	if rec.AmountPaid.GreaterThan(rec.TotalAmount) {
		return nil, fmt.Errorf("%w: AmountPaid: Must not exceed TotalAmount", ErrInvalidRecord)
	}

	doc := Build(rec, r.now())

	if r.dir != "" {
		if err := os.MkdirAll(r.dir, 0755); err != nil {
			return nil, fmt.Errorf("create invoice dir: %w", err)
		}
	}

	file, err := os.CreateTemp(r.dir, "invoice_"+rec.BookingID+"_*."+r.encoder.Ext())
	if err != nil {
		return nil, fmt.Errorf("create invoice file: %w", err)
	}

	if err := r.encoder.Encode(file, doc); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("encode %s invoice: %w", r.encoder.Ext(), err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("close invoice file: %w", err)
	}

	return &Artifact{Path: file.Name(), Ext: r.encoder.Ext()}, nil
}
