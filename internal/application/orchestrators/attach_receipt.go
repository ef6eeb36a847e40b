package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
	"doubles/internal/domain/receipt"
)

// ErrInvalidCourt is returned when the receipt court number is not 1 or 2.
var ErrInvalidCourt = errors.New("court must be 1 or 2")

// AttachReceiptInput carries input for the attach-receipt orchestrator.
// Force acknowledges a truncation-risk warning from a previous attempt.
type AttachReceiptInput struct {
	SessionID   string
	Court       int // 1 or 2
	Filename    string
	ContentType string
	Data        []byte
	Force       bool
}

// AttachReceiptDeps holds dependencies for AttachReceipt.
type AttachReceiptDeps struct {
	Store recordstore.Store
	Board *board.Board
}

// ExecuteAttachReceipt validates and converts the uploaded document, stores
// it in the per-court receipt field, and reloads the board. Oversized
// encodings surface receipt.ErrTruncationRisk until the caller confirms
// with Force.
func ExecuteAttachReceipt(ctx context.Context, input AttachReceiptInput, deps AttachReceiptDeps) error {
	s, ok := deps.Board.Find(input.SessionID)
	if !ok {
		return ErrSessionNotFound
	}

	var field string
	switch input.Court {
	case 1:
		field = recordstore.FieldReceipt1
	case 2:
		field = recordstore.FieldReceipt2
	default:
		return ErrInvalidCourt
	}

	r, err := receipt.Process(receipt.File{
		Name:        input.Filename,
		ContentType: input.ContentType,
		Data:        input.Data,
	}, input.Force)
	if err != nil {
		return err
	}

	if err := deps.Board.Begin(); err != nil {
		return err
	}
	defer deps.Board.End()

	fields := recordstore.Fields{field: recordstore.ReceiptValue(r)}
	if err := deps.Store.Update(ctx, s.ID, fields); err != nil {
		return err
	}
	slog.Info("receipt_attached", "id", s.ID, "court", input.Court, "bytes", len(input.Data))

	return reload(ctx, deps.Store, deps.Board)
}
