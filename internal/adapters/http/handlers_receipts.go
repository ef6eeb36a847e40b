package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"doubles/internal/application/orchestrators"
	"doubles/internal/domain/receipt"
)

// multipartOverhead covers boundary markers and part headers beyond the
// file payload itself.
const multipartOverhead = 64 << 10

// handleAttachReceipt accepts a multipart upload of a court reservation
// receipt (image or PDF), recompresses it, and stores it on the session.
// A "force=true" form field confirms storage past the truncation warning.
func handleAttachReceipt(w http.ResponseWriter, r *http.Request) {
	court, err := strconv.Atoi(r.PathValue("court"))
	if err != nil {
		http.Error(w, "court must be 1 or 2", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, receipt.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(receipt.MaxUploadBytes + multipartOverhead); err != nil {
		http.Error(w, "upload too large or malformed", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		internalError(w, err)
		return
	}

	deps := orchestrators.AttachReceiptDeps{Store: app.Store, Board: app.Board}
	input := orchestrators.AttachReceiptInput{
		SessionID:   r.PathValue("id"),
		Court:       court,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Force:       r.FormValue("force") == "true",
	}
	if err := orchestrators.ExecuteAttachReceipt(r.Context(), input, deps); err != nil {
		if errors.Is(err, receipt.ErrTruncationRisk) {
			// The client may retry with force=true to store it anyway.
			writeJSON(w, http.StatusConflict, map[string]any{
				"truncationRisk": true,
				"message":        err.Error(),
			})
			return
		}
		intentError(w, err)
		return
	}
	writeBoard(w)
}
