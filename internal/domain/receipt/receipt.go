package receipt

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"doubles/internal/domain/session"
)

// MaxUploadBytes is the size ceiling for a receipt upload.
const MaxUploadBytes = 5 << 20 // 5 MB

// Image recompression bounds: the longest edge is scaled down to
// maxPixelDim before re-encoding as JPEG at fixed quality, so the embedded
// text stays well under the store's field ceiling for typical photos.
const (
	maxPixelDim = 1600
	jpegQuality = 70
)

var (
	ErrEmptyFile       = errors.New("uploaded file is empty")
	ErrTooLarge        = errors.New("file exceeds the 5 MB upload limit")
	ErrUnsupportedType = errors.New("receipts must be a PDF or a PNG, JPEG, WebP or GIF image")
	ErrTruncationRisk  = errors.New("encoded document would exceed the store's text ceiling and be cut off")
)

// File is an uploaded document before processing.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Process validates an upload and converts it into an inline receipt.
// Images are downscaled and re-encoded before embedding as a data URL; PDFs
// are embedded as-is. When the encoded text would reach the store's
// truncation ceiling, ErrTruncationRisk is returned unless force is set;
// forcing stores the document anyway and the truncation shows up as a
// warning state on the next fetch.
func Process(f File, force bool) (*session.Receipt, error) {
	if len(f.Data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(f.Data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	var payload []byte
	var mimeType string
	switch f.ContentType {
	case "application/pdf":
		payload = f.Data
		mimeType = "application/pdf"
	case "image/png", "image/jpeg", "image/webp", "image/gif":
		recompressed, err := recompress(f.Data)
		if err != nil {
			return nil, fmt.Errorf("recompress image: %w", err)
		}
		payload = recompressed
		mimeType = "image/jpeg"
	default:
		return nil, ErrUnsupportedType
	}

	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(payload)
	if len(dataURL) >= session.FieldTextCeiling && !force {
		return nil, ErrTruncationRisk
	}
	return &session.Receipt{Data: dataURL}, nil
}

// recompress decodes an image, scales its longest edge down to maxPixelDim
// if needed, and re-encodes it as JPEG at the fixed quality.
func recompress(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxPixelDim || h > maxPixelDim {
		scale := float64(maxPixelDim) / float64(w)
		if h > w {
			scale = float64(maxPixelDim) / float64(h)
		}
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
