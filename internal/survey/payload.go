package survey

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"golang.org/x/image/webp"
)

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeGIF  = "image/gif"
	MimeWebP = "image/webp"
	MimePDF  = "application/pdf"
)

var extensions = map[string]string{
	MimeJPEG: ".jpg",
	MimePNG:  ".png",
	MimeGIF:  ".gif",
	MimeWebP: ".webp",
	MimePDF:  ".pdf",
}

var (
	ErrEmptyPayload       = errors.New("file is empty")
	ErrPayloadTooLarge    = errors.New("file is too large")
	ErrUnsupportedPayload = errors.New("file must be a JPEG, PNG, GIF, WebP image or a PDF")
	ErrCorruptPayload     = errors.New("file could not be decoded")
)

// CheckPayload sniffs data and makes sure it decodes as a supported image
// or PDF. It returns the detected MIME type and file extension.
func CheckPayload(data []byte, maxBytes int64) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmptyPayload
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", "", fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(data), maxBytes)
	}

	mime := http.DetectContentType(data)
	ext, ok := extensions[mime]
	if !ok {
		return "", "", fmt.Errorf("%w: detected %s", ErrUnsupportedPayload, mime)
	}

	switch mime {
	case MimePDF:
		if !looksLikePDF(data) {
			return "", "", fmt.Errorf("%w: pdf is truncated", ErrCorruptPayload)
		}
	case MimeWebP:
		if _, err := webp.Decode(bytes.NewReader(data)); err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrCorruptPayload, err)
		}
	default:
		if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrCorruptPayload, err)
		}
	}

	return mime, ext, nil
}

// looksLikePDF checks the header and that an end-of-file marker sits near
// the end of the payload.
func looksLikePDF(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return false
	}
	tail := data
	if len(tail) > 1024 {
		tail = tail[len(tail)-1024:]
	}
	return bytes.Contains(tail, []byte("%%EOF"))
}
