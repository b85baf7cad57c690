package util

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"navbuddy/api/internal/apperr"
)

// MaxImageBytes is the ceiling for a decoded image sent to the vision model.
const MaxImageBytes = 4 << 20

const defaultImageFormat = "jpeg"

type Image struct {
	Data   []byte
	Format string // "jpeg", "png", "webp"...
}

func (im Image) MIMEType() string { return "image/" + im.Format }

func (im Image) SHA256() string {
	h := sha256.Sum256(im.Data)
	return hex.EncodeToString(h[:])
}

// DecodeImagePayload принимает base64 или data:image/<fmt>;base64,<data> и
// возвращает байты картинки с форматом. Нарушение потолка MaxImageBytes
// отсекается до любого внешнего вызова.
func DecodeImagePayload(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, apperr.ErrEmptyImage
	}

	b64, format := s, defaultImageFormat
	if strings.HasPrefix(strings.ToLower(s), "data:") || strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return Image{}, fmt.Errorf("%w: data URI must have exactly one comma", apperr.ErrInvalidImageFormat)
		}
		meta := strings.Split(parts[0], ";")
		if len(meta) != 2 || !strings.HasPrefix(meta[0], "data:image/") {
			return Image{}, fmt.Errorf("%w: expected data:image/<format>;base64 prefix", apperr.ErrInvalidImageFormat)
		}
		format = strings.ToLower(strings.TrimPrefix(meta[0], "data:image/"))
		if format == "" {
			return Image{}, fmt.Errorf("%w: missing image format", apperr.ErrInvalidImageFormat)
		}
		b64 = strings.TrimSpace(parts[1])
	}

	if base64.StdEncoding.DecodedLen(len(b64)) > MaxImageBytes+2 {
		return Image{}, fmt.Errorf("%w: exceeds %d bytes", apperr.ErrImageTooLarge, MaxImageBytes)
	}

	data, err := decodeBase64(b64)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", apperr.ErrInvalidImageEncoding, err)
	}
	if len(data) == 0 {
		return Image{}, apperr.ErrEmptyImage
	}
	if len(data) > MaxImageBytes {
		return Image{}, fmt.Errorf("%w: %d bytes exceeds %d", apperr.ErrImageTooLarge, len(data), MaxImageBytes)
	}
	return Image{Data: data, Format: format}, nil
}

// Стандартная база64, затем URL-safe на случай вариаций
func decodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return b, nil
	}
	if b2, err2 := base64.URLEncoding.DecodeString(s); err2 == nil {
		return b2, nil
	}
	return nil, err
}

// SniffImageFormat guesses the format tag from magic bytes; used by the CLI
// when an image comes from disk rather than a data URI.
func SniffImageFormat(b []byte) string {
	switch {
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8:
		return "jpeg"
	case len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A:
		return "png"
	case len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return "webp"
	}
	return defaultImageFormat
}

func MakeDataURL(format string, data []byte) string {
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data)
}
