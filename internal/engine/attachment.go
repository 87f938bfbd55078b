package engine

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	// ErrNotAnImage is returned for attachments whose media type is
	// not image/*.
	ErrNotAnImage = errors.New("attachment must be an image")

	// ErrMalformedDataURL is returned when the attachment is not a
	// well-formed base64 data URL.
	ErrMalformedDataURL = errors.New("attachment must be a base64 data URL")
)

// ValidateImageDataURL checks that an inline attachment is a data URL
// with an image media type and a decodable base64 payload. No size
// limit is enforced.
func ValidateImageDataURL(s string) error {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return ErrMalformedDataURL
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return ErrMalformedDataURL
	}

	mediaType, params, _ := strings.Cut(meta, ";")
	if !strings.HasPrefix(mediaType, "image/") {
		return ErrNotAnImage
	}
	if params != "base64" {
		return ErrMalformedDataURL
	}

	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return ErrMalformedDataURL
	}
	return nil
}

// EncodeImageDataURL builds the inline data URL for a raw image body,
// the same shape a browser FileReader produces.
func EncodeImageDataURL(mediaType string, body []byte) (string, error) {
	if !strings.HasPrefix(mediaType, "image/") {
		return "", ErrNotAnImage
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}
