package extraction

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxImageBytes    = 10 << 20
	DefaultMediaType = "image/jpeg"
)

var ErrInvalidImage = errors.New("invalid image")

var (
	dataURLPrefix  = regexp.MustCompile(`^data:(image/(?:jpeg|jpg|png|gif|webp));base64,`)
	base64Alphabet = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)
	whitespace     = regexp.MustCompile(`\s+`)
)

var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Image is a validated, decoded upload. Base64 holds the normalised
// encoding for backends that want it rather than raw bytes.
type Image struct {
	MediaType string
	Data      []byte
	Base64    string
}

// DecodeImage accepts raw base64 or a data URL. The media type comes from
// the data URL when present, then from mediaType, then defaults to JPEG.
func DecodeImage(raw, mediaType string) (Image, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Image{}, fmt.Errorf("%w: no image provided", ErrInvalidImage)
	}

	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if m := dataURLPrefix.FindStringSubmatch(raw); m != nil {
		mt = m[1]
		raw = raw[len(m[0]):]
	} else if strings.HasPrefix(raw, "data:") {
		return Image{}, fmt.Errorf("%w: unsupported data URL", ErrInvalidImage)
	}
	if mt == "image/jpg" {
		mt = "image/jpeg"
	}
	if mt == "" {
		mt = DefaultMediaType
	}
	if !allowedMediaTypes[mt] {
		return Image{}, fmt.Errorf("%w: unsupported media type %q", ErrInvalidImage, mt)
	}

	encoded := whitespace.ReplaceAllString(raw, "")
	if encoded == "" || !base64Alphabet.MatchString(encoded) {
		return Image{}, fmt.Errorf("%w: not valid base64", ErrInvalidImage)
	}
	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxImageBytes+2 {
		return Image{}, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidImage, MaxImageBytes)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) > MaxImageBytes {
		return Image{}, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidImage, MaxImageBytes)
	}
	return Image{MediaType: mt, Data: data, Base64: encoded}, nil
}
