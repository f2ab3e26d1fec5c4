package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content is empty or only whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerateQRCode is returned when encoding fails.
	ErrFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

// defaultSize is the image size in pixels used when no size is specified.
const defaultSize = 256

// Generate encodes content as a QR code PNG. A non-positive size falls back
// to the default.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// GenerateBase64Image encodes content as a QR code and returns it as a
// base64 data URI suitable for direct embedding in an <img> tag. It is used
// to render PIX copy-and-paste codes as scannable images.
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
