// Package qrcode generates QR code images, primarily for rendering PIX
// payment codes (brCode) as scannable images in checkout responses.
package qrcode
