// Package pix is a thin HTTP client for the external PIX payment provider.
// It creates instant-payment charges (QR code + copy-and-paste brCode) and
// checks their status. Webhook deliveries from the provider are handled by
// the billing service, not here.
package pix
