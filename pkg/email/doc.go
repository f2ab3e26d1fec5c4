// Package email defines the EmailSender interface used by subscription
// notifications, with a Postmark implementation for production and a
// log-backed sender for development.
package email
