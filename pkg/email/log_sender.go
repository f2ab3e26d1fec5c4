package email

import (
	"context"
	"log/slog"
)

// LogSender implements EmailSender for local development and tests. Instead
// of talking to an email provider it writes the email to the logger.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender creates a development email sender that logs instead of sending.
func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{log: log}
}

func (s *LogSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "email (dev sender, not delivered)",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
		slog.Int("body_bytes", len(params.BodyHTML)),
	)
	return nil
}
