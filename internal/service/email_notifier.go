package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// ResendNotifier delivers verification codes through the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
}

func NewResendNotifier(apiKey, from string) *ResendNotifier {
	return &ResendNotifier{client: resend.NewClient(apiKey), from: from}
}

func (n *ResendNotifier) SendVerificationCode(ctx context.Context, to, username, code string) error {
	_, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: "Verify your email address",
		Html: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your verification code is <strong>%s</strong>.</p><p>It expires in one hour.</p>",
			username, code),
	})
	if err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// DevNotifier logs the code instead of sending mail. Used whenever no
// Resend key is configured.
type DevNotifier struct {
	log *slog.Logger
}

func NewDevNotifier(log *slog.Logger) *DevNotifier {
	return &DevNotifier{log: log}
}

func (n *DevNotifier) SendVerificationCode(ctx context.Context, to, username, code string) error {
	n.log.InfoContext(ctx, "verification code issued",
		slog.String("to", to),
		slog.String("username", username),
		slog.String("code", code))
	return nil
}

var (
	_ VerificationNotifier = (*ResendNotifier)(nil)
	_ VerificationNotifier = (*DevNotifier)(nil)
)
