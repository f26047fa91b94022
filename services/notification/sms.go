package notification

import (
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSNotifier sends a short SMS when a blog has been generated and
// published. It is optional; a nil notifier is silently skipped.
type SMSNotifier struct {
	client     *twilio.RestClient
	fromNumber string
	toNumber   string
	logger     *slog.Logger
}

// NewSMSNotifier returns nil when Twilio credentials are not configured.
func NewSMSNotifier(accountSID, authToken, fromNumber, toNumber string, logger *slog.Logger) *SMSNotifier {
	if accountSID == "" || authToken == "" || fromNumber == "" || toNumber == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSNotifier{
		client:     client,
		fromNumber: fromNumber,
		toNumber:   toNumber,
		logger:     logger,
	}
}

func (n *SMSNotifier) NotifyBlogPublished(topic string, wordCount int) error {
	body := fmt.Sprintf("New blog published: %q (%d words)", topic, wordCount)

	params := &twilioApi.CreateMessageParams{
		To:   &n.toNumber,
		From: &n.fromNumber,
		Body: &body,
	}

	message, err := n.client.Api.CreateMessage(params)
	if err != nil {
		n.logger.Error("Failed to send SMS",
			slog.String("error", err.Error()),
			slog.String("to", n.toNumber))
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	n.logger.Info("Publish notification sent",
		slog.String("message_sid", *message.Sid))
	return nil
}
