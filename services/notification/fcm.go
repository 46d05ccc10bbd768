package notification

import (
	"context"
	"fmt"

	accountRepo "resolvo/database/repository/account"
	"resolvo/models"
	"resolvo/utils"

	"firebase.google.com/go/v4/messaging"
)

// FCMNotificationService delivers notifications via Firebase Cloud Messaging.
type FCMNotificationService struct {
	Accounts accountRepo.AccountRepository
}

// Send looks up the account's FCM token and pushes the message. An account
// with no registered token is skipped silently; there is nowhere to deliver.
func (s *FCMNotificationService) Send(ctx context.Context, n models.Notification) error {
	account, err := s.Accounts.GetByID(ctx, n.AccountID)
	if err != nil {
		return fmt.Errorf("notification: could not find account %s: %w", n.AccountID, err)
	}
	if account.FCMToken == "" {
		return nil
	}

	data := n.Data
	if data == nil {
		data = map[string]string{}
	}
	data["type"] = n.Type

	msg := &messaging.Message{
		Token: account.FCMToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("notification: failed to send FCM message to %s: %w", n.AccountID, err)
	}
	return nil
}
