// internal/infra/telegram/notifier.go
package telegram

import (
	"context"
	"fmt"

	domainTelegram "nutrition_goal_bot/internal/domain/telegram"
	"nutrition_goal_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Notifier implements notify.Notifier by resolving the user's Telegram chat
// and sending through the bot client. Every message carries the quick-log
// keyboard so seniors can record water/missions with one tap.
type Notifier struct {
	client   domainTelegram.Client
	userRepo user.Repository
	logger   *logrus.Entry
}

func NewNotifier(client domainTelegram.Client, userRepo user.Repository, logger *logrus.Entry) *Notifier {
	return &Notifier{client: client, userRepo: userRepo, logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, userID, title, body string) error {
	u, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve chat for user %s: %w", userID, err)
	}

	text := body
	if title != "" {
		text = title + "\n\n" + body
	}

	err = n.client.SendMessage(u.TelegramID, text, &telebot.SendOptions{ReplyMarkup: quickLogMarkup()})
	if err != nil {
		return fmt.Errorf("failed to send telegram message to user %s: %w", userID, err)
	}
	n.logger.WithFields(logrus.Fields{"user_id": userID, "chat_id": u.TelegramID}).
		Debug("Telegram message delivered")
	return nil
}

// quickLogMarkup builds the inline keyboard attached to outbound messages.
func quickLogMarkup() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	btnWater := markup.Data("물 한 잔 마셨어요 (250ml)", "log_water_250")
	btnMission := markup.Data("운동 미션 완료!", "log_mission")
	markup.Inline(markup.Row(btnWater), markup.Row(btnMission))
	return markup
}
