package alert

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotSender is the part of tgbotapi.BotAPI used for alerts.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel posts alerts to the host's Telegram chat.
type TelegramChannel struct {
	bot    BotSender
	chatID int64
}

// NewTelegramChannel connects to the Bot API with the given token.
func NewTelegramChannel(token string, chatID int64) (*TelegramChannel, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to start Telegram bot: %w", err)
	}
	return &TelegramChannel{bot: bot, chatID: chatID}, nil
}

// NewTelegramChannelWithBot uses an existing sender.
func NewTelegramChannelWithBot(bot BotSender, chatID int64) *TelegramChannel {
	return &TelegramChannel{bot: bot, chatID: chatID}
}

func (c *TelegramChannel) Name() string { return "telegram" }

func (c *TelegramChannel) Notify(ctx context.Context, a Alert) error {
	text := fmt.Sprintf("*%s*\n%s\nVisitor #%d", escapeMarkdown(a.Title), escapeMarkdown(a.Body), a.VisitorID)
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// escapeMarkdown escapes the characters legacy Markdown treats as markup.
func escapeMarkdown(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
