package notificator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegram rejects longer messages
const maxMessageRunes = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramInfra struct {
	bot    sender
	admins []int64
}

func NewTelegramInfra(bot *tgbotapi.BotAPI, admins []int64) *TelegramInfra {
	t := &TelegramInfra{admins: admins}
	if bot != nil {
		t.bot = bot
	}
	return t
}

func (i *TelegramInfra) Notify(ctx context.Context, err error, details string) error {
	if i.bot == nil {
		return fmt.Errorf("telegram bot not configured")
	}

	text := truncate(fmt.Sprintf(
		"❗ Ошибка генерации презентации\n\nОшибка: %v\n\nДетали: %s",
		err,
		details,
	))

	var errs []error
	for _, chatID := range i.admins {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, sendErr := i.bot.Send(tgbotapi.NewMessage(chatID, text)); sendErr != nil {
			log.Printf("[notificator] send fail to %d: %v", chatID, sendErr)
			errs = append(errs, sendErr)
		}
	}

	return errors.Join(errs...)
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxMessageRunes-1]) + "…"
}

// NopInfra is used when no bot token is configured.
type NopInfra struct{}

func (NopInfra) Notify(ctx context.Context, err error, details string) error { return nil }
