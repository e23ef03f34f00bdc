package messenger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	logx "bidwatch/pkg/logx"
)

type telegramMessenger struct {
	bot *tele.Bot
	log logx.Logger
}

func newTelegram(cfg Config, log logx.Logger) (*telegramMessenger, error) {
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	// Send-only: no poller, no update handling.
	b, err := tele.NewBot(tele.Settings{Token: cfg.Telegram.Token})
	if err != nil {
		return nil, err
	}
	return &telegramMessenger{bot: b, log: log}, nil
}

func (m *telegramMessenger) Send(ctx context.Context, to, text string) (Receipt, error) {
	_ = ctx // telebot manages its own request deadlines
	chatID, err := strconv.ParseInt(strings.TrimSpace(to), 10, 64)
	if err != nil {
		return Receipt{}, fmt.Errorf("telegram recipient must be a chat id: %w", err)
	}
	msg, err := m.bot.Send(&tele.Chat{ID: chatID}, text)
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{GroupID: strconv.Itoa(msg.ID)}, nil
}
