package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-file-relay/internal/domain/ports/adapter"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var _ adapter.Chat = (*chatSession)(nil)

// chatSession binds the Bot API to the chat and user of one command.
type chatSession struct {
	api    sender
	chatID int64
	userID int64
}

func newChatSession(api sender, chatID, userID int64) *chatSession {
	return &chatSession{api: api, chatID: chatID, userID: userID}
}

func (c *chatSession) SendMessage(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m, err := c.api.Send(tgbotapi.NewMessage(c.chatID, text))
	if err != nil {
		return 0, err
	}
	return m.MessageID, nil
}

func (c *chatSession) EditMessage(ctx context.Context, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.api.Request(tgbotapi.NewEditMessageText(c.chatID, messageID, text))
	return err
}

func (c *chatSession) SendDocument(ctx context.Context, fileName string, data []byte, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(c.chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})
	doc.Caption = caption
	_, err := c.api.Send(doc)
	return err
}

func (c *chatSession) UserID() int64 { return c.userID }
