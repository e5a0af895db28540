package adapter

import "context"

// Chat is the slice of a bot conversation the relay needs. One value is bound
// to the chat and user of a single inbound command.
type Chat interface {
	// SendMessage posts text and returns the id of the new message.
	SendMessage(ctx context.Context, text string) (int, error)
	EditMessage(ctx context.Context, messageID int, text string) error
	SendDocument(ctx context.Context, fileName string, data []byte, caption string) error
	UserID() int64
}
