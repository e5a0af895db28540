package application

import (
	"context"

	"telegram-file-relay/internal/domain/model"
	"telegram-file-relay/internal/domain/ports/adapter"
)

// RelayUseCaseIface is the minimal surface the facade needs from the relay
// usecase, so tests can pass light-weight mocks.
type RelayUseCaseIface interface {
	Relay(ctx context.Context, chat adapter.Chat, src model.FileSource) error
	Announce(ctx context.Context, chat adapter.Chat, src model.FileSource) (int, error)
	Deliver(ctx context.Context, chat adapter.Chat, src model.FileSource, statusID int) error
}
