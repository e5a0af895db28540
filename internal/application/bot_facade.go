package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"telegram-file-relay/internal/domain/model"
	"telegram-file-relay/internal/domain/ports/adapter"
	"telegram-file-relay/internal/infra/i18n"
)

// BotFacade composes usecases into high-level bot commands.
// Text commands return strings so the Telegram adapter just forwards them to the chat.
type BotFacade struct {
	RelayUC    RelayUseCaseIface
	translator *i18n.Translator
	botName    string
	sources    map[string]model.FileSource
	ordered    []model.FileSource
	startedAt  time.Time
	now        func() time.Time
}

func NewBotFacade(relayUC RelayUseCaseIface, translator *i18n.Translator, botName string, sources []model.FileSource, startedAt time.Time) *BotFacade {
	byCmd := make(map[string]model.FileSource, len(sources))
	for _, s := range sources {
		byCmd[strings.ToLower(s.Command)] = s
	}
	return &BotFacade{
		RelayUC:    relayUC,
		translator: translator,
		botName:    botName,
		sources:    byCmd,
		ordered:    sources,
		startedAt:  startedAt,
		now:        time.Now,
	}
}

// Source looks up a file source by command name, case-insensitively.
func (b *BotFacade) Source(command string) (model.FileSource, bool) {
	s, ok := b.sources[strings.ToLower(strings.TrimPrefix(command, "/"))]
	return s, ok
}

func (b *BotFacade) Sources() []model.FileSource { return b.ordered }

func (b *BotFacade) HandleStart() string {
	return b.translator.T("start_message", b.botName)
}

func (b *BotFacade) HandleHelp() string {
	return b.translator.T("help_message")
}

func (b *BotFacade) HandleID(tgID int64) string {
	return b.translator.T("id_message", tgID)
}

func (b *BotFacade) Status() model.StatusInfo {
	now := b.now()
	return model.StatusInfo{
		Now:     now,
		Uptime:  now.Sub(b.startedAt).Truncate(time.Second),
		Sources: b.ordered,
	}
}

func (b *BotFacade) HandleStatus() string {
	info := b.Status()
	configured := 0
	for _, s := range info.Sources {
		if s.Configured() {
			configured++
		}
	}
	return b.translator.T("status_message", info.Now.Format("2006-01-02 15:04:05"), info.Uptime.String(), configured)
}

// HandleRelay runs the whole relay for the source bound to command.
func (b *BotFacade) HandleRelay(ctx context.Context, chat adapter.Chat, command string) error {
	src, err := b.relaySource(command)
	if err != nil {
		return err
	}
	return b.RelayUC.Relay(ctx, chat, src)
}

// AnnounceRelay posts the status message for command right away and returns
// its id. Unconfigured sources are answered here and yield
// domain.ErrSourceNotConfigured.
func (b *BotFacade) AnnounceRelay(ctx context.Context, chat adapter.Chat, command string) (int, error) {
	src, err := b.relaySource(command)
	if err != nil {
		return 0, err
	}
	return b.RelayUC.Announce(ctx, chat, src)
}

// DeliverRelay downloads and sends the file for an announced relay.
func (b *BotFacade) DeliverRelay(ctx context.Context, chat adapter.Chat, command string, statusID int) error {
	src, err := b.relaySource(command)
	if err != nil {
		return err
	}
	return b.RelayUC.Deliver(ctx, chat, src, statusID)
}

func (b *BotFacade) relaySource(command string) (model.FileSource, error) {
	if b.RelayUC == nil {
		return model.FileSource{}, fmt.Errorf("relay usecase not available")
	}
	src, ok := b.Source(command)
	if !ok {
		return model.FileSource{}, fmt.Errorf("no file source for command %q", command)
	}
	return src, nil
}
