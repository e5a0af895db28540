package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-file-relay/internal/domain"
	"telegram-file-relay/internal/infra/logging"
	"telegram-file-relay/internal/infra/metrics"
	red "telegram-file-relay/internal/infra/redis"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
// Keys are lowercase; every configured file source gets a relay route.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	routes := map[string]commandHandler{
		"start":  r.handleStartCommand,
		"help":   r.handleHelpCommand,
		"status": r.handleStatusCommand,
		"id":     r.handleIDCommand,
	}
	for _, s := range r.facade.Sources() {
		routes[strings.ToLower(s.Command)] = r.handleRelayCommand
	}
	return routes
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleStart())
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleHelp())
}

func (r *RealTelegramBotAdapter) handleStatusCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleStatus())
}

func (r *RealTelegramBotAdapter) handleIDCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleID(message.From.ID))
}

// handleRelayCommand queues the download on the worker pool and returns at once.
func (r *RealTelegramBotAdapter) handleRelayCommand(ctx context.Context, message *tgbotapi.Message) error {
	command := message.Command()
	log := logging.With(ctx, r.log)

	if r.limiter != nil {
		allowed, err := r.limiter.Allow(ctx, red.UserCommandKey(message.From.ID, strings.ToLower(command)))
		if err != nil {
			log.Warn().Err(err).Msg("rate limit check failed, allowing")
		} else if !allowed {
			metrics.IncRateLimitTriggered()
			return r.reply(ctx, message.Chat.ID, r.translator.T("rate_limited"))
		}
	}

	// The status message goes out now; only the download waits for a worker.
	chat := newChatSession(r.api, message.Chat.ID, message.From.ID)
	statusID, err := r.facade.AnnounceRelay(ctx, chat, command)
	if errors.Is(err, domain.ErrSourceNotConfigured) {
		return nil
	}
	if err != nil {
		return err
	}

	err = r.tasks.Submit(func(poolCtx context.Context) error {
		// keep the update's log fields, stop when either side is cancelled
		taskCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		defer context.AfterFunc(poolCtx, cancel)()
		return r.facade.DeliverRelay(taskCtx, chat, command, statusID)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrQueueFull) {
		metrics.IncQueueRejected()
	}
	log.Warn().Err(err).Msg("relay not queued")
	return chat.EditMessage(ctx, statusID, r.translator.T("relay_busy"))
}
