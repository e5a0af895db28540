package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-file-relay/internal/application"
	"telegram-file-relay/internal/config"
	"telegram-file-relay/internal/infra/i18n"
	"telegram-file-relay/internal/infra/logging"
	"telegram-file-relay/internal/infra/metrics"
	"telegram-file-relay/internal/infra/worker"
)

// botAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type taskSubmitter interface {
	Submit(task worker.Task) error
}

type rateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RealTelegramBotAdapter polls Telegram for updates and routes commands.
type RealTelegramBotAdapter struct {
	api        botAPI
	facade     *application.BotFacade
	translator *i18n.Translator
	tasks      taskSubmitter
	limiter    rateLimiter
	log        *zerolog.Logger

	routes map[string]commandHandler
	// updateWorkers is how many goroutines concurrently process updates.
	updateWorkers int
}

// NewRealTelegramBotAdapter connects to the Bot API with cfg.Token.
// Relay commands are handed to tasks so downloads never block the update workers.
func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	translator *i18n.Translator,
	tasks taskSubmitter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	// Long polling holds requests for up to 60s; anything slower is a stalled API.
	client := &http.Client{Timeout: 90 * time.Second}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	logger.Info().Str("username", bot.Self.UserName).Msg("authorized on telegram")
	return newAdapter(bot, facade, translator, tasks, cfg.Workers, logger)
}

func newAdapter(
	api botAPI,
	facade *application.BotFacade,
	translator *i18n.Translator,
	tasks taskSubmitter,
	updateWorkers int,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}
	if tasks == nil {
		return nil, errors.New("task submitter is nil")
	}
	if updateWorkers <= 0 {
		updateWorkers = 5
	}
	r := &RealTelegramBotAdapter{
		api:           api,
		facade:        facade,
		translator:    translator,
		tasks:         tasks,
		log:           logger,
		updateWorkers: updateWorkers,
	}
	r.routes = r.commandRoutes()
	return r, nil
}

// WithRateLimiter enables per-user limits on relay commands.
func (r *RealTelegramBotAdapter) WithRateLimiter(l rateLimiter) *RealTelegramBotAdapter {
	r.limiter = l
	return r
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled or the update stream ends.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := r.api.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for update := range updateChan {
				if err := r.handleUpdate(ctx, update); err != nil {
					r.log.Error().Err(err).Int("worker", workerID).Msg("error handling update")
				}
			}
		}(i + 1)
	}

	var err error
	func() {
		defer close(updateChan)
		for {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case update, ok := <-updates:
				if !ok {
					err = errors.New("telegram update stream closed")
					return
				}
				select {
				case updateChan <- update:
				case <-ctx.Done():
					err = ctx.Err()
					return
				}
			}
		}
	}()

	r.api.StopReceivingUpdates()
	wg.Wait()
	return err
}

// SetMenuCommands publishes the command list shown in the Telegram client menu.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context) error {
	cmds := []tgbotapi.BotCommand{
		{Command: "start", Description: r.translator.T("cmd_start")},
	}
	for _, s := range r.facade.Sources() {
		// menu entries must be lowercase
		cmds = append(cmds, tgbotapi.BotCommand{Command: strings.ToLower(s.Command), Description: s.Description})
	}
	cmds = append(cmds,
		tgbotapi.BotCommand{Command: "status", Description: r.translator.T("cmd_status")},
		tgbotapi.BotCommand{Command: "id", Description: r.translator.T("cmd_id")},
		tgbotapi.BotCommand{Command: "help", Description: r.translator.T("cmd_help")},
	)
	_, err := r.api.Request(tgbotapi.NewSetMyCommands(cmds...))
	return err
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.IncUpdatePanic()
			err = fmt.Errorf("panic handling update %d: %v", update.UpdateID, rec)
		}
	}()

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || !msg.IsCommand() {
		return nil
	}
	command := msg.Command()

	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithTgID(ctx, msg.From.ID)
	ctx = logging.WithCommand(ctx, command)
	logging.With(ctx, r.log).Debug().Int64("chat_id", msg.Chat.ID).Msg("command received")
	h, ok := r.routes[strings.ToLower(command)]
	if !ok {
		// free-form input must not mint new label values
		metrics.IncTelegramCommand(metrics.UnknownCommand)
		return r.reply(ctx, msg.Chat.ID, r.translator.T("unknown_command"))
	}
	metrics.IncTelegramCommand(command)
	return h(ctx, msg)
}

func (r *RealTelegramBotAdapter) reply(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	_, err := r.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
