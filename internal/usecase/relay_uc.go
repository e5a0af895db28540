package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-file-relay/internal/domain"
	"telegram-file-relay/internal/domain/model"
	"telegram-file-relay/internal/domain/ports/adapter"
	"telegram-file-relay/internal/infra/i18n"
	"telegram-file-relay/internal/infra/logging"
	"telegram-file-relay/internal/infra/metrics"
)

// Compile-time check
var _ RelayUseCase = (*relayUC)(nil)

// statusEditTimeout bounds the final status edit, which runs detached from
// the relay context so a cancelled relay still tells the user.
const statusEditTimeout = 10 * time.Second

type RelayUseCase interface {
	// Relay downloads src and forwards it to chat as a document, reporting
	// progress through a single status message that is edited in place.
	// Download problems are reported to the chat and are not returned.
	Relay(ctx context.Context, chat adapter.Chat, src model.FileSource) error
	// Announce posts the status message and returns its id. An unconfigured
	// source gets its notice instead and ErrSourceNotConfigured is returned.
	Announce(ctx context.Context, chat adapter.Chat, src model.FileSource) (int, error)
	// Deliver runs the download for an announced relay and edits statusID
	// with the outcome.
	Deliver(ctx context.Context, chat adapter.Chat, src model.FileSource, statusID int) error
	// Download resolves and fetches src without any chat interaction.
	Download(ctx context.Context, src model.FileSource) (*model.DownloadResult, error)
}

type relayUC struct {
	resolver   adapter.Resolver
	fetcher    adapter.Fetcher
	translator *i18n.Translator
	maxBytes   int64
	timeout    time.Duration
	log        *zerolog.Logger
}

func NewRelayUseCase(
	resolver adapter.Resolver,
	fetcher adapter.Fetcher,
	translator *i18n.Translator,
	maxBytes int64,
	timeout time.Duration,
	logger *zerolog.Logger,
) *relayUC {
	return &relayUC{
		resolver:   resolver,
		fetcher:    fetcher,
		translator: translator,
		maxBytes:   maxBytes,
		timeout:    timeout,
		log:        logger,
	}
}

func (u *relayUC) Download(ctx context.Context, src model.FileSource) (*model.DownloadResult, error) {
	if !src.Configured() {
		return nil, domain.ErrSourceNotConfigured
	}
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	target := src.URL
	if u.resolver != nil {
		target = u.resolver.Resolve(ctx, src.URL)
	}

	start := time.Now()
	res, err := u.fetcher.Fetch(ctx, target, u.maxBytes)
	if err != nil {
		metrics.ObserveDownload(src.Command, 0, time.Since(start), false)
		return nil, err
	}
	metrics.ObserveDownload(src.Command, res.Size(), time.Since(start), true)
	if u.maxBytes > 0 && res.Size() > u.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", domain.ErrTooLarge, res.Size(), u.maxBytes)
	}
	return res, nil
}

func (u *relayUC) Relay(ctx context.Context, chat adapter.Chat, src model.FileSource) error {
	statusID, err := u.Announce(ctx, chat, src)
	if errors.Is(err, domain.ErrSourceNotConfigured) {
		return nil
	}
	if err != nil {
		return err
	}
	return u.Deliver(ctx, chat, src, statusID)
}

func (u *relayUC) Announce(ctx context.Context, chat adapter.Chat, src model.FileSource) (int, error) {
	if !src.Configured() {
		metrics.IncRelay(src.Command, metrics.RelayNotConfigured)
		if _, err := chat.SendMessage(ctx, u.translator.T("relay_not_configured", src.Description)); err != nil {
			return 0, err
		}
		return 0, domain.ErrSourceNotConfigured
	}
	statusID, err := chat.SendMessage(ctx, u.translator.T("relay_in_progress", src.Description))
	if err != nil {
		return 0, fmt.Errorf("send status message: %w", err)
	}
	return statusID, nil
}

func (u *relayUC) Deliver(ctx context.Context, chat adapter.Chat, src model.FileSource, statusID int) error {
	log := logging.With(ctx, u.log).With().Str("source", src.Command).Logger()
	defer logging.TraceDuration(&log, "RelayUC.Deliver")()

	res, err := u.Download(ctx, src)
	switch {
	case errors.Is(err, domain.ErrTooLarge):
		log.Warn().Err(err).Msg("file too large to relay")
		metrics.IncRelay(src.Command, metrics.RelayTooLarge)
		return u.editStatus(ctx, chat, statusID, u.translator.T("relay_too_large", src.Description, megabytes(u.maxBytes)))
	case err != nil:
		log.Error().Err(err).Msg("download failed")
		metrics.IncRelay(src.Command, metrics.RelayFailed)
		return u.editStatus(ctx, chat, statusID, u.translator.T("relay_failed", src.Description))
	}

	if err := chat.SendDocument(ctx, src.FileName, res.Data, src.Description); err != nil {
		log.Error().Err(err).Int64("bytes", res.Size()).Msg("send document failed")
		metrics.IncRelay(src.Command, metrics.RelaySendFailed)
		return u.editStatus(ctx, chat, statusID, u.translator.T("relay_failed", src.Description))
	}

	metrics.IncRelay(src.Command, metrics.RelaySent)
	log.Info().Int64("bytes", res.Size()).Dur("elapsed", res.Elapsed).Msg("file relayed")
	return u.editStatus(ctx, chat, statusID, u.translator.T("relay_success", src.Description))
}

func (u *relayUC) editStatus(ctx context.Context, chat adapter.Chat, statusID int, text string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusEditTimeout)
	defer cancel()
	return chat.EditMessage(ctx, statusID, text)
}

func megabytes(n int64) float64 { return float64(n) / (1024 * 1024) }
