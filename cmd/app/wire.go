package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-file-relay/internal/application"
	"telegram-file-relay/internal/config"
	"telegram-file-relay/internal/domain/model"
	"telegram-file-relay/internal/domain/ports/adapter"
	"telegram-file-relay/internal/infra/adapters/fetch"
	"telegram-file-relay/internal/infra/i18n"
	"telegram-file-relay/internal/usecase"
)

type app struct {
	facade     *application.BotFacade
	translator *i18n.Translator
}

// buildApp wires fetchers, the relay usecase and the facade shared by serve and fetch.
func buildApp(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*app, error) {
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}

	httpFetcher := fetch.NewHTTPFetcher(cfg.Relay.Timeout, cfg.Relay.UserAgent)
	byScheme := map[string]adapter.Fetcher{
		"http":  httpFetcher,
		"https": httpFetcher,
		"ftp":   fetch.NewFTPFetcher(cfg.Relay.Timeout),
	}
	s3Fetcher, err := fetch.NewS3Fetcher(ctx, cfg.S3)
	if err != nil {
		logger.Warn().Err(err).Msg("s3 fetcher disabled")
	} else {
		byScheme["s3"] = s3Fetcher
	}
	resolver := fetch.NewYandexResolver(cfg.Relay.YandexAPI, cfg.Relay.ResolverTimeout, logger)

	relayUC := usecase.NewRelayUseCase(resolver, fetch.NewMultiFetcher(byScheme), translator, cfg.Relay.MaxBytes, cfg.Relay.Timeout, logger)

	sources := make([]model.FileSource, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		src, err := model.NewFileSource(s.Command, s.URL, s.FileName, s.Description)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", s.Command, err)
		}
		if !src.Configured() {
			logger.Warn().Str("source", src.Command).Msg("source has no url")
		}
		sources = append(sources, src)
	}

	facade := application.NewBotFacade(relayUC, translator, cfg.Bot.Name, sources, time.Now())
	return &app{facade: facade, translator: translator}, nil
}
