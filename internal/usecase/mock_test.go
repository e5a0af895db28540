package usecase_test

import (
	"context"
	"io"
	"sync"
	"testing/fstest"

	"github.com/rs/zerolog"

	"telegram-file-relay/internal/domain/model"
	"telegram-file-relay/internal/domain/ports/adapter"
	"telegram-file-relay/internal/infra/i18n"
)

// ---- Mock Chat ----

type sentDocument struct {
	Name    string
	Size    int
	Caption string
}

type editedMessage struct {
	ID   int
	Text string
}

type MockChat struct {
	mu sync.Mutex

	User      int64
	Messages  []string
	Edits     []editedMessage
	Documents []sentDocument
	// EditCtxErrs holds ctx.Err() as seen by each EditMessage call.
	EditCtxErrs []error

	SendMessageErr  error
	SendDocumentErr error
	nextID          int
}

var _ adapter.Chat = (*MockChat)(nil)

func (m *MockChat) SendMessage(ctx context.Context, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendMessageErr != nil {
		return 0, m.SendMessageErr
	}
	m.nextID++
	m.Messages = append(m.Messages, text)
	return m.nextID, nil
}

func (m *MockChat) EditMessage(ctx context.Context, messageID int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edits = append(m.Edits, editedMessage{ID: messageID, Text: text})
	m.EditCtxErrs = append(m.EditCtxErrs, ctx.Err())
	return nil
}

func (m *MockChat) SendDocument(ctx context.Context, fileName string, data []byte, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendDocumentErr != nil {
		return m.SendDocumentErr
	}
	m.Documents = append(m.Documents, sentDocument{Name: fileName, Size: len(data), Caption: caption})
	return nil
}

func (m *MockChat) UserID() int64 { return m.User }

// ---- Mock Fetcher / Resolver ----

type MockFetcher struct {
	mu        sync.Mutex
	FetchFunc func(ctx context.Context, rawURL string, maxBytes int64) (*model.DownloadResult, error)
	URLs      []string
}

var _ adapter.Fetcher = (*MockFetcher)(nil)

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string, maxBytes int64) (*model.DownloadResult, error) {
	m.mu.Lock()
	m.URLs = append(m.URLs, rawURL)
	m.mu.Unlock()
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, rawURL, maxBytes)
	}
	return &model.DownloadResult{URL: rawURL, Data: []byte("data")}, nil
}

type MockResolver struct {
	Mapping map[string]string
}

var _ adapter.Resolver = (*MockResolver)(nil)

func (m *MockResolver) Resolve(ctx context.Context, rawURL string) string {
	if v, ok := m.Mapping[rawURL]; ok {
		return v
	}
	return rawURL
}

// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- Test Translator

func newTestTranslator() *i18n.Translator {
	testFS := fstest.MapFS{
		"locales/test.yaml": {
			Data: []byte(`relay_in_progress: "loading %s"
relay_success: "sent %s"
relay_failed: "failed %s"
relay_too_large: "too large %s (limit %.0f MB)"
relay_not_configured: "not configured %s"
`),
		},
	}
	translator, _ := i18n.NewTranslator(testFS, "test")
	return translator
}
