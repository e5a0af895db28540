package telegram

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"telegram-file-relay/internal/domain/ports/adapter"
)

var _ adapter.Chat = (*LocalChat)(nil)

// LocalChat stands in for a Telegram chat when running without the Bot API.
// Messages are printed to out and documents are written under dir.
type LocalChat struct {
	dir string
	out io.Writer
	log *zerolog.Logger

	mu     sync.Mutex
	nextID int
	saved  []string
}

func NewLocalChat(dir string, out io.Writer, logger *zerolog.Logger) *LocalChat {
	if dir == "" {
		dir = "."
	}
	return &LocalChat{dir: dir, out: out, log: logger}
}

func (c *LocalChat) SendMessage(_ context.Context, text string) (int, error) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()
	fmt.Fprintf(c.out, "[%d] %s\n", id, text)
	return id, nil
}

func (c *LocalChat) EditMessage(_ context.Context, messageID int, text string) error {
	fmt.Fprintf(c.out, "[%d*] %s\n", messageID, text)
	return nil
}

func (c *LocalChat) SendDocument(_ context.Context, fileName string, data []byte, caption string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(c.dir, filepath.Base(fileName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	c.mu.Lock()
	c.saved = append(c.saved, path)
	c.mu.Unlock()
	c.log.Info().Str("path", path).Int("bytes", len(data)).Str("caption", caption).Msg("document saved")
	return nil
}

func (c *LocalChat) UserID() int64 { return 0 }

// Saved lists the paths written so far.
func (c *LocalChat) Saved() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.saved...)
}
