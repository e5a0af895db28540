package fetch

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"

	"telegram-file-relay/internal/domain/model"
	"telegram-file-relay/internal/domain/ports/adapter"
)

var _ adapter.Fetcher = (*FTPFetcher)(nil)

// FTPFetcher retrieves ftp:// URLs in passive mode. Credentials come from the
// URL userinfo, anonymous otherwise.
type FTPFetcher struct {
	timeout time.Duration
}

func NewFTPFetcher(timeout time.Duration) *FTPFetcher {
	return &FTPFetcher{timeout: timeout}
}

type ftpTarget struct {
	addr     string
	user     string
	password string
	path     string
}

func parseFTPURL(rawURL string) (ftpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ftpTarget{}, fmt.Errorf("parse ftp url: %w", err)
	}
	if u.Hostname() == "" {
		return ftpTarget{}, fmt.Errorf("ftp url %q has no host", rawURL)
	}
	port := u.Port()
	if port == "" {
		port = "21"
	}
	t := ftpTarget{
		addr:     net.JoinHostPort(u.Hostname(), port),
		user:     "anonymous",
		password: "anonymous",
		path:     u.Path,
	}
	if u.User != nil {
		t.user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			t.password = p
		}
	}
	if t.path == "" || t.path == "/" {
		return ftpTarget{}, fmt.Errorf("ftp url %q has no file path", rawURL)
	}
	return t, nil
}

func (f *FTPFetcher) Fetch(ctx context.Context, rawURL string, maxBytes int64) (*model.DownloadResult, error) {
	start := time.Now()
	target, err := parseFTPURL(rawURL)
	if err != nil {
		return nil, err
	}

	conn, err := ftp.Dial(target.addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(f.timeout))
	if err != nil {
		return nil, fmt.Errorf("ftp dial %s: %w", target.addr, err)
	}
	// Reads on the data connection ignore ctx, so tear the session down on cancel.
	stop := context.AfterFunc(ctx, func() { _ = conn.Quit() })
	defer func() {
		if stop() {
			_ = conn.Quit()
		}
	}()

	if err := conn.Login(target.user, target.password); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}
	if size, err := conn.FileSize(target.path); err == nil {
		if err := tooLarge(size, maxBytes); err != nil {
			return nil, err
		}
	}

	resp, err := conn.Retr(target.path)
	if err != nil {
		return nil, fmt.Errorf("ftp retr %s: %w", target.path, err)
	}
	data, err := readLimited(resp, maxBytes)
	_ = resp.Close()
	if err != nil {
		return nil, fmt.Errorf("ftp read: %w", err)
	}
	return &model.DownloadResult{URL: rawURL, Data: data, Elapsed: time.Since(start)}, nil
}
