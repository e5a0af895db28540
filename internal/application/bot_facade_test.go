package application_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"telegram-file-relay/internal/application"
	"telegram-file-relay/internal/domain/model"
	"telegram-file-relay/internal/domain/ports/adapter"
	"telegram-file-relay/internal/infra/i18n"
)

type mockRelayUC struct {
	relayed   []model.FileSource
	announced []model.FileSource
	delivered []int
}

func (m *mockRelayUC) Relay(ctx context.Context, chat adapter.Chat, src model.FileSource) error {
	m.relayed = append(m.relayed, src)
	return nil
}

func (m *mockRelayUC) Announce(ctx context.Context, chat adapter.Chat, src model.FileSource) (int, error) {
	m.announced = append(m.announced, src)
	return 40 + len(m.announced), nil
}

func (m *mockRelayUC) Deliver(ctx context.Context, chat adapter.Chat, src model.FileSource, statusID int) error {
	m.delivered = append(m.delivered, statusID)
	return nil
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	fsys := fstest.MapFS{
		"locales/test.yaml": {Data: []byte(`start_message: "hi from %s"
help_message: "help"
id_message: "id=%d"
status_message: "now=%s up=%s files=%d"
`)},
	}
	tr, err := i18n.NewTranslator(fsys, "test")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}

func newFacade(t *testing.T, relay *mockRelayUC) *application.BotFacade {
	sources := []model.FileSource{
		{Command: "price", URL: "https://example.com/p.xlsx", FileName: "p.xlsx"},
		{Command: "stock", FileName: "s.xlsx"},
		{Command: "price_MP", URL: "ftp://example.com/mp.xlsx", FileName: "mp.xlsx"},
	}
	return application.NewBotFacade(relay, newTestTranslator(t), "TestBot", sources, time.Now().Add(-2*time.Hour))
}

func TestBotFacadeTextCommands(t *testing.T) {
	f := newFacade(t, &mockRelayUC{})

	if got := f.HandleStart(); got != "hi from TestBot" {
		t.Errorf("start = %q", got)
	}
	if got := f.HandleHelp(); got != "help" {
		t.Errorf("help = %q", got)
	}
	if got := f.HandleID(123456789); got != "id=123456789" {
		t.Errorf("id = %q", got)
	}

	status := f.HandleStatus()
	if !strings.Contains(status, "up=2h0m0s") || !strings.HasSuffix(status, "files=2") {
		t.Errorf("status = %q", status)
	}
	info := f.Status()
	if time.Since(info.Now) > time.Minute {
		t.Errorf("status time should be current, got %s", info.Now)
	}
}

func TestBotFacadeRelay(t *testing.T) {
	relay := &mockRelayUC{}
	f := newFacade(t, relay)
	ctx := context.Background()

	for _, cmd := range []string{"price", "/stock", "PRICE_mp"} {
		if err := f.HandleRelay(ctx, nil, cmd); err != nil {
			t.Fatalf("relay %s: %v", cmd, err)
		}
	}
	if len(relay.relayed) != 3 {
		t.Fatalf("expected 3 relays, got %d", len(relay.relayed))
	}
	if relay.relayed[2].FileName != "mp.xlsx" {
		t.Errorf("case-insensitive lookup failed: %+v", relay.relayed[2])
	}

	if err := f.HandleRelay(ctx, nil, "unknown"); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if len(f.Sources()) != 3 {
		t.Errorf("sources = %d", len(f.Sources()))
	}
}

func TestBotFacadeAnnounceThenDeliver(t *testing.T) {
	relay := &mockRelayUC{}
	f := newFacade(t, relay)
	ctx := context.Background()

	id, err := f.AnnounceRelay(ctx, nil, "/PRICE")
	if err != nil {
		t.Fatalf("announce: %v", err)
	}
	if id != 41 || len(relay.announced) != 1 || relay.announced[0].Command != "price" {
		t.Fatalf("unexpected announce: id=%d %+v", id, relay.announced)
	}
	if err := f.DeliverRelay(ctx, nil, "price", id); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(relay.delivered) != 1 || relay.delivered[0] != 41 {
		t.Errorf("deliver got status ids %v", relay.delivered)
	}
	if _, err := f.AnnounceRelay(ctx, nil, "nope"); err == nil {
		t.Error("expected error for unknown command")
	}
}
