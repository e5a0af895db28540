//go:build !integration

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestRelayCounters(t *testing.T) {
	before := testutil.ToFloat64(relayDownloadsTotal.WithLabelValues("price", "sent"))
	IncRelay(" Price ", "SENT")
	after := testutil.ToFloat64(relayDownloadsTotal.WithLabelValues("price", "sent"))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestServerExposesMetrics(t *testing.T) {
	MustRegister()
	MustRegister() // idempotent
	SetBuildInfo("test", "abc")
	ObserveDownload("stock", 1024, time.Second, true)

	logger := zerolog.New(io.Discard)
	srv := NewServer(0, &logger)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"build_info", "relay_download_bytes"} {
		if !strings.Contains(body, name) {
			t.Errorf("metric %s not exposed", name)
		}
	}
}

func TestSetBuildInfoKeepsOneSeries(t *testing.T) {
	SetBuildInfo("v1", "aaa")
	SetBuildInfo("v2", "bbb")
	if n := testutil.CollectAndCount(filerelayBuildInfo); n != 1 {
		t.Fatalf("expected a single build info series, got %d", n)
	}
	if v := testutil.ToFloat64(filerelayBuildInfo.WithLabelValues("v2", "bbb", runtime.Version())); v != 1 {
		t.Errorf("build info = %v", v)
	}
}

func TestCommandLabelsAreNormalised(t *testing.T) {
	before := testutil.ToFloat64(telegramCommandsReceivedTotal.WithLabelValues("price_mp"))
	IncTelegramCommand("/Price_MP")
	IncTelegramCommand("price_mp ")
	if got := testutil.ToFloat64(telegramCommandsReceivedTotal.WithLabelValues("price_mp")) - before; got != 2 {
		t.Fatalf("expected both spellings on one series, delta %v", got)
	}
}
