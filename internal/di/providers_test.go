package di

import (
	"testing"
	"time"

	"DerivPulse/pkg/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "console"
	cfg.Logging.Output = "stderr"
	cfg.HTTPClient.Timeout = 5 * time.Second
	cfg.Allowlist.Enabled = true
	cfg.Allowlist.APIURL = "https://example.invalid/ranking"
	cfg.Allowlist.Size = 500
	cfg.Allowlist.MinSize = 100
	cfg.Allowlist.TTL = time.Hour
	return cfg
}

// Without Redis the allowlist still gets a warm store, backed by the
// in-process cache.
func TestProvideAllowlistWithoutRedis(t *testing.T) {
	cfg := testConfig()
	log, err := ProvideLogger(cfg)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	allow := ProvideAllowlist(cfg, ProvideHTTPClient(cfg), nil, log)
	if allow == nil {
		t.Fatalf("allowlist nil with allowlist enabled")
	}
}

func TestProvideAllowlistDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Allowlist.Enabled = false
	log, err := ProvideLogger(cfg)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if allow := ProvideAllowlist(cfg, ProvideHTTPClient(cfg), nil, log); allow != nil {
		t.Fatalf("allowlist built while disabled")
	}
}
