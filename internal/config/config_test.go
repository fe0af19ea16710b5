package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestDecodeAppliesDefaults(t *testing.T) {
	v := newTestViper()
	v.Set("security.jwtsecret", "secret")

	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Security.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.Security.BcryptCost)
	}
	if cfg.Security.CookieName != "accessToken" {
		t.Fatalf("unexpected cookie name %q", cfg.Security.CookieName)
	}
	if cfg.Security.CookieMaxAge != 24*time.Hour {
		t.Fatalf("unexpected cookie max age %s", cfg.Security.CookieMaxAge)
	}
	if cfg.Feed.Limit != 5 {
		t.Fatalf("expected feed limit 5, got %d", cfg.Feed.Limit)
	}
	if !cfg.Features.NotifySelfLike {
		t.Fatalf("expected self-like notifications enabled by default")
	}
	if cfg.Store.Timeout != 5*time.Second {
		t.Fatalf("unexpected store timeout %s", cfg.Store.Timeout)
	}
}

func TestDecodeSplitsCORSOrigins(t *testing.T) {
	v := newTestViper()
	v.Set("security.jwtsecret", "secret")
	v.Set("allowcorsorigins", "https://a.example,https://b.example")

	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cfg.AllowCORSOrigins) != 2 || cfg.AllowCORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.AllowCORSOrigins)
	}
}

func TestDecodeRequiresSecret(t *testing.T) {
	_, err := decode(newTestViper())
	if err == nil || !strings.Contains(err.Error(), "jwtsecret") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}
