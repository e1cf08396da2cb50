package cli

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfig_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("N4LINT_SUGGEST_LIMIT", "8")
	t.Setenv("N4LINT_CACHE_TTL", "2h")
	t.Setenv("N4LINT_HTTP_RESPECT_ROBOTS", "false")
	bindEnv()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Suggest.Limit != 8 {
		t.Errorf("suggest.limit = %d, want 8", cfg.Suggest.Limit)
	}
	if cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("cache.ttl = %v, want 2h", cfg.Cache.TTL)
	}
	if cfg.HTTP.RespectRobots {
		t.Error("http.respect_robots should be overridden to false")
	}
	if len(cfg.Vocabulary.Sources) != 1 || cfg.Vocabulary.Sources[0] != "builtin" {
		t.Errorf("vocabulary.sources = %v, want [builtin]", cfg.Vocabulary.Sources)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should be valid: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"notes/physics.n4l", "physics"},
		{"my notes.n4l", "my-notes"},
		{"a:b?.n4l", "a_b_"},
		{"/", "_"},
		{".", "document"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	used := make(map[string]int)
	got := []string{
		uniqueSlug("notes", used),
		uniqueSlug("notes", used),
		uniqueSlug("other", used),
		uniqueSlug("notes", used),
	}
	want := []string{"notes", "notes-2", "other", "notes-3"}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d = %q, want %q", i, got[i], want[i])
		}
	}
}
