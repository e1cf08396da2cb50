package model

import "testing"

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Suggest.Limit != 5 {
		t.Errorf("expected default limit 5, got %d", cfg.Suggest.Limit)
	}
	if len(cfg.Vocabulary.Sources) != 1 || cfg.Vocabulary.Sources[0] != "builtin" {
		t.Errorf("expected builtin default source, got %v", cfg.Vocabulary.Sources)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"no sources", func(c *Config) { c.Vocabulary.Sources = nil }, true},
		{"zero workers", func(c *Config) { c.Vocabulary.LoadWorkers = 0 }, true},
		{"zero limit", func(c *Config) { c.Suggest.Limit = 0 }, true},
		{"negative body limit", func(c *Config) { c.HTTP.MaxBodyBytes = -1 }, true},
		{"zero rate", func(c *Config) { c.RateLimiting.RequestsPerSecond = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategory_RankAndLabel(t *testing.T) {
	tests := []struct {
		cat   Category
		rank  int
		label string
	}{
		{CategorySimilarity, 0, "Similarity/Equivalence"},
		{CategoryCausality, 1, "Causality/Temporal"},
		{CategoryContainment, 2, "Containment/Structure"},
		{CategoryExpression, 3, "Expression/Properties"},
		{CategorySpecial, 4, "Special"},
		{Category("XY-9"), 5, "XY-9"},
	}

	for _, tt := range tests {
		if got := tt.cat.Rank(); got != tt.rank {
			t.Errorf("%s.Rank() = %d, want %d", tt.cat, got, tt.rank)
		}
		if got := tt.cat.Label(); got != tt.label {
			t.Errorf("%s.Label() = %q, want %q", tt.cat, got, tt.label)
		}
	}
}

func TestNormalizePhrase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"(leads to)", "leads to"},
		{"( Leads To )", "leads to"},
		{"leads to", "leads to"},
		{"  (NB)  ", "nb"},
		{"(e.g.)", "e.g."},
		{"()", ""},
	}

	for _, tt := range tests {
		if got := NormalizePhrase(tt.in); got != tt.want {
			t.Errorf("NormalizePhrase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
