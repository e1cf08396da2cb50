package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:8080", "http://secure-proxy:8443", "localhost,.internal.example")

	tests := []struct {
		url  string
		want string
	}{
		{"http://example.com/arrows-LT-1.sst", "http://proxy:8080"},
		{"https://example.com/arrows-LT-1.sst", "http://secure-proxy:8443"},
		{"http://localhost:9000/arrows-NR-0.sst", ""},
		{"https://vocab.internal.example/arrows-CN-2.sst", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, tt.url, nil)
			if err != nil {
				t.Fatalf("NewRequest failed: %v", err)
			}
			got, err := proxy(req)
			if err != nil {
				t.Fatalf("proxy returned error: %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected no proxy, got %s", got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("expected %s, got %v", tt.want, got)
			}
		})
	}
}
