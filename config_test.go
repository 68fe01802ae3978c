package pjax

import (
	"strings"
	"testing"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("connector: pjax\nuse_url_query: true\nuse_cache: true\nversion: v3\nsuffix: .partial\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Connector.RequestHeader() != "X-PJAX" {
		t.Errorf("expected X-PJAX request header, got %s", cfg.Connector.RequestHeader())
	}

	if !cfg.UseCache {
		t.Error("expected UseCache to be true")
	}

	if cfg.Suffix != ".partial" {
		t.Errorf("expected suffix .partial, got %s", cfg.Suffix)
	}
}

func TestParseConfigConnectors(t *testing.T) {
	cases := []struct {
		connector string
		header    string
	}{
		{"", "X-PJAX"},
		{"pjax", "X-PJAX"},
		{"htmx", "HX-Request"},
		{"turbo", "Turbo-Frame"},
		{"unpoly", "X-Up-Version"},
	}

	for _, c := range cases {
		cfg, err := ParseConfig([]byte("connector: " + c.connector + "\n"))
		if err != nil {
			t.Errorf("ParseConfig(%q) returned error: %v", c.connector, err)
			continue
		}

		if got := cfg.Connector.RequestHeader(); got != c.header {
			t.Errorf("ParseConfig(%q) request header = %s; want %s", c.connector, got, c.header)
		}
	}
}

func TestParseConfigUnknownConnector(t *testing.T) {
	_, err := ParseConfig([]byte("connector: blink\n"))
	if err == nil || !strings.Contains(err.Error(), `unknown connector "blink"`) {
		t.Errorf("expected unknown connector error, got %v", err)
	}
}

func TestParseConfigInvalidYAML(t *testing.T) {
	_, err := ParseConfig([]byte("connector: [pjax\n"))
	if err == nil {
		t.Error("expected error for invalid yaml")
	}
}
