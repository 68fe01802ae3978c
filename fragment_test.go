package pjax

import (
	"strings"
	"testing"
)

func TestExtractFragment(t *testing.T) {
	doc := `<html><head></head><body><div id="outer"><div id="inner"><p>hi</p></div></div></body></html>`

	t.Run("with selector prefix", func(t *testing.T) {
		out, err := ExtractFragment(safeHTML(doc), "#inner")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if string(out) != `<p>hi</p>` {
			t.Errorf("expected <p>hi</p>, got %s", out)
		}
	})

	t.Run("without selector prefix", func(t *testing.T) {
		out, err := ExtractFragment(safeHTML(doc), "inner")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if string(out) != `<p>hi</p>` {
			t.Errorf("expected <p>hi</p>, got %s", out)
		}
	})

	t.Run("nested content", func(t *testing.T) {
		out, err := ExtractFragment(safeHTML(doc), "#outer")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if string(out) != `<div id="inner"><p>hi</p></div>` {
			t.Errorf("unexpected fragment: %s", out)
		}
	})

	t.Run("missing container", func(t *testing.T) {
		_, err := ExtractFragment(safeHTML(doc), "#nope")
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("empty container", func(t *testing.T) {
		_, err := ExtractFragment(safeHTML(doc), "")
		if err == nil {
			t.Error("expected error for empty container")
		}
	})
}
