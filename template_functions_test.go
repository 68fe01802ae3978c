package pjax

import (
	"html/template"
	"testing"
	"time"
)

func TestSafeHTML(t *testing.T) {
	input := "<p>Hello, World!</p>"
	expected := template.HTML("<p>Hello, World!</p>")
	output := safeHTML(input)
	if output != expected {
		t.Errorf("safeHTML(%q) = %q; want %q", input, output, expected)
	}
}

func TestTitle(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"hello world", "Hello World"},
		{"HELLO WORLD", "Hello World"},
		{"", ""},
		{"élan vital", "Élan Vital"},
		{"hello 世界", "Hello 世界"},
	}
	for _, c := range cases {
		output := title(c.input)
		if output != c.expected {
			t.Errorf("title(%q) = %q; want %q", c.input, output, c.expected)
		}
	}
}

func TestUcfirst(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"hello", "Hello"},
		{"", ""},
		{"über", "Über"},
	}
	for _, c := range cases {
		output := ucfirst(c.input)
		if output != c.expected {
			t.Errorf("ucfirst(%q) = %q; want %q", c.input, output, c.expected)
		}
	}
}

func TestHasKey(t *testing.T) {
	m := map[string]any{"a": 1}

	if !hasKey(m, "a") {
		t.Error("expected hasKey to find a")
	}

	if hasKey(m, "b") {
		t.Error("expected hasKey to not find b")
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if got := formatDate(ts, "2006-01-02"); got != "2024-05-01" {
		t.Errorf("formatDate = %q; want 2024-05-01", got)
	}
}

func TestCopyFuncMapIsIndependent(t *testing.T) {
	a := copyFuncMap()
	b := copyFuncMap()

	a["extra"] = func() string { return "x" }

	if _, ok := b["extra"]; ok {
		t.Error("copies of the func map should not share state")
	}

	if _, ok := DefaultTemplateFuncMap["extra"]; ok {
		t.Error("the default func map should not be modified")
	}
}
