package pjax

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
	"unicode"
)

var DefaultTemplateFuncMap = template.FuncMap{
	"safeHTML": safeHTML,
	// String functions
	"upper":      strings.ToUpper,
	"lower":      strings.ToLower,
	"trimSpace":  strings.TrimSpace,
	"trimSuffix": strings.TrimSuffix,
	"trimPrefix": strings.TrimPrefix,
	"contains":   strings.Contains,
	"hasPrefix":  strings.HasPrefix,
	"hasSuffix":  strings.HasSuffix,
	"replace":    strings.Replace,
	"split":      strings.Split,
	"join":       strings.Join,
	"title":      title,
	"ucfirst":    ucfirst,
	"urlencode":  url.QueryEscape,
	"urldecode":  url.QueryUnescape,

	// Time functions
	"now":        time.Now,
	"formatDate": formatDate,

	// Map functions
	"hasKey": hasKey,
	"keys":   keys,

	// Debug functions
	"debug": debug,
}

// copyFuncMap returns a fresh copy of the default function map so a page can
// add functions without touching the shared map.
func copyFuncMap() template.FuncMap {
	out := make(template.FuncMap, len(DefaultTemplateFuncMap))
	for k, v := range DefaultTemplateFuncMap {
		out[k] = v
	}
	return out
}

func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

// ucfirst capitalizes the first character of the string.
func ucfirst(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// title capitalizes the first character of each word in the string.
func title(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	capitalizeNext := true
	for i := range runes {
		if unicode.IsSpace(runes[i]) {
			capitalizeNext = true
		} else if capitalizeNext {
			runes[i] = unicode.ToUpper(runes[i])
			capitalizeNext = false
		} else {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}

// hasKey checks if the map has the key.
func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

// keys returns the keys of the map.
func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// formatDate formats the time with the layout.
func formatDate(t time.Time, layout string) string {
	return t.Format(layout)
}

// debug returns the string representation of the value.
func debug(v any) string {
	return fmt.Sprintf("%+v", v)
}
