package pjax

import "strings"

// DefaultSuffix is inserted before the extension when deriving the
// partial-request twin of a template name.
const DefaultSuffix = "-pjax"

// Pjaxify derives the template name used for partial requests:
// "list.html" becomes "list-pjax.html". A name without an extension gets the
// suffix appended. An empty suffix means DefaultSuffix.
func Pjaxify(name, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}

	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return name + suffix
	}

	return name[:dot] + suffix + name[dot:]
}

// PjaxifyAll derives the partial-request twin of every name in the set.
func PjaxifyAll(names []string, suffix string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = Pjaxify(name, suffix)
	}

	return out
}
