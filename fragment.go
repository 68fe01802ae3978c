package pjax

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"
)

// ExtractFragment returns the inner HTML of the element whose id matches
// container in an already rendered page. The container may carry a leading
// "#", which is how jquery-pjax sends selectors in X-PJAX-Container.
func ExtractFragment(doc template.HTML, container string) (template.HTML, error) {
	id := strings.TrimPrefix(strings.TrimSpace(container), "#")
	if id == "" {
		return "", fmt.Errorf("no fragment container requested")
	}

	root, err := html.Parse(strings.NewReader(string(doc)))
	if err != nil {
		return "", fmt.Errorf("error parsing rendered page: %w", err)
	}

	node := findByID(root, id)
	if node == nil {
		return "", fmt.Errorf("pjax fragment %q not found in rendered page", container)
	}

	var buf bytes.Buffer
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("error rendering fragment %q: %w", container, err)
		}
	}

	return template.HTML(buf.String()), nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}

	return nil
}
