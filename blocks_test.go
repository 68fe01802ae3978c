package pjax

import (
	"html/template"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildBlockTemplate(t *testing.T) *template.Template {
	t.Helper()

	tmpl := template.Must(template.New("base.html").Parse(`{{template "nav" .}}<main>{{block "content" .}}default{{end}}</main>`))
	template.Must(tmpl.New("nav").Parse(`<nav>{{template "logo" .}}</nav>`))
	template.Must(tmpl.New("logo").Parse(`<img src="logo.png">`))
	template.Must(tmpl.New("orphan").Parse(`never invoked`))

	return tmpl
}

func TestBlocks(t *testing.T) {
	tmpl := buildBlockTemplate(t)

	got := Blocks(tmpl)

	want := &Node{
		Name: "base.html",
		Nodes: []*Node{
			{
				Name:  "nav",
				Depth: 1,
				Nodes: []*Node{
					{Name: "logo", Depth: 2},
				},
			},
			{Name: "content", Depth: 1},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Blocks() mismatch (-want +got):\n%s", diff)
	}
}

func TestReferencedBlocks(t *testing.T) {
	tmpl := buildBlockTemplate(t)

	refs := referencedBlocks(tmpl)

	for _, name := range []string{"nav", "logo", "content"} {
		if !refs[name] {
			t.Errorf("expected %q to be referenced", name)
		}
	}

	if refs["orphan"] {
		t.Error("orphan should not be referenced")
	}
}

func TestBlocksInsideBranches(t *testing.T) {
	tmpl := template.Must(template.New("base.html").Parse(`{{if .Data}}{{template "a" .}}{{else}}{{template "b" .}}{{end}}{{range .Items}}{{template "c" .}}{{end}}{{with .Thing}}{{template "d" .}}{{end}}`))
	for _, name := range []string{"a", "b", "c", "d"} {
		template.Must(tmpl.New(name).Parse(name))
	}

	refs := referencedBlocks(tmpl)

	for _, name := range []string{"a", "b", "c", "d"} {
		if !refs[name] {
			t.Errorf("expected %q to be referenced", name)
		}
	}
}
