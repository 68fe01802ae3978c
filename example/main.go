package main

import (
	"embed"
	"log"
	"net/http"

	"github.com/partial-coffee/go-pjax"
)

//go:embed templates
var templates embed.FS

func main() {
	cfg, err := pjax.LoadConfig("config.yaml")
	if err != nil {
		log.Fatal(err)
	}
	cfg.FS = templates

	svc := pjax.NewService(cfg)
	svc.AddData("SiteName", "go-pjax example")

	mux := http.NewServeMux()

	// Block capture: pjax requests get only the content block, prefixed
	// with the page title.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		page := pjax.New("templates/base.html", "templates/home.html").
			Block("content").
			TitleBlock("title").
			AddData("Text", "Welcome to the home page")

		_ = svc.NewLayout().Set(page).WriteWithRequest(r.Context(), w, r)
	})

	// Alternate template: pjax requests render about-pjax.html instead.
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		page := pjax.New("templates/about.html").
			PJAXTemplates("templates/about-pjax.html").
			AddData("Title", "About")

		_ = svc.NewLayout().Set(page).WriteWithRequest(r.Context(), w, r)
	})

	// Fragment extraction: no block markup needed, the container element is
	// pulled out of the fully rendered page.
	mux.HandleFunc("/news", func(w http.ResponseWriter, r *http.Request) {
		page := pjax.New("templates/news.html").
			Fragment("#main").
			AddData("Items", []string{"first", "second", "third"})

		_ = svc.NewLayout().Set(page).WriteWithRequest(r.Context(), w, r)
	})

	handler := pjax.Middleware(svc.Connector())(mux)

	log.Println("listening on :8080")
	log.Fatal(http.ListenAndServe(":8080", handler))
}
