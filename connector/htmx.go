package connector

import (
	"net/http"
)

type HTMX struct {
	base

	boostedHeader               string
	historyRestoreRequestHeader string
}

func NewHTMX(c *Config) Connector {
	return &HTMX{
		base: base{
			config:          c,
			requestHeader:   "HX-Request",
			containerHeader: "HX-Target",
		},
		boostedHeader:               "HX-Boosted",
		historyRestoreRequestHeader: "HX-History-Restore-Request",
	}
}

func (h *HTMX) IsPartial(r *http.Request) bool {
	hxRequest := r.Header.Get(h.requestHeader)
	hxBoosted := r.Header.Get(h.boostedHeader)
	hxHistoryRestoreRequest := r.Header.Get(h.historyRestoreRequestHeader)

	// History restoration needs the full page back.
	return (hxRequest == "true" || hxBoosted == "true") && hxHistoryRestoreRequest != "true"
}

func (h *HTMX) WriteResponseHeaders(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(h.boostedHeader) == "true" {
		w.Header().Set("HX-Push-Url", r.URL.RequestURI())
	}
}
