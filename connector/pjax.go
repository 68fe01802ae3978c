package connector

import "net/http"

// PJAX speaks the jquery-pjax convention: requests carry X-PJAX and
// X-PJAX-Container, responses carry X-PJAX-URL and optionally
// X-PJAX-Version.
type PJAX struct {
	base
}

func NewPJAX(c *Config) Connector {
	return &PJAX{
		base: base{
			config:          c,
			requestHeader:   "X-PJAX",
			containerHeader: "X-PJAX-Container",
		},
	}
}

func (p *PJAX) WriteResponseHeaders(w http.ResponseWriter, r *http.Request) {
	// jquery-pjax reads X-PJAX-URL to detect redirects and rewrite the
	// browser history entry.
	w.Header().Set("X-PJAX-URL", r.URL.RequestURI())

	if v := p.config.version(); v != "" {
		w.Header().Set("X-PJAX-Version", v)
	}
}
