package connector

import "net/http"

type Unpoly struct {
	base
}

func NewUnpoly(c *Config) Connector {
	return &Unpoly{
		base: base{
			config:          c,
			requestHeader:   "X-Up-Version",
			containerHeader: "X-Up-Target",
		},
	}
}

func (u *Unpoly) IsPartial(r *http.Request) bool {
	return r.Header.Get(u.containerHeader) != ""
}

func (u *Unpoly) WriteResponseHeaders(w http.ResponseWriter, r *http.Request) {
	// Unpoly expects the server to echo the target it honored.
	if target := r.Header.Get(u.containerHeader); target != "" {
		w.Header().Set("X-Up-Target", target)
	}
}
