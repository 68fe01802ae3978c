package connector

import "net/http"

type (
	// Connector translates one client library's header convention into the
	// questions the renderer needs answered.
	Connector interface {
		// IsPartial reports whether r is a partial-page navigation request.
		IsPartial(r *http.Request) bool
		// ContainerValue returns the container the client wants refreshed,
		// or "" if the client did not name one.
		ContainerValue(r *http.Request) string

		// RequestHeader is the header marking partial requests.
		RequestHeader() string
		// ContainerHeader is the header carrying the container value.
		ContainerHeader() string

		// WriteResponseHeaders sets the response headers the client library
		// expects on a partial response.
		WriteResponseHeaders(w http.ResponseWriter, r *http.Request)
	}

	Config struct {
		// UseURLQuery lets the container arrive as the "_pjax" query
		// parameter when the header is absent.
		UseURLQuery bool
		// Version is advertised on partial responses so clients can force a
		// full reload after a deploy.
		Version string
	}

	base struct {
		config          *Config
		requestHeader   string
		containerHeader string
	}
)

func (x *base) IsPartial(r *http.Request) bool {
	return r.Header.Get(x.requestHeader) != ""
}

func (x *base) RequestHeader() string {
	return x.requestHeader
}

func (x *base) ContainerHeader() string {
	return x.containerHeader
}

func (x *base) ContainerValue(r *http.Request) string {
	if container := r.Header.Get(x.containerHeader); container != "" {
		return container
	}

	if x.config.useURLQuery() && r.URL != nil {
		return r.URL.Query().Get("_pjax")
	}

	return ""
}

func (x *base) WriteResponseHeaders(_ http.ResponseWriter, _ *http.Request) {}

func (c *Config) useURLQuery() bool {
	if c == nil {
		return false
	}

	return c.UseURLQuery
}

func (c *Config) version() string {
	if c == nil {
		return ""
	}

	return c.Version
}
