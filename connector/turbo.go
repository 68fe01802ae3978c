package connector

// Turbo marks frame navigation with a single Turbo-Frame header carrying the
// frame id, so the request header and the container header are the same.
type Turbo struct {
	base
}

func NewTurbo(c *Config) Connector {
	return &Turbo{
		base: base{
			config:          c,
			requestHeader:   "Turbo-Frame",
			containerHeader: "Turbo-Frame",
		},
	}
}
