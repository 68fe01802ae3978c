package pjax

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/partial-coffee/go-pjax/connector"
)

// FileConfig is the YAML shape of a service configuration file.
type FileConfig struct {
	// Connector names the client convention: pjax, htmx, turbo or unpoly.
	Connector string `yaml:"connector"`
	// UseURLQuery lets the container arrive as a query parameter.
	UseURLQuery bool `yaml:"use_url_query"`
	// Version is advertised on partial responses.
	Version string `yaml:"version"`
	// UseCache enables the parsed-template cache.
	UseCache bool `yaml:"use_cache"`
	// Suffix overrides the template-name suffix used by Pjaxify.
	Suffix string `yaml:"suffix"`
}

// LoadConfig reads a YAML service configuration from path.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return ParseConfig(b)
}

// ParseConfig builds a service Config from YAML.
func ParseConfig(b []byte) (*Config, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	connCfg := &connector.Config{
		UseURLQuery: fc.UseURLQuery,
		Version:     fc.Version,
	}

	var conn connector.Connector
	switch fc.Connector {
	case "", "pjax":
		conn = connector.NewPJAX(connCfg)
	case "htmx":
		conn = connector.NewHTMX(connCfg)
	case "turbo":
		conn = connector.NewTurbo(connCfg)
	case "unpoly":
		conn = connector.NewUnpoly(connCfg)
	default:
		return nil, fmt.Errorf("unknown connector %q", fc.Connector)
	}

	return &Config{
		Connector: conn,
		UseCache:  fc.UseCache,
		Suffix:    fc.Suffix,
	}, nil
}
