package pjax

import "context"

var (
	// VersionKey is the context key under which a Versioner travels.
	VersionKey = "pjax-version"
)

// Versioner reports the current layout version. When it changes between a
// client's first load and a later partial request, clients such as
// jquery-pjax fall back to a full reload.
type Versioner interface {
	Version(ctx context.Context) string
}

func getVersioner(ctx context.Context) Versioner {
	if v, ok := ctx.Value(VersionKey).(Versioner); ok {
		return v
	}

	return StaticVersion("")
}

// StaticVersion is a Versioner with a fixed value.
type StaticVersion string

func (s StaticVersion) Version(_ context.Context) string {
	return string(s)
}

// WithVersion stores a Versioner on the context.
func WithVersion(ctx context.Context, v Versioner) context.Context {
	return context.WithValue(ctx, VersionKey, v)
}
