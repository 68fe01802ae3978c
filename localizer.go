package pjax

import (
	"context"

	"golang.org/x/text/language"
)

var (
	LocalizerKey     = "localizer"
	LocalizerDefault = &defaultLocalizer{tag: language.AmericanEnglish}
)

type Localizer interface {
	Locale() language.Tag
}

func getLocalizer(ctx context.Context) Localizer {
	if loc, ok := ctx.Value(LocalizerKey).(Localizer); ok {
		return loc
	}
	return LocalizerDefault
}

type defaultLocalizer struct {
	tag language.Tag
}

func (d *defaultLocalizer) Locale() language.Tag {
	return d.tag
}
