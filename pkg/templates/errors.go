package templates

import "errors"

var (
	ErrParseTemplates  = errors.New("templates: failed to parse template set")
	ErrUnknownCategory = errors.New("templates: unknown category")
	ErrMissingFallback = errors.New("templates: fallback category has no template")
)
