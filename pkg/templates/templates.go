package templates

import (
	_ "embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// TimestampLayout formats the {TIMESTAMP} placeholder.
const TimestampLayout = "02.01.2006 15:04"

//go:embed default.yaml
var defaultYAML []byte

// Template is a subject/body pair with placeholders.
type Template struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

// Message is a rendered template.
type Message struct {
	Subject string
	Body    string
}

type document struct {
	Fallback   notifications.Category              `yaml:"fallback"`
	Categories map[notifications.Category]Template `yaml:"categories"`
}

// Set maps categories to templates. Categories without their own template
// render with the fallback one.
type Set struct {
	fallback   notifications.Category
	categories map[notifications.Category]Template
	now        func() time.Time
}

// Option configures a Set.
type Option func(*Set)

// WithClock overrides the time used for {TIMESTAMP}.
func WithClock(now func() time.Time) Option {
	return func(s *Set) {
		if now != nil {
			s.now = now
		}
	}
}

// Parse reads a YAML template set.
func Parse(data []byte, opts ...Option) (*Set, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseTemplates, err)
	}

	if doc.Fallback == "" {
		doc.Fallback = notifications.CategorySystem
	}
	for c := range doc.Categories {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
	}
	if _, ok := doc.Categories[doc.Fallback]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingFallback, doc.Fallback)
	}

	s := &Set{
		fallback:   doc.Fallback,
		categories: doc.Categories,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load reads a YAML template set from fsys.
func Load(fsys fs.FS, path string, opts ...Option) (*Set, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseTemplates, err)
	}
	return Parse(data, opts...)
}

// Default returns the built-in template set.
func Default(opts ...Option) *Set {
	s, err := Parse(defaultYAML, opts...)
	if err != nil {
		panic(fmt.Sprintf("templates: built-in set is invalid: %v", err))
	}
	return s
}

// Lookup returns the template for c, or the fallback template.
func (s *Set) Lookup(c notifications.Category) Template {
	if t, ok := s.categories[c]; ok {
		return t
	}
	return s.categories[s.fallback]
}

// Render fills the template for n's category.
func (s *Set) Render(n notifications.Notification) Message {
	t := s.Lookup(n.Category)
	r := s.replacer(n)
	return Message{
		Subject: r.Replace(t.Subject),
		Body:    r.Replace(t.Body),
	}
}

func (s *Set) replacer(n notifications.Notification) *strings.Replacer {
	pairs := []string{
		"{TITLE}", n.Title,
		"{MESSAGE}", n.Body,
		"{TIMESTAMP}", s.now().Format(TimestampLayout),
		"{CATEGORY}", cases.Title(language.English).String(string(n.Category)),
	}
	for k, v := range n.ExtraData {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...)
}
