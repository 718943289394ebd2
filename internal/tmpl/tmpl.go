// Package tmpl implements small "{field}" templates over a fixed set of
// field names.
//
// Templates are parsed once against the list of fields the caller can
// resolve, so a typo such as "{progres}" is reported before anything is
// rendered. Literal braces are written as "{{" and "}}".
//
//	t, err := tmpl.Parse("{progress}% [{time}s]", "idx", "tot", "progress", "time")
//	if err != nil {
//	    return err
//	}
//	line := t.Execute(func(field string) string { ... })
package tmpl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnclosed is returned when a "{" has no matching "}".
	ErrUnclosed = errors.New("unclosed placeholder")
	// ErrStrayBrace is returned for a single "}" outside a placeholder.
	// Literal braces must be doubled.
	ErrStrayBrace = errors.New("single '}' outside a placeholder")
)

// legacyPrefix is accepted in front of field names so "{o.progress}" and
// "{progress}" are equivalent.
const legacyPrefix = "o."

// FieldError reports a placeholder naming a field that is not available.
type FieldError struct {
	Template string
	Field    string
	Allowed  []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("template %q references unknown field %q (allowed: %s)",
		e.Template, e.Field, strings.Join(e.Allowed, ", "))
}

type part struct {
	literal string
	field   string
}

// Template is a parsed template. The zero value renders as an empty string.
type Template struct {
	src   string
	parts []part
}

// Parse parses src, accepting only placeholders listed in fields.
func Parse(src string, fields ...string) (*Template, error) {
	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
	}

	t := &Template{src: src}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.parts = append(t.parts, part{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '{' && i+1 < len(src) && src[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(src) && src[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(src[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("template %q at offset %d: %w", src, i, ErrUnclosed)
			}
			name := strings.TrimSpace(src[i+1 : i+1+end])
			name = strings.TrimPrefix(name, legacyPrefix)
			if !allowed[name] {
				return nil, &FieldError{Template: src, Field: name, Allowed: fields}
			}
			flush()
			t.parts = append(t.parts, part{field: name})
			i += end + 1
		case c == '}':
			return nil, fmt.Errorf("template %q at offset %d: %w", src, i, ErrStrayBrace)
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	return t, nil
}

// MustParse is like Parse but panics on error. Intended for package-level
// templates built from constants.
func MustParse(src string, fields ...string) *Template {
	t, err := Parse(src, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// Execute renders the template, resolving each placeholder through lookup.
func (t *Template) Execute(lookup func(field string) string) string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range t.parts {
		if p.field != "" {
			b.WriteString(lookup(p.field))
			continue
		}
		b.WriteString(p.literal)
	}
	return b.String()
}

// Fields returns the placeholders used by the template in order of appearance.
func (t *Template) Fields() []string {
	if t == nil {
		return nil
	}
	var out []string
	for _, p := range t.parts {
		if p.field != "" {
			out = append(out, p.field)
		}
	}
	return out
}

// String returns the source the template was parsed from.
func (t *Template) String() string {
	if t == nil {
		return ""
	}
	return t.src
}
