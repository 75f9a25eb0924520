// Package document holds the annotation document passed through to the
// document store.
package document

import (
	"fmt"
	"regexp"
	"time"

	"github.com/annodex-io/annodex/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Document is an annotated document (immutable value object). Tags are
// free-form string annotations, fields numeric ones; both are queryable.
type Document struct {
	id        string
	title     string
	text      string
	tags      map[string]string
	fields    map[string]float64
	updatedAt int64
}

// New validates and creates a Document.
func New(id, title, text string, tags map[string]string, fields map[string]float64) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("%w: id is required", domain.ErrInvalidDocument)
	}
	if len(id) > 128 || !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("%w: bad id %q", domain.ErrInvalidDocument, id)
	}
	if tags == nil {
		tags = map[string]string{}
	}
	if fields == nil {
		fields = map[string]float64{}
	}
	return Document{
		id:        id,
		title:     title,
		text:      text,
		tags:      tags,
		fields:    fields,
		updatedAt: time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, title, text string, tags map[string]string, fields map[string]float64, updatedAt int64) Document {
	return Document{id: id, title: title, text: text, tags: tags, fields: fields, updatedAt: updatedAt}
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Title returns the document title.
func (d Document) Title() string { return d.title }

// Text returns the document body.
func (d Document) Text() string { return d.text }

// Tags returns the string annotations.
func (d Document) Tags() map[string]string { return d.tags }

// Fields returns the numeric annotations.
func (d Document) Fields() map[string]float64 { return d.fields }

// UpdatedAt returns the last write timestamp (unix millis).
func (d Document) UpdatedAt() int64 { return d.updatedAt }

// WithoutText returns a metadata-only copy, served to METAREADER callers.
func (d Document) WithoutText() Document {
	d.text = ""
	return d
}
