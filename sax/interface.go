// Package sax defines the event contract between the template
// tokenizer and whatever consumes its events, usually the tree builder
// in the parser package.
package sax

import (
	"context"
	"errors"
)

// ErrHandlerUnspecified is returned by callback based handlers when no
// function was registered for an event that requires an answer.
var ErrHandlerUnspecified = errors.New("handler unspecified")

// DocumentLocator reports the position of the event currently being
// delivered.
type DocumentLocator interface {
	LineNumber() int
	ColumnNumber() int
}

// ParsedElement is a start or end tag as seen by the tokenizer. Names are
// reported as written in the source; resolving prefixes is left to the
// handler.
type ParsedElement interface {
	Prefix() string
	LocalName() string
	Name() string
	Attributes() []ParsedAttribute
	// IsEmpty reports whether the tag used the self closing form.
	IsEmpty() bool
}

type ParsedAttribute interface {
	Prefix() string
	LocalName() string
	Name() string
	Value() string
}

// Handler receives the tokenizer events. Returning an error from any
// method aborts the parse.
type Handler interface {
	SetDocumentLocator(context.Context, DocumentLocator) error
	StartDocument(context.Context) error
	EndDocument(context.Context) error
	XMLDecl(ctx context.Context, version, encoding string, standalone bool) error
	DocType(ctx context.Context, raw string) error
	ProcessingInstruction(ctx context.Context, target, data string) error
	StartElement(context.Context, ParsedElement) error
	EndElement(context.Context, ParsedElement) error
	Characters(context.Context, []byte) error
	CDATABlock(context.Context, []byte) error
	Comment(context.Context, []byte) error
}
