package sax

import "context"

type SetDocumentLocatorFunc func(context.Context, DocumentLocator) error
type StartDocumentFunc func(context.Context) error
type EndDocumentFunc func(context.Context) error
type XMLDeclFunc func(context.Context, string, string, bool) error
type DocTypeFunc func(context.Context, string) error
type ProcessingInstructionFunc func(context.Context, string, string) error
type StartElementFunc func(context.Context, ParsedElement) error
type EndElementFunc func(context.Context, ParsedElement) error
type CharactersFunc func(context.Context, []byte) error
type CDATABlockFunc func(context.Context, []byte) error
type CommentFunc func(context.Context, []byte) error
