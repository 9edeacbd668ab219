package parser

import (
	"errors"
	"fmt"
)

// MaxNameLength limits element, attribute and processing instruction
// target names.
const MaxNameLength = 50000

var (
	ErrAttrValueNotFinished         = errors.New("attribute value must end with a matching quote")
	ErrAttrValueRequired            = errors.New("attribute value must start with a quote")
	ErrCDATANotFinished             = errors.New("invalid CDATA section (premature end)")
	ErrCommentNotFinished           = errors.New("comment not terminated")
	ErrDocTypeNotFinished           = errors.New("doctype not finished")
	ErrDocumentEnd                  = errors.New("extra content at document end")
	ErrEmptyDocument                = errors.New("start tag expected, '<' not found")
	ErrEqualSignRequired            = errors.New("'=' was required here")
	ErrGtRequired                   = errors.New("'>' was required here")
	ErrHyphenInComment              = errors.New("'--' not allowed in comment")
	ErrInvalidChar                  = errors.New("invalid char")
	ErrInvalidCharRef               = errors.New("invalid character reference")
	ErrInvalidEncodingName          = errors.New("invalid encoding name")
	ErrInvalidProcessingInstruction = errors.New("invalid processing instruction")
	ErrInvalidQName                 = errors.New("invalid qualified name")
	ErrInvalidVersionNum            = errors.New("invalid version")
	ErrInvalidXMLDecl               = errors.New("invalid XML declaration")
	ErrLtInAttribute                = errors.New("'<' not allowed in attribute value")
	ErrMisplacedCDATAEnd            = errors.New("misplaced CDATA end ']]>'")
	ErrMisplacedXMLDecl             = errors.New("XML declaration allowed only at the start of the document")
	ErrNameRequired                 = errors.New("name is required")
	ErrNameTooLong                  = errors.New("name is too long")
	ErrPrematureEOF                 = errors.New("end of document reached")
	ErrSemicolonRequired            = errors.New("';' is required")
	ErrSpaceRequired                = errors.New("space required")
	ErrTagNameMismatch              = errors.New("opening and ending tag mismatch")
	ErrUndeclaredEntity             = errors.New("undeclared entity")
	ErrUnboundPrefix                = errors.New("namespace prefix is not bound")
	ErrInvalidNamespaceDecl         = errors.New("invalid namespace declaration")
)

// ErrParseError carries the position of a tokenizer failure.
type ErrParseError struct {
	Column     int
	Err        error
	Location   int
	Line       string
	LineNumber int
}

func (e ErrParseError) Error() string {
	return fmt.Sprintf(
		"%s at line %d, column %d\n -> '%s' <-- around here",
		e.Err,
		e.LineNumber,
		e.Column,
		e.Line,
	)
}

func (e ErrParseError) Unwrap() error {
	return e.Err
}
