package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lestrrat-go/declari/encoding"
	"github.com/lestrrat-go/declari/internal/stack"
	"github.com/lestrrat-go/declari/sax"
	"github.com/lestrrat-go/pdebug/v3"
	"github.com/lestrrat-go/strcursor"
)

type parserState int

const (
	psStart parserState = iota
	psProlog
	psContent
	psEpilogue
	psEOF
)

// chunkSize bounds how far ahead character data is scanned before the
// scanned run is consumed.
const chunkSize = 256

var predefinedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"apos": "'",
	"quot": `"`,
}

// parserCtx tokenizes a single template and reports what it finds to
// a sax.Handler. It also serves as the handler's DocumentLocator.
type parserCtx struct {
	handler    sax.Handler
	cursor     strcursor.Cursor
	encoding   string
	version    string
	standalone bool
	instate    parserState
	names      stack.Simple[string]

	// position of the construct being reported
	line   int
	column int

	// src is the decoded source. The cursor keeps neither the byte
	// offset nor the number of runes left, so they are tracked here.
	src  []byte
	off  int
	left int
}

var _ sax.DocumentLocator = (*parserCtx)(nil)

func newParserCtx(h sax.Handler) *parserCtx {
	return &parserCtx{handler: h}
}

// init converts the source to UTF-8 and sets up the cursor. The
// declared encoding is looked up before the cursor exists so that line
// numbers refer to the whole source.
func (pctx *parserCtx) init(b []byte) error {
	name, skip := encoding.Sniff(b)
	b = b[skip:]
	if name == "" || encoding.IsUTF8(name) {
		name = declaredEncoding(b)
	}
	decoded, err := encoding.Decode(name, b)
	if err != nil {
		return ErrParseError{Err: err, LineNumber: 1, Column: 1}
	}
	if !utf8.Valid(decoded) {
		return ErrParseError{Err: fmt.Errorf("source is not valid UTF-8 after decoding: %w", ErrInvalidChar), LineNumber: 1, Column: 1}
	}
	pctx.encoding = name
	pctx.src = decoded
	pctx.off = 0
	pctx.left = utf8.RuneCount(decoded)
	pctx.cursor = strcursor.NewRuneCursor(bytes.NewReader(decoded))
	pctx.instate = psStart
	return nil
}

// declaredEncoding peeks at the encoding pseudo attribute of the XML
// declaration, if there is one. Validation happens later, in
// parseXMLDecl.
func declaredEncoding(b []byte) string {
	if !bytes.HasPrefix(b, []byte("<?xml")) {
		return ""
	}
	end := bytes.Index(b, []byte("?>"))
	if end < 0 {
		return ""
	}
	decl := b[:end]
	i := bytes.Index(decl, []byte("encoding"))
	if i < 0 {
		return ""
	}
	rest := bytes.TrimLeft(decl[i+len("encoding"):], " \t\r\n")
	if len(rest) == 0 || rest[0] != '=' {
		return ""
	}
	rest = bytes.TrimLeft(rest[1:], " \t\r\n")
	if len(rest) == 0 || (rest[0] != '"' && rest[0] != '\'') {
		return ""
	}
	q := rest[0]
	rest = rest[1:]
	j := bytes.IndexByte(rest, q)
	if j < 0 {
		return ""
	}
	return string(rest[:j])
}

func (pctx *parserCtx) LineNumber() int {
	return pctx.line
}

func (pctx *parserCtx) ColumnNumber() int {
	return pctx.column
}

func (pctx *parserCtx) mark() {
	pctx.line = pctx.cursor.LineNumber()
	pctx.column = pctx.cursor.Column()
}

func (pctx *parserCtx) error(err error) error {
	var perr ErrParseError
	if errors.As(err, &perr) {
		return err
	}

	return ErrParseError{
		Column:     pctx.cursor.Column(),
		Err:        err,
		Line:       pctx.cursor.Line(),
		LineNumber: pctx.cursor.LineNumber(),
		Location:   pctx.off,
	}
}

// handlerError reports a failure of the sax handler at the position of
// the construct it was given, rather than where the cursor ended up.
func (pctx *parserCtx) handlerError(err error) error {
	if err == nil {
		return nil
	}
	var perr ErrParseError
	if errors.As(err, &perr) {
		return err
	}
	return ErrParseError{
		Column:     pctx.column,
		Err:        err,
		Line:       pctx.cursor.Line(),
		LineNumber: pctx.line,
		Location:   pctx.off,
	}
}

func (pctx *parserCtx) curHasChars(n int) bool {
	return pctx.left >= n
}

func (pctx *parserCtx) curDone() bool {
	return pctx.left <= 0
}

// curPeek returns the n-th rune ahead, 1 being the current one.
func (pctx *parserCtx) curPeek(n int) rune {
	return pctx.cursor.PeekN(n)
}

// curPeekIs is curPeek with a bounds check.
func (pctx *parserCtx) curPeekIs(n int, r rune) bool {
	return pctx.curHasChars(n) && pctx.curPeek(n) == r
}

func (pctx *parserCtx) markEOF() {
	if pctx.curDone() {
		pctx.instate = psEOF
	}
}

// curAdvance moves past n runes, or what is left of the input if that
// is less.
func (pctx *parserCtx) curAdvance(n int) {
	defer pctx.markEOF()
	n = min(n, pctx.left)
	if n <= 0 {
		return
	}
	// the cursor only pops runes it has already read ahead
	pctx.cursor.PeekN(n)
	if err := pctx.cursor.Advance(n); err != nil {
		// the cursor gave up early, e.g. on U+FFFD, which it cannot
		// tell apart from a decoding error
		pctx.off = len(pctx.src)
		pctx.left = 0
		return
	}
	for range n {
		_, w := utf8.DecodeRune(pctx.src[pctx.off:])
		pctx.off += w
	}
	pctx.left -= n
}

func (pctx *parserCtx) curConsume(n int) string {
	start := pctx.off
	pctx.curAdvance(n)
	return string(pctx.src[start:pctx.off])
}

func (pctx *parserCtx) curConsumePrefix(s string) bool {
	if !pctx.cursor.ConsumeString(s) {
		return false
	}
	pctx.off += len(s)
	pctx.left -= utf8.RuneCountInString(s)
	pctx.markEOF()
	return true
}

func (pctx *parserCtx) curHasPrefix(s string) bool {
	return pctx.cursor.HasPrefixString(s)
}

func isBlankCh(c rune) bool {
	return c == 0x20 || (0x9 <= c && c <= 0xa) || c == 0xd
}

func isChar(r rune) bool {
	if r == utf8.RuneError {
		return false
	}

	c := uint32(r)
	if c < 0x100 {
		return (0x9 <= c && c <= 0xa) || c == 0xd || 0x20 <= c
	}
	return (0x100 <= c && c <= 0xd7ff) || (0xe000 <= c && c <= 0xfffd) || (0x10000 <= c && c <= 0x10ffff)
}

func isNameStartChar(r rune) bool {
	return r == '_' || r == ':' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '.' || r == '-' || r == '_' || r == ':' ||
		unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Extender)
}

func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// skipBlanks consumes white space and reports whether there was any.
func (pctx *parserCtx) skipBlanks() bool {
	i := 0
	for pctx.curHasChars(i+1) && isBlankCh(pctx.curPeek(i+1)) {
		i++
	}
	if i > 0 {
		pctx.curAdvance(i)
	}
	return i > 0
}

// scanUntil consumes characters up to and including term. The second
// value is false if the input ended first.
func (pctx *parserCtx) scanUntil(term string) (string, bool, error) {
	var sb strings.Builder
	for !pctx.curDone() {
		if pctx.curConsumePrefix(term) {
			return normalizeNewlines(sb.String()), true, nil
		}
		if c := pctx.curPeek(1); !isChar(c) {
			return "", false, pctx.error(fmt.Errorf("%#x: %w", c, ErrInvalidChar))
		}
		sb.WriteString(pctx.curConsume(1))
	}
	return sb.String(), false, nil
}

// parseDocument is the entry point.
//
//	[1] document ::= prolog element Misc*
//	[22] prolog ::= XMLDecl? Misc* (doctypedecl Misc*)?
func (pctx *parserCtx) parseDocument(ctx context.Context) error {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	h := pctx.handler
	if err := h.SetDocumentLocator(ctx, pctx); err != nil {
		return pctx.error(err)
	}

	pctx.mark()
	if err := h.StartDocument(ctx); err != nil {
		return pctx.handlerError(err)
	}

	if pctx.curHasPrefix("<?xml") && pctx.curHasChars(6) && isBlankCh(pctx.curPeek(6)) {
		if err := pctx.parseXMLDecl(ctx); err != nil {
			return err
		}
	}

	pctx.instate = psProlog
	if err := pctx.parseMisc(ctx); err != nil {
		return err
	}

	if pctx.curHasPrefix("<!DOCTYPE") {
		if err := pctx.parseDocTypeDecl(ctx); err != nil {
			return err
		}
		if err := pctx.parseMisc(ctx); err != nil {
			return err
		}
	}

	if pctx.curDone() || !pctx.curHasPrefix("<") {
		return pctx.error(ErrEmptyDocument)
	}

	pctx.instate = psContent
	if err := pctx.parseElement(ctx); err != nil {
		return err
	}

	pctx.instate = psEpilogue
	if err := pctx.parseMisc(ctx); err != nil {
		return err
	}
	if !pctx.curDone() {
		return pctx.error(ErrDocumentEnd)
	}

	pctx.mark()
	if err := h.EndDocument(ctx); err != nil {
		return pctx.handlerError(err)
	}
	return nil
}

// parseMisc skips white space, comments and processing instructions
// around the root element.
//
//	[27] Misc ::= Comment | PI | S
func (pctx *parserCtx) parseMisc(ctx context.Context) error {
	for {
		pctx.skipBlanks()
		switch {
		case pctx.curHasPrefix("<?"):
			if err := pctx.parsePI(ctx); err != nil {
				return err
			}
		case pctx.curHasPrefix("<!--"):
			if err := pctx.parseComment(ctx); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// parseXMLDecl parses the XML declaration.
//
//	[23] XMLDecl ::= '<?xml' VersionInfo EncodingDecl? SDDecl? S? '?>'
func (pctx *parserCtx) parseXMLDecl(ctx context.Context) error {
	pctx.mark()
	if !pctx.curConsumePrefix("<?xml") {
		return pctx.error(ErrInvalidXMLDecl)
	}
	if !pctx.skipBlanks() {
		return pctx.error(ErrSpaceRequired)
	}

	v, ok, err := pctx.parsePseudoAttribute("version")
	if err != nil {
		return err
	}
	if !ok {
		return pctx.error(fmt.Errorf("version is required: %w", ErrInvalidXMLDecl))
	}
	if !isVersionNum(v) {
		return pctx.error(fmt.Errorf("'%s': %w", v, ErrInvalidVersionNum))
	}
	pctx.version = v

	var declared string
	pctx.skipBlanks()
	if declared, ok, err = pctx.parsePseudoAttribute("encoding"); err != nil {
		return err
	} else if ok {
		if !isEncodingName(declared) {
			return pctx.error(fmt.Errorf("'%s': %w", declared, ErrInvalidEncodingName))
		}
		pctx.skipBlanks()
	}

	sa, ok, err := pctx.parsePseudoAttribute("standalone")
	if err != nil {
		return err
	}
	if ok {
		switch sa {
		case "yes":
			pctx.standalone = true
		case "no":
		default:
			return pctx.error(fmt.Errorf("standalone must be 'yes' or 'no': %w", ErrInvalidXMLDecl))
		}
		pctx.skipBlanks()
	}

	if !pctx.curConsumePrefix("?>") {
		return pctx.error(ErrInvalidXMLDecl)
	}

	return pctx.handlerError(pctx.handler.XMLDecl(ctx, pctx.version, declared, pctx.standalone))
}

// parsePseudoAttribute reads name = "value" inside the XML declaration.
// ok is false when the input does not start with name.
func (pctx *parserCtx) parsePseudoAttribute(name string) (string, bool, error) {
	if !pctx.curConsumePrefix(name) {
		return "", false, nil
	}
	pctx.skipBlanks()
	if !pctx.curConsumePrefix("=") {
		return "", false, pctx.error(ErrEqualSignRequired)
	}
	pctx.skipBlanks()
	v, err := pctx.parseQuotedText()
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (pctx *parserCtx) parseQuotedText() (string, error) {
	q := pctx.curPeek(1)
	if q != '"' && q != '\'' {
		return "", pctx.error(ErrAttrValueRequired)
	}
	pctx.curAdvance(1)
	v, ok, err := pctx.scanUntil(string(q))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", pctx.error(ErrAttrValueNotFinished)
	}
	return v, nil
}

//	[26] VersionNum ::= '1.' [0-9]+
func isVersionNum(v string) bool {
	digits, ok := strings.CutPrefix(v, "1.")
	if !ok || digits == "" {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

//	[81] EncName ::= [A-Za-z] ([A-Za-z0-9._] | '-')*
func isEncodingName(v string) bool {
	for i, c := range v {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '.' || c == '_' || c == '-'):
		default:
			return false
		}
	}
	return v != ""
}

// parseDocTypeDecl hands the whole declaration, internal subset
// included, to the handler verbatim.
func (pctx *parserCtx) parseDocTypeDecl(ctx context.Context) error {
	pctx.mark()
	var sb strings.Builder
	depth := 0
	var quote rune
	for {
		if pctx.curDone() {
			return pctx.error(ErrDocTypeNotFinished)
		}
		c := pctx.curPeek(1)
		sb.WriteString(pctx.curConsume(1))
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == '>' && depth == 0:
			return pctx.handlerError(pctx.handler.DocType(ctx, normalizeNewlines(sb.String())))
		}
	}
}

// parseElement parses the root element and everything inside it. Open
// elements are tracked on a stack instead of recursing, so deeply
// nested templates cannot exhaust the goroutine stack.
//
//	[39] element ::= EmptyElemTag | STag content ETag
//	[43] content ::= CharData? ((element | Reference | CDSect | PI | Comment) CharData?)*
func (pctx *parserCtx) parseElement(ctx context.Context) error {
	if err := pctx.parseStartTag(ctx); err != nil {
		return err
	}

	for pctx.names.Len() > 0 {
		if pctx.curDone() {
			return pctx.error(ErrPrematureEOF)
		}

		var err error
		switch {
		case pctx.curHasPrefix("</"):
			err = pctx.parseEndTag(ctx)
		case pctx.curHasPrefix("<?"):
			err = pctx.parsePI(ctx)
		case pctx.curHasPrefix("<!--"):
			err = pctx.parseComment(ctx)
		case pctx.curHasPrefix("<![CDATA["):
			err = pctx.parseCDSect(ctx)
		case pctx.curHasPrefix("<"):
			if err = ctx.Err(); err == nil {
				err = pctx.parseStartTag(ctx)
			}
		case pctx.curHasPrefix("&"):
			err = pctx.parseContentReference(ctx)
		default:
			err = pctx.parseCharData(ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

//	[40] STag ::= '<' Name (S Attribute)* S? '>'
//	[44] EmptyElemTag ::= '<' Name (S Attribute)* S? '/>'
func (pctx *parserCtx) parseStartTag(ctx context.Context) error {
	pctx.mark()
	line, column := pctx.line, pctx.column
	if !pctx.curConsumePrefix("<") {
		return pctx.error(ErrEmptyDocument)
	}

	prefix, local, err := pctx.parseQName()
	if err != nil {
		return err
	}

	elem := &parsedElement{prefix: prefix, local: local}
	for {
		blank := pctx.skipBlanks()
		if pctx.curDone() {
			return pctx.error(ErrPrematureEOF)
		}
		if pctx.curConsumePrefix("/>") {
			elem.empty = true
			break
		}
		if pctx.curConsumePrefix(">") {
			break
		}
		if !blank {
			return pctx.error(ErrSpaceRequired)
		}

		attr, err := pctx.parseAttribute()
		if err != nil {
			return err
		}
		elem.attrs = append(elem.attrs, attr)
	}

	if pdebug.Enabled {
		pdebug.Printf("start tag '%s' (empty=%t, %d attributes)", elem.Name(), elem.empty, len(elem.attrs))
	}

	pctx.line, pctx.column = line, column
	if err := pctx.handler.StartElement(ctx, elem); err != nil {
		return pctx.handlerError(err)
	}
	if elem.empty {
		return pctx.handlerError(pctx.handler.EndElement(ctx, elem))
	}
	pctx.names.Push(elem.Name())
	return nil
}

//	[42] ETag ::= '</' Name S? '>'
func (pctx *parserCtx) parseEndTag(ctx context.Context) error {
	pctx.mark()
	if !pctx.curConsumePrefix("</") {
		return pctx.error(ErrTagNameMismatch)
	}
	prefix, local, err := pctx.parseQName()
	if err != nil {
		return err
	}
	elem := &parsedElement{prefix: prefix, local: local}

	open, _ := pctx.names.Top()
	if open != elem.Name() {
		return pctx.error(fmt.Errorf("'%s' closed by '%s': %w", open, elem.Name(), ErrTagNameMismatch))
	}

	pctx.skipBlanks()
	if !pctx.curConsumePrefix(">") {
		return pctx.error(ErrGtRequired)
	}
	pctx.names.Pop()
	return pctx.handlerError(pctx.handler.EndElement(ctx, elem))
}

//	[41] Attribute ::= Name Eq AttValue
func (pctx *parserCtx) parseAttribute() (*parsedAttribute, error) {
	prefix, local, err := pctx.parseQName()
	if err != nil {
		return nil, err
	}
	pctx.skipBlanks()
	if !pctx.curConsumePrefix("=") {
		return nil, pctx.error(ErrEqualSignRequired)
	}
	pctx.skipBlanks()

	v, err := pctx.parseAttributeValue()
	if err != nil {
		return nil, err
	}
	return &parsedAttribute{prefix: prefix, local: local, value: v}, nil
}

// parseAttributeValue resolves references and normalizes white space
// characters to spaces.
//
//	[10] AttValue ::= '"' ([^<&"] | Reference)* '"' |  "'" ([^<&'] | Reference)* "'"
func (pctx *parserCtx) parseAttributeValue() (string, error) {
	q := pctx.curPeek(1)
	if q != '"' && q != '\'' {
		return "", pctx.error(ErrAttrValueRequired)
	}
	pctx.curAdvance(1)

	var sb strings.Builder
	for {
		if pctx.curDone() {
			return "", pctx.error(ErrAttrValueNotFinished)
		}
		c := pctx.curPeek(1)
		switch {
		case c == q:
			pctx.curAdvance(1)
			return sb.String(), nil
		case c == '<':
			return "", pctx.error(ErrLtInAttribute)
		case c == '&':
			s, err := pctx.parseReference()
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		case c == '\r' && pctx.curPeekIs(2, '\n'):
			pctx.curAdvance(2)
			sb.WriteByte(' ')
		case c == 0x9 || c == 0xa || c == 0xd:
			pctx.curAdvance(1)
			sb.WriteByte(' ')
		case !isChar(c):
			return "", pctx.error(fmt.Errorf("%#x: %w", c, ErrInvalidChar))
		default:
			sb.WriteString(pctx.curConsume(1))
		}
	}
}

// parseQName splits a name at its colon.
//
//	[7] QName ::= (Prefix ':')? LocalPart
func (pctx *parserCtx) parseQName() (prefix, local string, err error) {
	name, err := pctx.parseName()
	if err != nil {
		return "", "", err
	}
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return "", name, nil
	}
	if prefix == "" || local == "" || strings.ContainsRune(local, ':') {
		return "", "", pctx.error(fmt.Errorf("'%s': %w", name, ErrInvalidQName))
	}
	return prefix, local, nil
}

//	[5] Name ::= (Letter | '_' | ':') (NameChar)*
func (pctx *parserCtx) parseName() (string, error) {
	if pctx.instate == psEOF {
		return "", pctx.error(ErrPrematureEOF)
	}

	n := 0
	for pctx.curHasChars(n + 1) {
		c := pctx.curPeek(n + 1)
		if n == 0 && !isNameStartChar(c) || n > 0 && !isNameChar(c) {
			break
		}
		n++
	}
	if n == 0 {
		return "", pctx.error(ErrNameRequired)
	}
	if n > MaxNameLength {
		return "", pctx.error(ErrNameTooLong)
	}
	return pctx.curConsume(n), nil
}

// parseCharData reports a run of character data up to the next markup
// or reference.
//
//	[14] CharData ::= [^<&]* - ([^<&]* ']]>' [^<&]*)
func (pctx *parserCtx) parseCharData(ctx context.Context) error {
	pctx.mark()
	var sb strings.Builder
	for {
		n := 0
		stop := false
		for n < chunkSize && pctx.curHasChars(n+1) {
			c := pctx.curPeek(n + 1)
			if c == '<' || c == '&' {
				stop = true
				break
			}
			if c == ']' && pctx.curPeekIs(n+2, ']') && pctx.curPeekIs(n+3, '>') {
				pctx.curAdvance(n)
				return pctx.error(ErrMisplacedCDATAEnd)
			}
			if !isChar(c) {
				pctx.curAdvance(n)
				return pctx.error(fmt.Errorf("%#x: %w", c, ErrInvalidChar))
			}
			n++
		}
		if n > 0 {
			sb.WriteString(pctx.curConsume(n))
		}
		if stop || n < chunkSize {
			break
		}
	}

	if sb.Len() == 0 {
		return nil
	}
	return pctx.handlerError(pctx.handler.Characters(ctx, []byte(normalizeNewlines(sb.String()))))
}

func (pctx *parserCtx) parseContentReference(ctx context.Context) error {
	pctx.mark()
	s, err := pctx.parseReference()
	if err != nil {
		return err
	}
	return pctx.handlerError(pctx.handler.Characters(ctx, []byte(s)))
}

// parseReference resolves a character reference or one of the
// predefined entities. Templates cannot declare entities of their own.
//
//	[67] Reference ::= EntityRef | CharRef
//	[68] EntityRef ::= '&' Name ';'
func (pctx *parserCtx) parseReference() (string, error) {
	if pctx.curHasPrefix("&#") {
		r, err := pctx.parseCharRef()
		if err != nil {
			return "", err
		}
		return string(r), nil
	}

	if !pctx.curConsumePrefix("&") {
		return "", pctx.error(ErrUndeclaredEntity)
	}
	name, err := pctx.parseName()
	if err != nil {
		return "", err
	}
	if !pctx.curConsumePrefix(";") {
		return "", pctx.error(ErrSemicolonRequired)
	}
	if v, ok := predefinedEntities[name]; ok {
		return v, nil
	}
	return "", pctx.error(fmt.Errorf("'%s': %w", name, ErrUndeclaredEntity))
}

//	[66] CharRef ::= '&#' [0-9]+ ';' | '&#x' [0-9a-fA-F]+ ';'
func (pctx *parserCtx) parseCharRef() (rune, error) {
	base := 10
	switch {
	case pctx.curConsumePrefix("&#x"):
		base = 16
	case pctx.curConsumePrefix("&#"):
	default:
		return 0, pctx.error(ErrInvalidCharRef)
	}

	n := 0
	for pctx.curHasChars(n + 1) {
		c := pctx.curPeek(n + 1)
		if !(c >= '0' && c <= '9') && !(base == 16 && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F')) {
			break
		}
		n++
	}
	if n == 0 {
		return 0, pctx.error(ErrInvalidCharRef)
	}
	digits := pctx.curConsume(n)
	if !pctx.curConsumePrefix(";") {
		return 0, pctx.error(ErrSemicolonRequired)
	}

	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil || !isChar(rune(v)) {
		return 0, pctx.error(fmt.Errorf("'%s': %w", digits, ErrInvalidCharRef))
	}
	return rune(v), nil
}

//	[18] CDSect ::= '<![CDATA[' CData ']]>'
func (pctx *parserCtx) parseCDSect(ctx context.Context) error {
	pctx.mark()
	if !pctx.curConsumePrefix("<![CDATA[") {
		return pctx.error(ErrCDATANotFinished)
	}
	data, ok, err := pctx.scanUntil("]]>")
	if err != nil {
		return err
	}
	if !ok {
		return pctx.error(ErrCDATANotFinished)
	}
	return pctx.handlerError(pctx.handler.CDATABlock(ctx, []byte(data)))
}

//	[15] Comment ::= '<!--' ((Char - '-') | ('-' (Char - '-')))* '-->'
func (pctx *parserCtx) parseComment(ctx context.Context) error {
	pctx.mark()
	if !pctx.curConsumePrefix("<!--") {
		return pctx.error(ErrCommentNotFinished)
	}
	data, ok, err := pctx.scanUntil("--")
	if err != nil {
		return err
	}
	if !ok {
		return pctx.error(ErrCommentNotFinished)
	}
	if !pctx.curConsumePrefix(">") {
		return pctx.error(ErrHyphenInComment)
	}
	return pctx.handlerError(pctx.handler.Comment(ctx, []byte(data)))
}

//	[16] PI ::= '<?' PITarget (S (Char* - (Char* '?>' Char*)))? '?>'
func (pctx *parserCtx) parsePI(ctx context.Context) error {
	pctx.mark()
	if !pctx.curConsumePrefix("<?") {
		return pctx.error(ErrInvalidProcessingInstruction)
	}
	target, err := pctx.parseName()
	if err != nil {
		return err
	}
	if strings.EqualFold(target, "xml") {
		return pctx.error(ErrMisplacedXMLDecl)
	}

	var data string
	if !pctx.curConsumePrefix("?>") {
		if !pctx.skipBlanks() {
			return pctx.error(ErrSpaceRequired)
		}
		var ok bool
		data, ok, err = pctx.scanUntil("?>")
		if err != nil {
			return err
		}
		if !ok {
			return pctx.error(ErrInvalidProcessingInstruction)
		}
	}
	return pctx.handlerError(pctx.handler.ProcessingInstruction(ctx, target, data))
}
