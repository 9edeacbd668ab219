package props

import (
	"strconv"
	"strings"
)

// Tag selects one of the code buffers of a node.
type Tag int

const (
	TagBefore Tag = iota
	TagAfter
	TagOpeningBefore
	TagOpeningAfter
	TagClosingBefore
	TagClosingAfter
	TagContentBefore
	TagContentAfter
	TagName
	TagAttributesBefore
	TagAttributesAfter
	TagBeginningAttributes
	TagEndingAttributes
	AttributeBegin
	AttributeEnd
	AttributeName
	AttributeValue
	TagContent
	TagSingleBefore
	TagSingleAfter

	tagMax
)

var tagNames = [tagMax]string{
	"before",
	"after",
	"opening-before",
	"opening-after",
	"closing-before",
	"closing-after",
	"content-before",
	"content-after",
	"name",
	"attributes-before",
	"attributes-after",
	"beginning-attributes",
	"ending-attributes",
	"attribute-begin",
	"attribute-end",
	"attribute-name",
	"attribute-value",
	"content",
	"single-before",
	"single-after",
}

func (t Tag) String() string {
	if t < 0 || t >= tagMax {
		return "tag(" + strconv.Itoa(int(t)) + ")"
	}
	return tagNames[t]
}

// Tags lists every tag in declaration order.
func Tags() []Tag {
	tags := make([]Tag, tagMax)
	for i := range tags {
		tags[i] = Tag(i)
	}
	return tags
}

// CodeType tells whether the code of a node may change between
// executions of the compiled template.
type CodeType int

const (
	CodeDynamic CodeType = iota
	CodeStatic
)

const (
	openDelim  = "<?php "
	closeDelim = " ?>"
)

// CodeBuffers holds the code fragments attached to a node, one buffer
// per Tag.
type CodeBuffers struct {
	buffers  [tagMax]strings.Builder
	set      [tagMax]bool
	codeType CodeType
}

func NewCodeBuffers() *CodeBuffers {
	return &CodeBuffers{}
}

// Append adds code after the current content of the buffer,
// separated by a single space.
func (c *CodeBuffers) Append(tag Tag, code string) {
	b := &c.buffers[tag]
	b.WriteByte(' ')
	b.WriteString(code)
	c.set[tag] = true
}

// Prepend adds code before the current content of the buffer,
// separated by a single space.
func (c *CodeBuffers) Prepend(tag Tag, code string) {
	cur := c.buffers[tag].String()
	c.buffers[tag].Reset()
	c.buffers[tag].WriteString(code)
	c.buffers[tag].WriteByte(' ')
	c.buffers[tag].WriteString(cur)
	c.set[tag] = true
}

// Copy merges the content of the srcTag buffer of src into the dstTag
// buffer of c, after the content already there.
func (c *CodeBuffers) Copy(src *CodeBuffers, srcTag, dstTag Tag) {
	c.buffers[dstTag].WriteString(src.Buffer(srcTag))
	c.set[dstTag] = true
}

func (c *CodeBuffers) Buffer(tag Tag) string {
	return c.buffers[tag].String()
}

func (c *CodeBuffers) HasContent(tag Tag) bool {
	return c.buffers[tag].Len() > 0
}

func (c *CodeBuffers) SetCodeType(t CodeType) {
	c.codeType = t
}

func (c *CodeBuffers) CodeType() CodeType {
	return c.codeType
}

func (c *CodeBuffers) Clear() {
	for i := range c.buffers {
		c.buffers[i].Reset()
		c.set[i] = false
	}
}

func (c *CodeBuffers) Dispose() {
	c.Clear()
	c.codeType = CodeDynamic
}

// LinkPart is either a buffer slot or a literal string passed through
// Link.
type LinkPart struct {
	tag     Tag
	literal string
	isSlot  bool
}

// Slot refers to the buffer with the given tag.
func Slot(tag Tag) LinkPart {
	return LinkPart{tag: tag, isSlot: true}
}

// Literal is printed only if the slot right before it was set.
func Literal(s string) LinkPart {
	return LinkPart{literal: s}
}

// Link concatenates the given buffers into a single fragment. Literal
// parts are emitted only when the slot right before them has been
// written to: raw literals are copied as they are, otherwise they are
// turned into echo statements. Unless raw is set, the result is wrapped
// in code delimiters. Nothing is returned if no slot was set.
func (c *CodeBuffers) Link(parts []LinkPart, raw bool) string {
	var out strings.Builder
	used := false
	for _, part := range parts {
		if !part.isSlot {
			if used {
				if raw {
					out.WriteString(part.literal)
				} else {
					out.WriteString(" echo '")
					out.WriteString(part.literal)
					out.WriteByte('\'')
				}
			}
			used = false
			continue
		}
		if c.set[part.tag] {
			out.WriteString(c.buffers[part.tag].String())
			used = true
		} else {
			used = false
		}
	}
	if out.Len() == 0 {
		return ""
	}
	if raw {
		return strings.TrimSpace(out.String())
	}
	return openDelim + out.String() + closeDelim
}
