// Package portable renders portable text, the typed block and span tree produced by the content store, into HTML
// fragments.
//
// Rendering is total: any input, including nil, yields markup and never an error.  Span text is appended verbatim,
// so callers that do not trust the content store must sanitize the result.
package portable

import (
	"strings"

	"github.com/swdunlop/portable-html-go"
	"github.com/swdunlop/portable-html-go/tag"
)

// Render renders content into an HTML fragment.  A nil input (missing content) renders the unavailable placeholder.
func Render(in Input) string {
	return string(Append(make([]byte, 0, 1024), in))
}

// Append appends the rendering of content to buf.
func Append(buf []byte, in Input) []byte {
	if in == nil {
		return Unavailable.AppendHTML(buf)
	}
	return in.appendInput(buf)
}

// Content adapts portable text into HTML content that renders exactly like Render.
func Content(in Input) html.Content { return content{in} }

type content struct{ in Input }

func (c content) AppendHTML(buf []byte) []byte { return Append(buf, c.in) }

// Unavailable is the fragment rendered when a document has no content.
var Unavailable = html.Static(tag.New(`p`, tag.Text(`المحتوى غير متاح`)))

// Input is the content of a document: Blocks, Markup or nil.
type Input interface {
	appendInput(buf []byte) []byte
}

// Blocks is a sequence of portable text blocks, rendered in order with no separator.
type Blocks []Block

func (seq Blocks) appendInput(buf []byte) []byte {
	for _, block := range seq {
		if block == nil {
			continue
		}
		buf = block.appendBlock(buf)
	}
	return buf
}

// Markup is content stored as a single string of text or markup by older documents.
type Markup string

var articleText = tag.Factory(`div`, tag.Class(`article-text`))

func (m Markup) appendInput(buf []byte) []byte {
	if m == `` {
		return Unavailable.AppendHTML(buf)
	}
	return articleText(tag.Raw(string(m))).AppendHTML(buf)
}

// A Block is either a TextBlock or an UnknownBlock.
type Block interface {
	appendBlock(buf []byte) []byte
}

// TextBlock is a paragraph-like block of spans with a style.
type TextBlock struct {
	Key      string
	Style    Style
	Children []Span
}

// Text concatenates the text of every span in order.
func (b TextBlock) Text() string {
	switch len(b.Children) {
	case 0:
		return ``
	case 1:
		return b.Children[0].Text
	}
	var sb strings.Builder
	for _, span := range b.Children {
		sb.WriteString(span.Text)
	}
	return sb.String()
}

func (b TextBlock) appendBlock(buf []byte) []byte {
	return b.Style.wrapper()(tag.Raw(b.Text())).AppendHTML(buf)
}

// UnknownBlock is any block whose type the renderer does not handle, such as images or embeds.  It renders as
// nothing.
type UnknownBlock struct {
	Type string
}

func (UnknownBlock) appendBlock(buf []byte) []byte { return buf }

// Span is a run of text within a block.  Marks are kept for callers but do not affect rendering.
type Span struct {
	Text  string
	Marks []string
}

// Style selects the element that wraps a text block.
type Style string

const (
	Normal     Style = `normal`
	H1         Style = `h1`
	H2         Style = `h2`
	H3         Style = `h3`
	Blockquote Style = `blockquote`
)

// Page titles use h1, so block headings render one level down.
var (
	heading    = tag.Factory(`h2`, tag.Class(`content-heading`))
	subheading = tag.Factory(`h3`, tag.Class(`content-subheading`))
	minorhead  = tag.Factory(`h4`, tag.Class(`content-subheading`))
	quote      = tag.Factory(`blockquote`, tag.Class(`content-quote`))
	paragraph  = tag.Factory(`p`, tag.Class(`content-paragraph`))
)

func (s Style) wrapper() func(...tag.Option) html.Tag {
	switch s {
	case H1:
		return heading
	case H2:
		return subheading
	case H3:
		return minorhead
	case Blockquote:
		return quote
	default:
		return paragraph
	}
}

// PlainText returns the text of the content without markup: text blocks are separated by newlines and unknown
// blocks are skipped.
func PlainText(in Input) string {
	switch in := in.(type) {
	case Markup:
		return string(in)
	case Blocks:
		lines := make([]string, 0, len(in))
		for _, block := range in {
			if b, ok := block.(TextBlock); ok {
				lines = append(lines, b.Text())
			}
		}
		return strings.Join(lines, "\n")
	default:
		return ``
	}
}
