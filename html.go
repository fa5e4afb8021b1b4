// Package html implements a type safe and extremely simple model of HTML content that can be used to quickly build
// HTML programmatically.  Portable text rendering and the site pages are both built on this model.
package html

import (
	"fmt"
	"strings"
)

// Static converts the provided HTML content into static content, speeding up subsequent addition as HTML.
func Static(contents ...Content) Content {
	return HTML(Append(make([]byte, 0, 1024), contents...))
}

// Append appends the HTML from each of its contents to the provided buffer.
func Append(buf []byte, contents ...Content) []byte {
	for _, content := range contents {
		if content == nil {
			continue
		}
		buf = content.AppendHTML(buf)
	}
	return buf
}

// String renders the provided contents into a string.
func String(contents ...Content) string {
	return string(Append(make([]byte, 0, 1024), contents...))
}

// Content is something that can be appended to HTML.
type Content interface {
	AppendHTML(buf []byte) []byte
}

// A Group is a sequence of content appended in order with no separator.
type Group []Content

func (g Group) AppendHTML(buf []byte) []byte { return Append(buf, g...) }

// HTML is trusted markup that is appended verbatim.  Never build HTML from untrusted input.
type HTML string

func (e HTML) AppendHTML(buf []byte) []byte { return append(buf, e...) }

// HTML5 is the most frequently used doctype.
var HTML5 = Doctype(`html`)

// Doctype emits <!DOCTYPE> declaration.
type Doctype string

func (e Doctype) AppendHTML(buf []byte) []byte {
	buf = append(buf, `<!DOCTYPE `...)
	buf = appendHTML(buf, string(e))
	buf = append(buf, '>')
	return buf
}

// Text is a nicer name for character data found outside of an HTML tag.
type Text string

// AppendHTML implements Content by appending the literal HTML, escaping any characters that could be misunderstood
// as starting a Tag or Doctype by a parser.
func (e Text) AppendHTML(buf []byte) []byte {
	return appendHTML(buf, string(e))
}

// A Tag is an element with attributes and content.  Void elements like br and img never have content or a closing
// tag; every other element is always closed, even when empty.
type Tag struct {
	Name    string    `json:"name"`
	Attrs   []Attr    `json:"attrs"`
	Content []Content `json:"content"`
}

func (e Tag) AppendHTML(buf []byte) []byte {
	name := e.Name
	if name == `` {
		name = `div`
	}
	buf = appendPreamble(buf, name, e.Attrs...)
	buf = append(buf, '>')
	if isVoid(name) {
		return buf
	}
	for _, item := range e.Content {
		// NOTE: a script or style tag should be escaped differently, according to the W3C.  We do not deal with
		// this.  Instead, the user should use the Script or Style tag.
		if item != nil {
			buf = item.AppendHTML(buf)
		}
	}
	buf = append(buf, '<', '/')
	buf = appendHTML(buf, name)
	return append(buf, '>')
}

// ID returns the value of the last id attribute on the tag, if any.
func (e Tag) ID() string {
	id := ``
	for _, attr := range e.Attrs {
		if attr.Name == `id` {
			id = attr.Value
		}
	}
	return id
}

func isVoid(name string) bool {
	switch strings.ToLower(name) {
	case `area`, `base`, `br`, `col`, `embed`, `hr`, `img`, `input`, `link`, `meta`, `source`, `track`, `wbr`:
		return true
	}
	return false
}

// A Script represents a script tag and its contents.  This must be used instead of Tag, since HTML5 has special rules
// about the content of a script (or style) element.
type Script struct {
	Attrs   []Attr `json:"attrs"`
	Content string `json:"content"`
}

func (e Script) AppendHTML(buf []byte) []byte {
	buf = appendPreamble(buf, `script`, e.Attrs...)
	buf = append(buf, '>')
	buf = appendContent(buf, e.Content, `</script>`)
	return buf
}

// A Style represents a style tag and its contents.  This must be used instead of Tag, since HTML5 has special rules
// about the content of a style (or script) element.
type Style struct {
	Attrs   []Attr `json:"attrs"`
	Content string `json:"content"`
}

// AppendHTML implements Content by appending the style tag and its content.  Beware embedding "</style>" in the
// content, since there is no way to escape it according to HTML5; this will cause a panic.
func (e Style) AppendHTML(buf []byte) []byte {
	buf = appendPreamble(buf, `style`, e.Attrs...)
	buf = append(buf, '>')
	buf = appendContent(buf, e.Content, `</style>`)
	return buf
}

// A Comment represents an HTML comment.
type Comment string

// AppendHTML implements Content by appending the comment.  Beware embedding "-->" inside a comment, since there is
// no way to escape it according to HTML5, so this will cause a panic.
func (e Comment) AppendHTML(buf []byte) []byte {
	buf = append(buf, `<!--`...)
	return appendContent(buf, string(e), `-->`)
}

// appendPreamble appends the beginning of a tag and its attributes, but stops shy of completing the tag with a ">",
// since it does not know if the tag is closed.
func appendPreamble(buf []byte, name string, attrs ...Attr) []byte {
	buf = append(buf, '<')
	buf = appendHTML(buf, name)
	for _, attr := range attrs {
		buf = append(buf, ' ')
		buf = appendHTML(buf, attr.Name)
		buf = append(buf, '=', '"')
		buf = appendValue(buf, attr.Value)
		buf = append(buf, '"')
	}
	return buf
}

func appendHTML(buf []byte, str string) []byte {
	for i := 0; i < len(str); i++ {
		switch b := str[i]; b {
		case '<':
			buf = append(buf, '&', 'l', 't', ';')
		case '>':
			buf = append(buf, '&', 'g', 't', ';')
		case '&':
			buf = append(buf, '&', 'a', 'm', 'p', ';')
		default:
			buf = append(buf, b)
		}
	}
	return buf
}

func appendValue(buf []byte, str string) []byte {
	for i := 0; i < len(str); i++ {
		switch b := str[i]; b {
		case '&':
			buf = append(buf, '&', 'a', 'm', 'p', ';')
		case '"':
			buf = append(buf, '&', 'q', 'u', 'o', 't', ';')
		case '<':
			buf = append(buf, '&', 'l', 't', ';')
		default:
			buf = append(buf, b)
		}
	}
	return buf
}

// appendContent will append the provided content and then a closing tag.  If the closing tag occurs within the
// content, appendContent will panic because HTML5 does not provide mechanism for escaping them.
func appendContent(buf []byte, content, end string) []byte {
	if strings.Contains(content, end) {
		panic(fmt.Errorf(`content contains %q`, end))
	}
	buf = append(buf, content...)
	return append(buf, end...)
}

// Attr is a single attribute of a Tag.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
