package portable

import "github.com/tidwall/gjson"

// FromJSON decodes the content field of a document.  Invalid JSON, null and any value that is neither an array nor
// a string decode as nil, the unavailable case.
func FromJSON(js []byte) Input {
	if !gjson.ValidBytes(js) {
		return nil
	}
	return FromGJSON(gjson.ParseBytes(js))
}

// FromGJSON decodes content that has already been parsed, usually the "content" member of a fetched document.
func FromGJSON(data gjson.Result) Input {
	switch {
	case data.IsArray():
		seq := data.Array()
		blocks := make(Blocks, 0, len(seq))
		for _, item := range seq {
			blocks = append(blocks, blockFromGJSON(item))
		}
		return blocks
	case data.Type == gjson.String:
		return Markup(data.Str)
	default:
		return nil
	}
}

func blockFromGJSON(data gjson.Result) Block {
	if !data.IsObject() {
		return UnknownBlock{}
	}
	typ := data.Get(`_type`)
	if !typ.Exists() {
		typ = data.Get(`type`)
	}
	if typ.String() != `block` {
		return UnknownBlock{Type: typ.String()}
	}
	block := TextBlock{
		Key:   data.Get(`_key`).String(),
		Style: Normal,
	}
	if style := data.Get(`style`); style.Type == gjson.String {
		block.Style = Style(style.Str)
	}
	children := data.Get(`children`)
	if !children.IsArray() {
		return block
	}
	children.ForEach(func(_, child gjson.Result) bool {
		span := Span{}
		if child.IsObject() {
			span.Text = child.Get(`text`).String()
			child.Get(`marks`).ForEach(func(_, mark gjson.Result) bool {
				span.Marks = append(span.Marks, mark.String())
				return true
			})
		}
		block.Children = append(block.Children, span)
		return true
	})
	return block
}
