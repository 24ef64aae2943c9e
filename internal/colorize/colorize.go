// Package colorize highlights listing text for terminal output.
package colorize

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ListingDark is the listing style: white mnemonics, teal registers, pink numbers.
var ListingDark = styles.Register(chroma.MustNewStyle("callscope-dark", chroma.StyleEntries{
	chroma.Text:             "#FFFFFF",
	chroma.Background:       "bg:#1e1e1e",
	chroma.Comment:          "#8A8A8A",
	chroma.CommentPreproc:   "#8A8A8A",
	chroma.Keyword:          "#FFFFFF",
	chroma.Name:             "#7C9C9D",
	chroma.NameBuiltin:      "#7C9C9D",
	chroma.NameVariable:     "#7C9C9D",
	chroma.NameLabel:        "#FFD700",
	chroma.NameFunction:     "#FFFFFF",
	chroma.LiteralNumber:    "#FF5F87",
	chroma.LiteralNumberHex: "#FF5F87",
	chroma.Operator:         "#FFFFFF",
	chroma.Punctuation:      "#FFFFFF",
	chroma.String:           "#EACD53",
}))

func lexer() chroma.Lexer {
	for _, name := range []string{"armasm", "gas", "nasm"} {
		if l := lexers.Get(name); l != nil {
			return l
		}
	}
	return nil
}

func formatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if f := formatters.Get(name); f != nil {
			return f
		}
	}
	return formatters.Fallback
}

// Assembly returns code with ANSI highlighting. The input is returned
// unchanged when no assembly lexer is available or tokenizing fails.
func Assembly(code string) (string, error) {
	l := lexer()
	if l == nil {
		return code, nil
	}
	it, err := l.Tokenise(nil, code)
	if err != nil {
		return code, err
	}
	var b strings.Builder
	if err := formatter().Format(&b, ListingDark, it); err != nil {
		return code, err
	}
	return b.String(), nil
}
