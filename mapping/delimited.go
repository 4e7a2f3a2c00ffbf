package mapping

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

var (
	delimitedLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Newline", Pattern: `\r\n|\r|\n`},
		{Name: "Tab", Pattern: `\t`},
		{Name: "Comma", Pattern: `,`},
		{Name: "Text", Pattern: `[^\t,\r\n]+`},
	})

	newlineTokenType = mustTokenType("Newline")
	tabTokenType     = mustTokenType("Tab")
	commaTokenType   = mustTokenType("Comma")
)

func mustTokenType(name string) lexer.TokenType {
	tt, ok := delimitedLexer.Symbols()[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}

// ParseDelimited reads two-column TAB or comma separated text. Each line is
// split on TAB first and on comma only if that yields fewer than two fields.
// Lines without a non-empty key and text are skipped; it never fails.
func ParseDelimited(raw string) Delta {
	lex, err := delimitedLexer.LexString("", raw)
	if err != nil {
		tracer().Errorf("delimited mapping lexer: %v", err)
		return nil
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		// 规则覆盖全部字符，理论上不会出现
		tracer().Errorf("delimited mapping lexer: %v", err)
		return nil
	}

	var delta Delta
	var line []lexer.Token
	flush := func() {
		if entry, ok := parseRecord(line); ok {
			delta = append(delta, entry)
		}
		line = line[:0]
	}
	for _, tok := range tokens {
		if tok.EOF() {
			break
		}
		if tok.Type == newlineTokenType {
			flush()
			continue
		}
		line = append(line, tok)
	}
	flush()
	return delta
}

func parseRecord(tokens []lexer.Token) (Entry, bool) {
	if len(tokens) == 0 {
		return Entry{}, false
	}
	fields := splitFields(tokens, tabTokenType)
	if len(fields) < 2 {
		fields = splitFields(tokens, commaTokenType)
	}
	if len(fields) < 2 {
		return Entry{}, false
	}
	// 其余字段用单个空格拼接，允许文本中出现分隔符
	font := strings.TrimSpace(fields[0])
	text := strings.TrimSpace(strings.Join(fields[1:], " "))
	if font == "" || text == "" {
		return Entry{}, false
	}
	return Entry{Font: font, Text: text}, true
}

func splitFields(tokens []lexer.Token, sep lexer.TokenType) []string {
	var fields []string
	var builder strings.Builder
	for _, tok := range tokens {
		if tok.Type == sep {
			fields = append(fields, builder.String())
			builder.Reset()
			continue
		}
		builder.WriteString(tok.Value)
	}
	return append(fields, builder.String())
}
