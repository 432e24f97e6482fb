// tokenizer.go
//
// Streaming tokenizer for Forthic source.
//
// The tokenizer hands out one token per call to NextToken; the interpreter
// drives it directly, so there is no token buffer and no lookahead beyond
// single characters. Grammar notes:
//
//   - Whitespace includes "(", ")" and ",": parens and commas separate
//     words but carry no meaning of their own.
//   - "#" starts a comment running to end of line.
//   - ":" and "@:" begin a definition / memoized definition; the following
//     word is the definition name. ";" ends either.
//   - "{name" opens a module block ("{" alone targets the app module),
//     "}" closes it.
//   - Strings are delimited by ", ' or ^. A tripled delimiter opens a
//     multi-line string; runs of four or more delimiters close greedily so
//     trailing quote characters stay inside the string.
//   - ".symbol" is a dot-symbol token carrying "symbol". A bare "." is an
//     ordinary word.
//
// Tokens carry 1-based line/column plus byte offsets. A Tokenizer can be
// given a reference location so nested INTERPRET runs report positions in
// terms of the outer source.
package forthic

import (
	"strings"
	"unicode/utf8"
)

// TokenKind represents the kind of token.
type TokenKind int

const (
	TokString      TokenKind = iota // string literal (delimiters stripped)
	TokComment                      // "#" to end of line
	TokStartArray                   // "["
	TokEndArray                     // "]"
	TokStartModule                  // "{name" (Text is name, possibly empty)
	TokEndModule                    // "}"
	TokStartDef                     // ": NAME" (Text is NAME)
	TokEndDef                       // ";"
	TokStartMemo                    // "@: NAME" (Text is NAME)
	TokWord                         // any other word
	TokDotSymbol                    // ".symbol" (Text has the dot stripped)
	TokEOS                          // end of source
)

func (k TokenKind) String() string {
	switch k {
	case TokString:
		return "STRING"
	case TokComment:
		return "COMMENT"
	case TokStartArray:
		return "START_ARRAY"
	case TokEndArray:
		return "END_ARRAY"
	case TokStartModule:
		return "START_MODULE"
	case TokEndModule:
		return "END_MODULE"
	case TokStartDef:
		return "START_DEF"
	case TokEndDef:
		return "END_DEF"
	case TokStartMemo:
		return "START_MEMO"
	case TokWord:
		return "WORD"
	case TokDotSymbol:
		return "DOT_SYMBOL"
	case TokEOS:
		return "EOS"
	default:
		return "UNKNOWN"
	}
}

// CodeLocation pins a token to a position in a named source.
type CodeLocation struct {
	Source string // label for error messages ("<input>", a file name, ...)
	Line   int    // 1-based
	Col    int    // 1-based
	Start  int    // byte offset of first byte
	End    int    // byte offset one past last byte
}

// Token is a single lexical token.
type Token struct {
	Kind TokenKind
	Text string
	Loc  CodeLocation
}

// Tokenizer scans a Forthic source string.
type Tokenizer struct {
	src    string
	cur    int // current byte index
	line   int // 1-based
	col    int // 1-based
	source string

	// reference offsets for nested interpretation
	refLine int
	refCol  int
}

// NewTokenizer creates a tokenizer over src. The source label is used in
// error locations.
func NewTokenizer(src, source string) *Tokenizer {
	return &Tokenizer{src: src, line: 1, col: 1, source: source, refLine: 1, refCol: 1}
}

// NewTokenizerAt creates a tokenizer whose reported locations are offset by
// ref, so errors inside an INTERPRET'ed string point into the outer source.
func NewTokenizerAt(src string, ref CodeLocation) *Tokenizer {
	t := NewTokenizer(src, ref.Source)
	t.refLine = ref.Line
	t.refCol = ref.Col
	return t
}

const quoteChars = "\"'^"

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '(', ')', ',':
		return true
	}
	return false
}

func isQuoteChar(b byte) bool { return strings.IndexByte(quoteChars, b) >= 0 }

// wordTerminators are the characters that end a bare word in addition to
// whitespace.
func isWordTerminator(b byte) bool {
	switch b {
	case ';', '[', ']', '{', '}', '#':
		return true
	}
	return isWhitespace(b) || isQuoteChar(b)
}

func (t *Tokenizer) isAtEnd() bool { return t.cur >= len(t.src) }

func (t *Tokenizer) peek() (byte, bool) {
	if t.isAtEnd() {
		return 0, false
	}
	return t.src[t.cur], true
}

func (t *Tokenizer) peekN(n int) (byte, bool) {
	idx := t.cur + n
	if idx >= len(t.src) {
		return 0, false
	}
	return t.src[idx], true
}

// advance consumes one rune and keeps line/col current. It returns the
// consumed text, more than one byte for non-ASCII runes.
func (t *Tokenizer) advance() string {
	start := t.cur
	b := t.src[t.cur]
	if b < utf8.RuneSelf {
		t.cur++
	} else {
		_, size := utf8.DecodeRuneInString(t.src[t.cur:])
		t.cur += size
	}
	if b == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
	return t.src[start:t.cur]
}

// loc builds the location for a token spanning [start, t.cur) that began at
// line/col, applying the reference offset.
func (t *Tokenizer) loc(start, line, col int) CodeLocation {
	outLine := line + t.refLine - 1
	outCol := col
	if line == 1 {
		outCol = col + t.refCol - 1
	}
	return CodeLocation{Source: t.source, Line: outLine, Col: outCol, Start: start, End: t.cur}
}

func (t *Tokenizer) errAt(line, col int, msg string) error {
	outLine := line + t.refLine - 1
	outCol := col
	if line == 1 {
		outCol = col + t.refCol - 1
	}
	return &TokenizeError{Source: t.source, Line: outLine, Col: outCol, Msg: msg}
}

// NextToken returns the next token, or a token of kind TokEOS at end of
// source. Errors are *TokenizeError with location.
func (t *Tokenizer) NextToken() (Token, error) {
	t.skipWhitespace()
	start, line, col := t.cur, t.line, t.col
	b, ok := t.peek()
	if !ok {
		return Token{Kind: TokEOS, Loc: t.loc(start, line, col)}, nil
	}

	switch {
	case b == '#':
		return t.scanComment(start, line, col), nil
	case b == ':':
		t.advance()
		return t.scanDefinitionName(TokStartDef, start, line, col)
	case b == '@':
		if nb, ok2 := t.peekN(1); ok2 && nb == ':' {
			t.advance()
			t.advance()
			return t.scanDefinitionName(TokStartMemo, start, line, col)
		}
		return t.scanWordOrDotSymbol(start, line, col)
	case b == ';':
		t.advance()
		return Token{Kind: TokEndDef, Text: ";", Loc: t.loc(start, line, col)}, nil
	case b == '[':
		t.advance()
		return Token{Kind: TokStartArray, Text: "[", Loc: t.loc(start, line, col)}, nil
	case b == ']':
		t.advance()
		return Token{Kind: TokEndArray, Text: "]", Loc: t.loc(start, line, col)}, nil
	case b == '{':
		return t.scanStartModule(start, line, col)
	case b == '}':
		t.advance()
		return Token{Kind: TokEndModule, Text: "}", Loc: t.loc(start, line, col)}, nil
	case isQuoteChar(b):
		return t.scanString(start, line, col)
	default:
		return t.scanWordOrDotSymbol(start, line, col)
	}
}

func (t *Tokenizer) skipWhitespace() {
	for {
		b, ok := t.peek()
		if !ok || !isWhitespace(b) {
			return
		}
		t.advance()
	}
}

func (t *Tokenizer) scanComment(start, line, col int) Token {
	t.advance() // "#"
	var sb strings.Builder
	for {
		b, ok := t.peek()
		if !ok || b == '\n' {
			break
		}
		sb.WriteString(t.advance())
	}
	return Token{Kind: TokComment, Text: sb.String(), Loc: t.loc(start, line, col)}
}

// scanDefinitionName gathers the word after ":" or "@:". Quote characters
// and brackets are not allowed in definition names.
func (t *Tokenizer) scanDefinitionName(kind TokenKind, start, line, col int) (Token, error) {
	t.skipWhitespace()
	nameLine, nameCol := t.line, t.col
	var sb strings.Builder
	for {
		b, ok := t.peek()
		if !ok || isWhitespace(b) {
			break
		}
		if isQuoteChar(b) {
			return Token{}, t.errAt(nameLine, nameCol, "definition names cannot contain quote characters")
		}
		if b == '[' || b == ']' || b == '{' || b == '}' {
			return Token{}, t.errAt(nameLine, nameCol, "definition names cannot contain brackets")
		}
		if b == ';' || b == '#' {
			break
		}
		sb.WriteString(t.advance())
	}
	if sb.Len() == 0 {
		return Token{}, t.errAt(line, col, "expected a definition name")
	}
	return Token{Kind: kind, Text: sb.String(), Loc: t.loc(start, line, col)}, nil
}

// scanStartModule gathers "{name". The name may be empty ("{" alone), which
// targets the app module.
func (t *Tokenizer) scanStartModule(start, line, col int) (Token, error) {
	t.advance() // "{"
	var sb strings.Builder
	for {
		b, ok := t.peek()
		if !ok || isWhitespace(b) || b == '}' {
			break
		}
		if isQuoteChar(b) || b == '[' || b == ']' || b == '{' {
			return Token{}, t.errAt(line, col, "module names cannot contain quotes or brackets")
		}
		sb.WriteString(t.advance())
	}
	return Token{Kind: TokStartModule, Text: sb.String(), Loc: t.loc(start, line, col)}, nil
}

func (t *Tokenizer) scanString(start, line, col int) (Token, error) {
	delim := t.src[t.cur]
	if t.tripleAhead(delim) {
		return t.scanTripleString(delim, start, line, col)
	}
	t.advance() // opening delimiter
	var sb strings.Builder
	for {
		b, ok := t.peek()
		if !ok {
			return Token{}, t.errAt(line, col, "unterminated string")
		}
		if b == delim {
			t.advance()
			return Token{Kind: TokString, Text: sb.String(), Loc: t.loc(start, line, col)}, nil
		}
		if b == '\n' {
			return Token{}, t.errAt(line, col, "unterminated string (newline in single-quoted string)")
		}
		sb.WriteString(t.advance())
	}
}

func (t *Tokenizer) tripleAhead(delim byte) bool {
	b1, ok1 := t.peekN(1)
	b2, ok2 := t.peekN(2)
	return ok1 && ok2 && b1 == delim && b2 == delim
}

// scanTripleString reads a triple-delimited string. Closing is greedy: in a
// run of four or more delimiters, the extra leading ones belong to the
// string and the final three close it.
func (t *Tokenizer) scanTripleString(delim byte, start, line, col int) (Token, error) {
	t.advance()
	t.advance()
	t.advance()
	var sb strings.Builder
	for {
		b, ok := t.peek()
		if !ok {
			return Token{}, t.errAt(line, col, "unterminated triple-quoted string")
		}
		if b == delim && t.tripleAhead(delim) {
			// Greedy close: consume delimiters while more than three remain.
			if b4, ok4 := t.peekN(3); ok4 && b4 == delim {
				sb.WriteByte(delim)
				t.advance()
				continue
			}
			t.advance()
			t.advance()
			t.advance()
			return Token{Kind: TokString, Text: sb.String(), Loc: t.loc(start, line, col)}, nil
		}
		sb.WriteString(t.advance())
	}
}

// scanWordOrDotSymbol gathers a bare word. A word beginning with "." and
// followed by more characters is a dot-symbol; "." alone stays a word.
func (t *Tokenizer) scanWordOrDotSymbol(start, line, col int) (Token, error) {
	var sb strings.Builder
	for {
		b, ok := t.peek()
		if !ok || isWordTerminator(b) {
			break
		}
		sb.WriteString(t.advance())
	}
	text := sb.String()
	if len(text) > 1 && text[0] == '.' {
		return Token{Kind: TokDotSymbol, Text: text[1:], Loc: t.loc(start, line, col)}, nil
	}
	return Token{Kind: TokWord, Text: text, Loc: t.loc(start, line, col)}, nil
}
