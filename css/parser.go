package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into rule trees.
//
// Unlike css.Parser from tdewolff it keeps comments found inside
// declaration blocks, so parsing is done on top of the lexer.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// token is a lexer token with its byte offset in the source.
type token struct {
	tt     css.TokenType
	data   string
	offset int
}

// Parse parses CSS text into a Stylesheet. The optional source parameter
// identifies what's being parsed (for debug logging). Returned errors are
// *parse.Error values carrying line and column of the problem.
func (p *Parser) Parse(data []byte, source ...string) (*Stylesheet, error) {
	var src string
	if len(source) > 0 {
		src = source[0]
	}
	if src != "" {
		p.log.Debug("Parsing CSS", zap.String("source", src), zap.Int("bytes", len(data)))
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	toks, err := tokenize(data)
	if err != nil {
		return nil, err
	}

	rd := &reader{src: data, toks: toks}
	rules, err := rd.parseRules(false, false)
	if err != nil {
		p.log.Debug("CSS parse error", zap.String("source", src), zap.Error(err))
		return nil, err
	}
	return &Stylesheet{Rules: rules}, nil
}

// tokenize lexes whole input. The last token is always css.ErrorToken
// marking the end of input.
func tokenize(data []byte) ([]token, error) {
	l := css.NewLexer(parse.NewInputBytes(data))

	toks := make([]token, 0, len(data)/4+1)
	offset := 0
	for {
		tt, text := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, parse.NewError(bytes.NewReader(data), offset, "%v", err)
			}
			return append(toks, token{tt: css.ErrorToken, offset: offset}), nil
		}
		toks = append(toks, token{tt: tt, data: string(text), offset: offset})
		offset += len(text)
	}
}

// reader is a recursive descent parser over the token list.
type reader struct {
	src  []byte
	toks []token
	pos  int
}

func (r *reader) peek() token {
	return r.toks[r.pos]
}

// next returns current token and advances, it never moves past end of input.
func (r *reader) next() token {
	t := r.toks[r.pos]
	if t.tt != css.ErrorToken {
		r.pos++
	}
	return t
}

func (r *reader) skipWhitespace() {
	for r.peek().tt == css.WhitespaceToken {
		r.pos++
	}
}

func (r *reader) errorf(t token, format string, a ...any) error {
	return parse.NewError(bytes.NewReader(r.src), t.offset, format, a...)
}

// parseRules parses list of rules until end of input (top level) or closing
// brace (nested). When frames is set qualified rules become keyframes.
func (r *reader) parseRules(nested, frames bool) ([]Rule, error) {
	var rules []Rule
	for {
		r.skipWhitespace()

		t := r.peek()
		switch t.tt {
		case css.ErrorToken:
			if nested {
				return nil, r.errorf(t, "missing '}'")
			}
			return rules, nil

		case css.RightBraceToken:
			r.next()
			if !nested {
				return nil, r.errorf(t, "unexpected '}'")
			}
			return rules, nil

		case css.CDOToken, css.CDCToken, css.SemicolonToken:
			r.next()

		case css.CommentToken:
			r.next()
			rules = append(rules, &Comment{Text: commentText(t.data)})

		case css.AtKeywordToken:
			rule, err := r.parseAtRule()
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)

		default:
			rule, err := r.parseQualifiedRule(frames)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
		}
	}
}

// collectPrelude gathers tokens up to (but not including) the first "{", ";"
// or "}" outside of parentheses and brackets. The terminating token is
// returned separately and not consumed.
func (r *reader) collectPrelude() ([]token, token) {
	var toks []token
	depth := 0
	for {
		t := r.peek()
		switch t.tt {
		case css.ErrorToken:
			return toks, t
		case css.LeftBraceToken, css.SemicolonToken, css.RightBraceToken:
			if depth == 0 {
				return toks, t
			}
		case css.LeftParenthesisToken, css.LeftBracketToken, css.FunctionToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		}
		toks = append(toks, t)
		r.pos++
	}
}

func (r *reader) parseQualifiedRule(frames bool) (Rule, error) {
	prelude, end := r.collectPrelude()
	if end.tt != css.LeftBraceToken {
		return nil, r.errorf(end, "missing '{'")
	}
	r.next()

	decls, err := r.parseDeclarations()
	if err != nil {
		return nil, err
	}

	selectors := splitList(prelude)
	if len(selectors) == 0 {
		return nil, r.errorf(end, "selector missing")
	}
	if frames {
		return &Keyframe{Values: selectors, Declarations: decls}, nil
	}
	return &StyleRule{Selectors: selectors, Declarations: decls}, nil
}

func (r *reader) parseAtRule() (Rule, error) {
	at := r.next()
	name := strings.ToLower(strings.TrimPrefix(at.data, "@"))

	toks, end := r.collectPrelude()
	prelude := joinTokens(toks)

	if end.tt != css.LeftBraceToken {
		// statement at-rule, closing brace belongs to the enclosing block
		if end.tt == css.SemicolonToken {
			r.next()
		}
		return &AtStatement{Name: name, Prelude: prelude}, nil
	}
	r.next()

	if name == "media" {
		rules, err := r.parseRules(true, false)
		if err != nil {
			return nil, err
		}
		return &MediaRule{Condition: prelude, Rules: rules}, nil
	}

	if vendor, ok := keyframesVendor(name); ok {
		frames, err := r.parseRules(true, true)
		if err != nil {
			return nil, err
		}
		return &KeyframesRule{Vendor: vendor, Name: prelude, Frames: frames}, nil
	}

	if declarationBlockAtRules[name] {
		decls, err := r.parseDeclarations()
		if err != nil {
			return nil, err
		}
		return &AtDeclarations{Name: name, Prelude: prelude, Declarations: decls}, nil
	}

	rules, err := r.parseRules(true, false)
	if err != nil {
		return nil, err
	}
	return &AtBlock{Name: name, Prelude: prelude, Rules: rules}, nil
}

// parseDeclarations parses declaration block after opening brace up to and
// including closing brace.
func (r *reader) parseDeclarations() ([]Declaration, error) {
	var decls []Declaration
	for {
		t := r.next()
		switch t.tt {
		case css.WhitespaceToken, css.SemicolonToken:
			continue

		case css.ErrorToken:
			return nil, r.errorf(t, "missing '}'")

		case css.RightBraceToken:
			return decls, nil

		case css.CommentToken:
			decls = append(decls, &Comment{Text: commentText(t.data)})

		default:
			prop, err := r.parseProperty(t)
			if err != nil {
				return nil, err
			}
			decls = append(decls, prop)
		}
	}
}

// parseProperty parses "name: value" starting with already consumed first
// token. Value ends at ";" (consumed) or "}" (left for the caller).
func (r *reader) parseProperty(first token) (*Property, error) {
	var name string
	switch first.tt {
	case css.IdentToken, css.CustomPropertyNameToken:
		name = first.data
	case css.DelimToken:
		// old IE hacks: *zoom, _height is an ident already
		if first.data == "*" && r.peek().tt == css.IdentToken {
			name = first.data + r.next().data
		}
	}
	if name == "" {
		return nil, r.errorf(first, "property missing ':'")
	}

	for r.peek().tt == css.WhitespaceToken || r.peek().tt == css.CommentToken {
		r.next()
	}
	if t := r.peek(); t.tt != css.ColonToken {
		return nil, r.errorf(t, "property missing ':'")
	}
	r.next()

	var toks []token
	depth := 0
	for {
		t := r.peek()
		if depth == 0 && (t.tt == css.SemicolonToken || t.tt == css.RightBraceToken) || t.tt == css.ErrorToken {
			break
		}
		switch t.tt {
		case css.LeftParenthesisToken, css.LeftBracketToken, css.FunctionToken, css.LeftBraceToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken, css.RightBraceToken:
			if depth > 0 {
				depth--
			}
		}
		toks = append(toks, t)
		r.pos++
	}
	if r.peek().tt == css.SemicolonToken {
		r.next()
	}
	return &Property{Name: name, Value: joinTokens(toks)}, nil
}

// joinTokens builds text from tokens dropping comments, collapsing
// whitespace runs into single space and trimming.
func joinTokens(toks []token) string {
	var sb strings.Builder
	space := false
	for _, t := range toks {
		switch t.tt {
		case css.CommentToken:
			continue
		case css.WhitespaceToken:
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteString(t.data)
	}
	return sb.String()
}

// splitList splits tokens by top level commas (selector lists, keyframe
// offsets).
func splitList(toks []token) []string {
	var (
		parts []string
		start int
		depth int
	)
	flush := func(end int) {
		if s := joinTokens(toks[start:end]); s != "" {
			parts = append(parts, s)
		}
		start = end + 1
	}
	for i, t := range toks {
		switch t.tt {
		case css.LeftParenthesisToken, css.LeftBracketToken, css.FunctionToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.CommaToken:
			if depth == 0 {
				flush(i)
			}
		}
	}
	flush(len(toks))
	return parts
}

func commentText(s string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, "/*"), "*/")
}
