// Package lexer streams Jack source text into a sequence of classified
// tokens with one-token lookahead, discarding whitespace and comments as
// it goes.
//
// A small io.Reader wrapper strips line and block comments ahead of time,
// and a bufio.Scanner with a custom SplitFunc classifies the remaining
// text one maximal token at a time using an ordered, longest-match set
// of regexps. Classification and lookup stay in lockstep via
// regexKinds.
package lexer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jacktools/jackc/internal/jackerr"
	"github.com/jacktools/jackc/internal/token"
)

var (
	keywordRegex  = regexp.MustCompile(`(class|constructor|function|method|field|static|var|int|char|boolean|void|true|false|null|this|let|do|if|else|while|return)`)
	symbolRegex   = regexp.MustCompile(`[{}\[\]().,;+\-*/&|<>=~]`)
	intConstRegex = regexp.MustCompile(`\d+`)
	strConstRegex = regexp.MustCompile(`"[^"\n]*"`)
	identRegex    = regexp.MustCompile(`[a-zA-Z_]\w*`)

	// On a tie in match start the longer match wins; on a tie in both
	// start and length the earlier entry wins — this is what lets a
	// keyword win over an identical identifier match at the same position.
	regexes = []*regexp.Regexp{keywordRegex, symbolRegex, intConstRegex, strConstRegex, identRegex}

	regexKinds = map[*regexp.Regexp]token.Kind{
		keywordRegex:  token.Keyword,
		symbolRegex:   token.Symbol,
		intConstRegex: token.IntConst,
		strConstRegex: token.StringConst,
		identRegex:    token.Identifier,
	}

	whitespaceRegex = regexp.MustCompile(`^\s*$`)
)

func init() {
	for _, re := range regexes {
		re.Longest()
	}
}

// MaxIntConst is the largest value a Jack integer constant may hold (a
// signed 16 bit machine word's positive half).
const MaxIntConst = 32767

// commentStrippingReader discards // line comments and /* */ block
// comments from the underlying reader before the scanner ever sees them.
// Text between double quotes on one line is passed through untouched.
type commentStrippingReader struct {
	r        *bufio.Reader
	inString bool
}

func newCommentStrippingReader(r io.Reader) *commentStrippingReader {
	return &commentStrippingReader{r: bufio.NewReader(r)}
}

func (r *commentStrippingReader) Read(b []byte) (int, error) {
	var (
		err  error
		char rune
		n    int
	)

	i := 0
	for i < cap(b) {
		char, n, err = r.r.ReadRune()
		if n == 0 {
			break
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}

		switch char {
		case '"':
			r.inString = !r.inString
		case '\n':
			r.inString = false
		}

		if char == '/' && !r.inString {
			next, _, nextErr := r.r.ReadRune()
			switch {
			case nextErr != nil && !errors.Is(nextErr, io.EOF):
				return i, nextErr
			case nextErr != nil:
				err = io.EOF
			case next == '/':
				if _, e := r.r.ReadString('\n'); e != nil && !errors.Is(e, io.EOF) {
					return i, e
				}
				continue
			case next == '*':
				if e := skipBlockComment(r.r); e != nil {
					return i, e
				}
				continue
			default:
				if e := r.r.UnreadRune(); e != nil {
					return i, e
				}
				err = nil
			}
		}

		if i+n <= len(b) {
			i += utf8.EncodeRune(b[i:], char)
			if errors.Is(err, io.EOF) {
				break
			}
		} else {
			if e := r.r.UnreadRune(); e != nil {
				return i, nil
			}
			break
		}
	}

	return i, err
}

func skipBlockComment(r *bufio.Reader) error {
	for {
		str, err := r.ReadString('/')
		if err != nil {
			return fmt.Errorf("%w: unterminated block comment", jackerr.ErrLexical)
		}
		if len(str) >= 2 && str[len(str)-2] == '*' {
			return nil
		}
	}
}

// Lexer is a streaming tokenizer with one-token-lookahead access via
// Token/Scan.
type Lexer struct {
	scanner *bufio.Scanner
	current token.Token
	err     error
}

// New wraps r as a token stream.
func New(r io.Reader) *Lexer {
	stripped := newCommentStrippingReader(r)
	scanner := bufio.NewScanner(stripped)
	scanner.Split(splitToken)
	return &Lexer{scanner: scanner}
}

// Scan advances to the next token, returning false at end of input or on
// the first lexical error (see Err).
func (l *Lexer) Scan() bool {
	if l.err != nil {
		return false
	}
	for l.scanner.Scan() {
		tok, err := classify(l.scanner.Text())
		if err != nil {
			l.err = err
			return false
		}
		l.current = tok
		return true
	}
	if err := l.scanner.Err(); err != nil {
		l.err = fmt.Errorf("%w: %v", jackerr.ErrLexical, err)
	}
	return false
}

// Token returns the current token. Its value is undefined before the
// first Scan or after Scan has returned false.
func (l *Lexer) Token() token.Token {
	return l.current
}

// Err returns the first lexical error encountered, or nil.
func (l *Lexer) Err() error {
	return l.err
}

func matchToken(s string) (start, end int, kind token.Kind, err error) {
	bestStart, bestEnd := len(s)+1, len(s)+1
	var bestRegex *regexp.Regexp

	for _, re := range regexes {
		loc := re.FindStringIndex(s)
		if loc == nil {
			continue
		}
		if loc[0] < bestStart || (loc[0] == bestStart && (loc[1]-loc[0]) > (bestEnd-bestStart)) {
			bestStart, bestEnd, bestRegex = loc[0], loc[1], re
		}
	}

	if bestRegex == nil {
		return 0, 0, 0, fmt.Errorf("%w: no token found in %q", jackerr.ErrLexical, s)
	}
	if !whitespaceRegex.MatchString(s[:bestStart]) {
		return 0, 0, 0, fmt.Errorf("%w: stray character before %q in %q", jackerr.ErrLexical, s[bestStart:bestEnd], s)
	}

	return bestStart, bestEnd, regexKinds[bestRegex], nil
}

func splitToken(data []byte, atEOF bool) (advance int, tokenBytes []byte, err error) {
	s := string(data)
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	if len(trimmed) == 0 {
		if atEOF {
			return len(data), nil, nil
		}
		return 0, nil, nil
	}

	start, end, _, matchErr := matchToken(trimmed)
	if matchErr != nil {
		if atEOF {
			return 0, nil, matchErr
		}
		return 0, nil, nil
	}
	// A token that runs to the end of the buffered data may continue in
	// the next read; ask for more input before committing to it.
	if !atEOF && end == len(trimmed) {
		return 0, nil, nil
	}

	leading := len(s) - len(trimmed)
	advance = leading + end
	tokenBytes = []byte(trimmed[start:end])
	return advance, tokenBytes, nil
}

func classify(lexeme string) (token.Token, error) {
	start, end, kind, err := matchToken(lexeme)
	if err != nil {
		return token.Token{}, err
	}

	value := lexeme[start:end]
	if kind == token.StringConst {
		value = value[1 : len(value)-1]
	}
	if kind == token.IntConst {
		n, convErr := strconv.Atoi(value)
		if convErr != nil || n > MaxIntConst {
			return token.Token{}, fmt.Errorf("%w: integer constant %q out of range", jackerr.ErrLexical, value)
		}
	}

	return token.Token{Kind: kind, Value: value}, nil
}
