// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize cleans a raw project description and segments it into
// sentences of lowercased tokens. Every token keeps the byte range it came
// from so later stages can attach source spans to what they find.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/requirements-engine/pkg/types"
)

// Comma is the matching form of a list separator token.
const Comma = ","

// Token is one word, comma or quoted literal. Start and End are byte offsets
// into Document.Text.
type Token struct {
	// Norm is the matching form: lowercased, possessive dropped. For quoted
	// literals it is the lowercased literal with non-word runes folded to "_".
	Norm string

	// Raw is the source text of the token. For quoted literals it is the
	// literal without its quotes.
	Raw string

	Quoted bool
	Start  int
	End    int
}

// IsComma reports whether the token is a list separator.
func (t Token) IsComma() bool { return !t.Quoted && t.Norm == Comma }

// IsWord reports whether the token is an unquoted word.
func (t Token) IsWord() bool { return !t.Quoted && t.Norm != Comma }

// Sentence is an ordered token stream.
type Sentence struct {
	Index  int
	Tokens []Token

	// Text is the matching forms joined by single spaces.
	Text string

	offsets []int
}

// Len returns the number of tokens.
func (s Sentence) Len() int { return len(s.Tokens) }

// Word returns the matching form of token i, or "" when i is out of range.
func (s Sentence) Word(i int) string {
	if i < 0 || i >= len(s.Tokens) {
		return ""
	}
	return s.Tokens[i].Norm
}

// TokenSpan returns the source span covering tokens [i, j).
func (s Sentence) TokenSpan(i, j int) types.Span {
	if len(s.Tokens) == 0 {
		return types.Span{Sentence: s.Index}
	}
	i = clamp(i, 0, len(s.Tokens)-1)
	j = clamp(j, i+1, len(s.Tokens))
	return types.Span{
		Sentence: s.Index,
		Start:    s.Tokens[i].Start,
		End:      s.Tokens[j-1].End,
	}
}

// Span maps the byte range [a, b) of Text back to a source span. Tokens that
// overlap the range are included.
func (s Sentence) Span(a, b int) types.Span {
	first, last := -1, -1
	for i, off := range s.offsets {
		end := off + len(s.Tokens[i].Norm)
		if end <= a || off >= b {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return types.Span{Sentence: s.Index}
	}
	return s.TokenSpan(first, last+1)
}

// Contains reports whether phrase occurs in the sentence on token boundaries.
func (s Sentence) Contains(phrase string) bool {
	_, ok := s.Find(phrase)
	return ok
}

// Find locates phrase on token boundaries and returns its source span.
func (s Sentence) Find(phrase string) (types.Span, bool) {
	if phrase == "" {
		return types.Span{}, false
	}
	padded := " " + s.Text + " "
	idx := strings.Index(padded, " "+phrase+" ")
	if idx < 0 {
		return types.Span{}, false
	}
	return s.Span(idx, idx+len(phrase)), true
}

// Document is a normalized description.
type Document struct {
	// Text is the NFKC-normalized input. All spans index into it.
	Text      string
	Sentences []Sentence
}

// Find returns the span of the first sentence containing phrase.
func (d Document) Find(phrase string) (types.Span, bool) {
	for _, s := range d.Sentences {
		if sp, ok := s.Find(phrase); ok {
			return sp, true
		}
	}
	return types.Span{}, false
}

// Contains reports whether any sentence contains phrase.
func (d Document) Contains(phrase string) bool {
	_, ok := d.Find(phrase)
	return ok
}

// Normalize applies NFKC and segments raw into sentences. It never fails;
// empty or whitespace-only input yields a document with no sentences.
func Normalize(raw string) Document {
	text := norm.NFKC.String(raw)
	doc := Document{Text: text}

	var cur []Token
	flush := func() {
		if hasWord(cur) {
			doc.Sentences = append(doc.Sentences, newSentence(len(doc.Sentences), cur))
		}
		cur = nil
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case isWordRune(r):
			tok, next := scanWord(text, i)
			if tok.Norm != "" {
				cur = append(cur, tok)
			}
			i = next
			continue
		case isQuote(r):
			if tok, next, ok := scanQuoted(text, i, size); ok {
				if tok.Norm != "" {
					cur = append(cur, tok)
				}
				i = next
				continue
			}
		case r == ',':
			cur = append(cur, Token{Norm: Comma, Raw: Comma, Start: i, End: i + size})
		case r == '\n' || r == '!' || r == '?' || r == ';':
			flush()
		case r == '.':
			next, _ := utf8.DecodeRuneInString(text[i+size:])
			if i+size >= len(text) || unicode.IsSpace(next) {
				flush()
			}
		}
		i += size
	}
	flush()
	return doc
}

func newSentence(idx int, toks []Token) Sentence {
	toks = trimCommas(toks)
	s := Sentence{Index: idx, Tokens: toks, offsets: make([]int, len(toks))}
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		s.offsets[i] = b.Len()
		b.WriteString(t.Norm)
	}
	s.Text = b.String()
	return s
}

func trimCommas(toks []Token) []Token {
	for len(toks) > 0 && toks[0].IsComma() {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].IsComma() {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func hasWord(toks []Token) bool {
	for _, t := range toks {
		if !t.IsComma() {
			return true
		}
	}
	return false
}

// scanWord reads a word run starting at i. Inner hyphens and apostrophes are
// kept when both neighbours are word runes; a possessive 's is dropped.
func scanWord(text string, i int) (Token, int) {
	j := i
	for j < len(text) {
		r, size := utf8.DecodeRuneInString(text[j:])
		if isWordRune(r) {
			j += size
			continue
		}
		if isJoiner(r) && j > i {
			next, _ := utf8.DecodeRuneInString(text[j+size:])
			if j+size < len(text) && isWordRune(next) {
				j += size
				continue
			}
		}
		break
	}
	raw := text[i:j]
	lower := strings.ToLower(raw)
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(lower, suffix) && len(lower) > len(suffix) {
			lower = strings.TrimSuffix(lower, suffix)
			break
		}
	}
	return Token{Norm: lower, Raw: raw, Start: i, End: j}, j
}

// scanQuoted reads a double-quoted literal whose opening quote is at i.
func scanQuoted(text string, i, size int) (Token, int, bool) {
	start := i + size
	for j := start; j < len(text); {
		r, sz := utf8.DecodeRuneInString(text[j:])
		if r == '\n' {
			return Token{}, 0, false
		}
		if isQuote(r) {
			literal := strings.TrimSpace(text[start:j])
			return Token{
				Norm:   Fold(literal),
				Raw:    literal,
				Quoted: true,
				Start:  i,
				End:    j + sz,
			}, j + sz, true
		}
		j += sz
	}
	return Token{}, 0, false
}

// Fold lowercases s and replaces every run of non-word runes with a single
// underscore, trimming underscores at both ends.
func Fold(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if isWordRune(r) && r != '_' {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isJoiner(r rune) bool {
	return r == '-' || r == '\'' || r == '’'
}

func isQuote(r rune) bool {
	return r == '"' || r == '“' || r == '”'
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
