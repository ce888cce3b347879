// Package tokenizer turns free-text episode descriptions into the token
// counts the similarity pipeline consumes.
//
// Text is accent-folded and lowercased, split into sentences, and stripped
// of sentences that carry links or are mostly promotional. The remaining
// words are filtered against stopword and promotional lists and optionally
// stemmed. A BPE mode splits the kept text into cl100k pieces instead.
package tokenizer

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	tiktoken "github.com/tiktoken-go/tokenizer"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/botirk38/podcastsim/types"
)

// Mode selects how kept text is split into tokens
type Mode int

const (
	// ModeWords keeps dictionary-like words (default)
	ModeWords Mode = iota
	// ModeBPE keeps cl100k byte-pair pieces
	ModeBPE
)

const (
	defaultMinLength = 3
	defaultMaxLength = 20

	// promoDensityLimit is the share of promotional words, in percent, at
	// which a sentence is dropped
	promoDensityLimit = 40
)

var (
	sentenceBreak = regexp.MustCompile(`[.!?]+\s+`)
	urlPattern    = regexp.MustCompile(`https?://\S+|www\.\S+`)
	densityWord   = regexp.MustCompile(`[a-z0-9]+(?:[-'][a-z0-9]+)*`)
	specialChars  = regexp.MustCompile(`[^\w\s.,!?]`)
	validToken    = regexp.MustCompile(`^[a-z0-9]+$`)
)

// Option configures a Tokenizer
type Option func(*Tokenizer) error

// Tokenizer extracts tokens from descriptions. It is immutable after New
// and safe for concurrent use.
type Tokenizer struct {
	mode      Mode
	stem      bool
	minLength int
	maxLength int
	stopwords map[string]struct{}
	promo     map[string]struct{}
	codec     tiktoken.Codec
}

// New creates a word-mode tokenizer and applies opts
func New(opts ...Option) (*Tokenizer, error) {
	t := &Tokenizer{
		mode:      ModeWords,
		minLength: defaultMinLength,
		maxLength: defaultMaxLength,
		stopwords: wordSet(englishStopwords),
		promo:     wordSet(promoKeywords),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WithStemming reduces each kept word to its English snowball stem
func WithStemming() Option {
	return func(t *Tokenizer) error {
		t.stem = true
		return nil
	}
}

// WithBPE switches to cl100k byte-pair pieces
func WithBPE() Option {
	return func(t *Tokenizer) error {
		codec, err := tiktoken.Get(tiktoken.Cl100kBase)
		if err != nil {
			return err
		}
		t.mode = ModeBPE
		t.codec = codec
		return nil
	}
}

// WithStopwords adds words that never become tokens
func WithStopwords(words ...string) Option {
	return func(t *Tokenizer) error {
		for _, w := range words {
			t.stopwords[strings.ToLower(w)] = struct{}{}
		}
		return nil
	}
}

// WithLengthBounds sets the inclusive token length range
func WithLengthBounds(minLen, maxLen int) Option {
	return func(t *Tokenizer) error {
		if minLen < 1 || maxLen < minLen {
			return errors.New("invalid token length bounds")
		}
		t.minLength = minLen
		t.maxLength = maxLen
		return nil
	}
}

// Mode returns the tokenizer's splitting mode
func (t *Tokenizer) Mode() Mode {
	return t.mode
}

// Tokenize returns the tokens of text in order of appearance
func (t *Tokenizer) Tokenize(text string) []string {
	kept := t.keptSentences(normalize(text))
	if len(kept) == 0 {
		return nil
	}
	cleaned := specialChars.ReplaceAllString(strings.Join(kept, " "), "")

	if t.mode == ModeBPE {
		return t.pieces(cleaned)
	}

	var tokens []string
	for _, word := range strings.FieldsFunc(cleaned, isWordBreak) {
		if !t.keep(word) {
			continue
		}
		if t.stem {
			word = english.Stem(word, false)
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// Count tokenizes text and counts each distinct token
func (t *Tokenizer) Count(text string) types.TokenCounts {
	counts := make(types.TokenCounts)
	for _, token := range t.Tokenize(text) {
		counts[token]++
	}
	return counts
}

func (t *Tokenizer) keptSentences(text string) []string {
	var kept []string
	for _, sentence := range sentenceBreak.Split(text, -1) {
		if sentence == "" || urlPattern.MatchString(sentence) {
			continue
		}
		if t.promoDensity(sentence) >= promoDensityLimit {
			continue
		}
		kept = append(kept, sentence)
	}
	return kept
}

// promoDensity returns the percentage of words in sentence that are
// promotional keywords
func (t *Tokenizer) promoDensity(sentence string) float64 {
	words := densityWord.FindAllString(sentence, -1)
	if len(words) == 0 {
		return 0
	}
	var promo int
	for _, w := range words {
		if _, ok := t.promo[w]; ok {
			promo++
		}
	}
	return float64(promo) / float64(len(words)) * 100
}

func (t *Tokenizer) keep(word string) bool {
	if len(word) < t.minLength || len(word) > t.maxLength {
		return false
	}
	if !validToken.MatchString(word) {
		return false
	}
	if _, ok := t.stopwords[word]; ok {
		return false
	}
	if _, ok := t.promo[word]; ok {
		return false
	}
	return true
}

func (t *Tokenizer) pieces(text string) []string {
	_, pieces, err := t.codec.Encode(text)
	if err != nil {
		return nil
	}

	var tokens []string
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if !validToken.MatchString(p) {
			continue
		}
		if _, ok := t.stopwords[p]; ok {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens
}

// normalize strips accents, lowercases and collapses whitespace
func normalize(text string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, text)
	if err != nil {
		folded = text
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

func isWordBreak(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
}
