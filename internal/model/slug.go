package model

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"unicode"
)

const (
	slugAlphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
	SlugSuffixLength = 5

	// FallbackSlugBase 名字裡沒有任何可用字元時的 slug 前綴
	FallbackSlugBase = "tamu"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Slugify lower-cases name and turns every whitespace run into a hyphen.
// Runes other than letters, digits, '-' and '_' are dropped so the result is
// one URL path segment; the hyphen runs this leaves behind are collapsed and
// trimmed. A name with nothing usable yields "".
func Slugify(name string) string {
	s := whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return -1
	}, s)
	return strings.Trim(hyphenRun.ReplaceAllString(s, "-"), "-")
}

// RandomSuffix returns n characters drawn uniformly from [0-9a-z].
func RandomSuffix(n int) (string, error) {
	max := big.NewInt(int64(len(slugAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(slugAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// NewGuestSlug builds "<slugified name>-<5 random base36 chars>".
func NewGuestSlug(name string) (string, error) {
	suffix, err := RandomSuffix(SlugSuffixLength)
	if err != nil {
		return "", err
	}
	base := Slugify(name)
	if base == "" {
		base = FallbackSlugBase
	}
	return base + "-" + suffix, nil
}
