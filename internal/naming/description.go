package naming

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// NormalizeDescription folds a raw model response into lowercase ASCII word
// tokens separated by single spaces. Accents are stripped ("café" → "cafe"),
// quotes and punctuation other than '-' and '_' are dropped. An empty result
// becomes UnknownImage.
func NormalizeDescription(raw string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	out := strings.TrimSpace(reWhitespace.ReplaceAllString(b.String(), " "))
	if out == "" {
		return UnknownImage
	}
	return out
}

// Words splits a normalized description into its word tokens.
func Words(description string) []string {
	return strings.Fields(description)
}

// BaseName joins the first four words of a description with underscores. It
// is the shared stem for every file of a multi-member group and is capped at
// MaxBaseLength.
func BaseName(description string) string {
	words := Words(description)
	if len(words) > 4 {
		words = words[:4]
	}
	return capLength(strings.Join(words, "_"))
}

// GroupName returns the three most frequent words across all descriptions,
// joined with underscores and capped at MaxBaseLength. Ties keep the order in
// which words first appeared.
func GroupName(descriptions []string) string {
	type wordCount struct {
		word  string
		count int
	}

	counts := make(map[string]*wordCount)
	var order []*wordCount
	for _, desc := range descriptions {
		for _, w := range Words(desc) {
			wc, ok := counts[w]
			if !ok {
				wc = &wordCount{word: w}
				counts[w] = wc
				order = append(order, wc)
			}
			wc.count++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].count > order[j].count
	})

	n := len(order)
	if n > 3 {
		n = 3
	}
	top := make([]string, 0, n)
	for _, wc := range order[:n] {
		top = append(top, wc.word)
	}
	return capLength(strings.Join(top, "_"))
}

// capLength truncates an ASCII name to MaxBaseLength without leaving a
// trailing underscore.
func capLength(name string) string {
	if len(name) <= MaxBaseLength {
		return name
	}
	return strings.TrimRight(name[:MaxBaseLength], "_")
}
