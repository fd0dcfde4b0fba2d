package naming

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxBaseLength bounds a sanitized file name, excluding its extension.
const MaxBaseLength = 100

// UnknownImage is the fallback name and description for images that could not be described.
const UnknownImage = "unknown_image"

var (
	reSpaces      = regexp.MustCompile(` +`)
	reUnderscores = regexp.MustCompile(`_+`)
)

// Sanitize converts a description into a file name and appends ext unchanged.
// The base contains only [A-Za-z0-9_-], never exceeds MaxBaseLength, and never
// ends in an underscore. An empty base falls back to UnknownImage.
func Sanitize(description, ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(description) {
		switch {
		case r == '"' || r == '\'':
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(r)
		}
	}

	name := strings.TrimSpace(reSpaces.ReplaceAllString(b.String(), " "))
	name = strings.ReplaceAll(name, " ", "_")
	name = reUnderscores.ReplaceAllString(name, "_")
	if len(name) > MaxBaseLength {
		name = name[:MaxBaseLength]
	}
	name = strings.TrimRight(name, "_")
	if name == "" {
		name = UnknownImage
	}
	return name + ext
}
