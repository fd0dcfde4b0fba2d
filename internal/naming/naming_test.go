package naming

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name        string
		description string
		ext         string
		expected    string
	}{
		{"simple words", "red car parked", ".jpg", "red_car_parked.jpg"},
		{"lowercases", "Red CAR", ".png", "red_car.png"},
		{"preserves extension case", "red car", ".JPG", "red_car.JPG"},
		{"strips quotes", `"woman's" portrait`, ".jpg", "womans_portrait.jpg"},
		{"drops punctuation", "dragon, castle! (sunset)", ".png", "dragon_castle_sunset.png"},
		{"collapses whitespace", "  too   many\tspaces  ", ".jpg", "too_many_spaces.jpg"},
		{"collapses underscores", "a__b ___ c", ".jpg", "a_b_c.jpg"},
		{"keeps hyphens", "sci-fi city", ".webp", "sci-fi_city.webp"},
		{"empty falls back", "", ".jpg", "unknown_image.jpg"},
		{"only punctuation falls back", "!!! ???", ".bmp", "unknown_image.bmp"},
		{"non ascii dropped", "日本 cat", ".jpg", "cat.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.description, tt.ext))
		})
	}
}

func TestSanitize_TruncatesAndStripsTrailingUnderscore(t *testing.T) {
	// 99 letters then a space: the underscore lands at index 99 and must be trimmed.
	desc := strings.Repeat("a", 99) + " bbbbbbbbbb"
	got := Sanitize(desc, ".jpg")
	assert.Equal(t, strings.Repeat("a", 99)+".jpg", got)
}

func TestSanitize_CharacterSetAndLength(t *testing.T) {
	allowed := regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
	inputs := []string{
		"normal description",
		strings.Repeat("long words here ", 30),
		"émoji 🎨 mixed/with\\slashes:and*stars",
		"tabs\tand\nnewlines",
		"___",
	}
	for _, in := range inputs {
		got := Sanitize(in, "")
		assert.LessOrEqual(t, len(got), MaxBaseLength, "input %q", in)
		assert.Regexp(t, allowed, got, "input %q", in)
		assert.False(t, strings.HasSuffix(got, "_"), "input %q", in)
	}
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases and trims", "  Woman Cyberpunk Portrait \n", "woman cyberpunk portrait"},
		{"strips quotes", `"anime girl's school uniform"`, "anime girls school uniform"},
		{"folds accents", "Café crème brûlée", "cafe creme brulee"},
		{"drops punctuation keeps hyphen", "sci-fi, city: neon!", "sci-fi city neon"},
		{"collapses newlines", "red\n\ncar", "red car"},
		{"empty becomes unknown", "   ", UnknownImage},
		{"punctuation only becomes unknown", "...", UnknownImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDescription(tt.input))
		})
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "dragon_fantasy_mountain_castle", BaseName("dragon fantasy mountain castle sunset scene"))
	assert.Equal(t, "red_car", BaseName("red car"))
	assert.Equal(t, "unknown_image", BaseName(UnknownImage))
}

func TestDerivedNames_CappedAtMaxBaseLength(t *testing.T) {
	long := strings.Repeat("x", 300)

	base := BaseName(long + " car")
	assert.Len(t, base, MaxBaseLength)

	group := GroupName([]string{long, long, "red car"})
	assert.Len(t, group, MaxBaseLength)

	// A cut that lands on a separator drops it.
	word := strings.Repeat("y", MaxBaseLength-1)
	assert.Equal(t, word, BaseName(word+" tail"))
	assert.False(t, strings.HasSuffix(GroupName([]string{word + " tail"}), "_"))
}

func TestGroupName(t *testing.T) {
	tests := []struct {
		name     string
		descs    []string
		expected string
	}{
		{
			name:     "most frequent first",
			descs:    []string{"red car street", "red car night", "red truck"},
			expected: "red_car_street",
		},
		{
			name:     "ties keep first occurrence order",
			descs:    []string{"blue sky clouds", "sky blue sea"},
			expected: "blue_sky_clouds",
		},
		{
			name:     "fewer than three words",
			descs:    []string{"cat", "cat"},
			expected: "cat",
		},
		{
			name:     "frequency beats position",
			descs:    []string{"a b c d", "d d"},
			expected: "d_a_b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GroupName(tt.descs))
		})
	}
}

func TestGroupName_Deterministic(t *testing.T) {
	descs := []string{"portrait woman neon", "woman portrait purple", "neon city portrait"}
	first := GroupName(descs)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, GroupName(descs))
	}
}
