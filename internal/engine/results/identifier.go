package results

import (
	"strings"
	"unicode"
)

// Slug lowercases s and joins its words with single hyphens. Any rune that is
// not a letter or digit separates words, as does a camel-case boundary, so
// "cc-button", "ccButton" and "CC  Button" all map to "cc-button".
func Slug(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	pendingSep := false
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSep = b.Len() > 0
			continue
		}
		if b.Len() > 0 && !pendingSep && camelBoundary(runes, i) {
			pendingSep = true
		}
		if pendingSep {
			b.WriteByte('-')
			pendingSep = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func camelBoundary(runes []rune, i int) bool {
	cur, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(cur) {
		return false
	}
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	// "HTMLButton": split before the last capital of an acronym.
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// BuildID derives the stable record identifier from its identifying fields.
func BuildID(componentTagName, storyName string, viewport Viewport, browser Browser) string {
	return Slug(strings.Join([]string{componentTagName, storyName, string(viewport), string(browser)}, "-"))
}

// StoryDisplayName turns a story name into a label: "defaultStory" becomes
// "Default Story".
func StoryDisplayName(storyName string) string {
	words := strings.Split(Slug(storyName), "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
