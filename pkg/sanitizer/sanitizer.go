package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeID cleans an identifier taken from a path or a seed file. Ids are
// case sensitive, so only surrounding space and control characters go.
func SanitizeID(input string) string {
	p := Pipeline{
		dropControl,
		strings.TrimSpace,
	}
	return p.Apply(input)
}

// SanitizeRoomName collapses whitespace in a display name.
func SanitizeRoomName(input string) string {
	p := Pipeline{
		dropControlKeepSpace,
		TrimAndNormalize,
	}
	return p.Apply(input)
}

func dropControlKeepSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
