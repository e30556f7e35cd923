package attrs

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/stoewer/go-strcase"
)

const keySeparator = ":"

// KeyPrefix derives the storage prefix for an owner type name. Package
// qualified names keep their segments: "catalog.FilmReview" and
// "Catalog::FilmReview" both map to "catalog/film_review". A digit followed
// by an upper-case letter starts a new word, so "Top10List" maps to
// "top10_list" and "MP3Player" to "mp3_player".
func KeyPrefix(typeName string) string {
	name := strings.TrimSpace(typeName)
	name = strings.ReplaceAll(name, "::", ".")
	name = strings.TrimPrefix(name, "*")
	segments := strings.Split(name, ".")
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		out = append(out, strcase.SnakeCase(splitAfterDigits(segment)))
	}
	return strings.Join(out, "/")
}

// splitAfterDigits inserts "_" between a digit and a following upper-case
// letter; strcase keeps such runs in one word.
func splitAfterDigits(segment string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range segment {
		if unicode.IsDigit(prev) && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// DeriveKey returns "<prefix>:<identity>:<name>". Prefix and name never carry
// the separator, so the identity is whatever sits between the first and last
// separator and distinct triples cannot collide.
func DeriveKey(prefix, identity, name string) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("%w: key for %s attribute %q", ErrMissingIdentity, prefix, name)
	}
	return prefix + keySeparator + identity + keySeparator + name, nil
}

func validateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name must not be empty", ErrInvalidName, kind)
	}
	if strings.Contains(name, keySeparator) {
		return fmt.Errorf("%w: %s name %q must not contain %q", ErrInvalidName, kind, name, keySeparator)
	}
	return nil
}
