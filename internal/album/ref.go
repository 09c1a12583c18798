package album

import (
	"fmt"
	"strings"

	"imgur-archiver/internal/model"
)

// ParseReference normalizes a user-supplied album reference. It accepts a
// bare identifier, a full album URL, or a full gallery URL; the URL forms
// contribute a kind hint for the lookup endpoint. No network access.
func ParseReference(input string) (model.Reference, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return model.Reference{}, fmt.Errorf("%w: empty input", model.ErrInvalidReference)
	}

	if isIdentifier(s) {
		return model.Reference{ID: s, Kind: model.KindUnknown}, nil
	}

	idx := strings.LastIndex(s, "/")
	if idx < 0 {
		return model.Reference{}, fmt.Errorf("%w: %q", model.ErrInvalidReference, input)
	}

	id := s[idx+1:]
	if !isIdentifier(id) {
		return model.Reference{}, fmt.Errorf("%w: %q", model.ErrInvalidReference, input)
	}

	kind := model.KindUnknown
	switch {
	case strings.Contains(s, "/gallery/"):
		kind = model.KindGallery
	case strings.Contains(s, "/a/"):
		kind = model.KindAlbum
	}

	return model.Reference{ID: id, Kind: kind}, nil
}

// isIdentifier reports whether s is a non-empty ASCII alphanumeric token,
// the identifier format the remote service uses. Anything passing this
// check is safe as a directory name.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
