package album

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// FileName maps a catalog position to its destination file name. The
// visible index is 1-based and zero-padded to at least two digits so the
// names sort in album order. ext may be passed with or without a leading
// dot; an empty ext yields a bare name.
func FileName(position, total int, ext string) string {
	digits := decimalDigits(total)
	if digits < 2 {
		digits = 2
	}

	name := fmt.Sprintf("%0*d", digits, position+1)

	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// ExtFromURL extracts the lower-cased extension from a URL's path,
// without the leading dot. Returns "" when the path has no suffix or the
// URL does not parse.
func ExtFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
}

func decimalDigits(n int) int {
	if n < 0 {
		n = -n
	}
	digits := 1
	for n >= 10 {
		n /= 10
		digits++
	}
	return digits
}
