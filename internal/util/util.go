package util

import (
	"os"
	"path/filepath"
	"strings"
)

// ComputeBaseHref calculates the relative path to the site root
// so that CSS/JS links work correctly for pages at any depth.
// For example, a page at /posts/a/b.html would get a BaseHref of "../../".
func ComputeBaseHref(relPath string) string {
	dir := filepath.Dir(relPath)
	if dir == "." {
		return ""
	}
	depth := strings.Count(dir, string(os.PathSeparator)) + 1
	return strings.Repeat("../", depth)
}

// RelativeURI returns a link from the page served at base to the one served at
// to. Both are slash-separated URIs relative to the site root; fragments are
// dropped.
func RelativeURI(base, to string) string {
	if strings.HasPrefix(to, "/") {
		return to
	}
	base, _, _ = strings.Cut(base, "#")
	to, _, _ = strings.Cut(to, "#")
	b := strings.Split(base, "/")
	t := strings.Split(to, "/")

	// Drop common directories, never the last segment.
	n := len(b) - 1
	if len(t)-1 < n {
		n = len(t) - 1
	}
	i := 0
	for i < n && b[i] == t[i] {
		i++
	}
	b, t = b[i:], t[i:]

	if strings.Join(b, "/") == strings.Join(t, "/") && len(b) == len(t) {
		return ""
	}
	// f/index.html -> f/ is "./", not "".
	if len(b) == 1 && len(t) == 1 && t[0] == "" {
		return "./"
	}
	return strings.Repeat("../", len(b)-1) + strings.Join(t, "/")
}
