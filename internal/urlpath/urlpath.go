// Package urlpath holds the path arithmetic used when resources move into a
// bundle that is served from a different location: relative directory
// fragments, URL concatenation and simplification, and rewriting of
// url(...) references inside stylesheets.
//
// Everything here is a pure function over strings.
package urlpath

import (
	"path"
	"strings"
)

// RelativePathFragment returns the directory fragment that has to be put in
// front of a URL written relative to target's directory so that it resolves
// to the same location when read from source's directory.
//
// The result is "." for siblings, a plain subdirectory path for
// descendants and a chain of ".." for ancestors.
func RelativePathFragment(source, target string) string {
	from := dirSegments(source)
	to := dirSegments(target)
	k := commonPrefix(from, to)

	parts := make([]string, 0, len(from)-k+len(to)-k)
	for range from[k:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[k:]...)

	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

// ConcatURLs prefixes url with fragment and simplifies the result. Absolute
// paths and fully qualified URLs (anything with a scheme separator, which
// includes data: URIs) are returned unchanged.
func ConcatURLs(url, fragment string) string {
	if strings.HasPrefix(url, "/") || strings.Contains(url, ":") {
		return url
	}
	return SimplifyURL(fragment + "/" + url)
}

// SimplifyURL removes "." segments and cancels ".." segments against the
// segment before them. A ".." with nothing left to cancel is kept, so
// "a/../../b" becomes "../b". Query and fragment are carried over untouched.
func SimplifyURL(url string) string {
	rest := ""
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url, rest = url[:i], url[i:]
	}

	absolute := strings.HasPrefix(url, "/")
	if absolute {
		url = url[1:]
	}

	segments := strings.Split(url, "/")
	stack := make([]string, 0, len(segments))
	trailingDir := false
	for _, seg := range segments {
		trailingDir = false
		switch seg {
		case ".":
			trailingDir = true
		case "..":
			trailingDir = true
			switch {
			case len(stack) > 0 && stack[len(stack)-1] != "..":
				stack = stack[:len(stack)-1]
			case absolute:
				// Nothing above the root.
			default:
				stack = append(stack, "..")
			}
		default:
			stack = append(stack, seg)
		}
	}
	if trailingDir && len(stack) > 0 {
		stack = append(stack, "")
	}

	out := strings.Join(stack, "/")
	switch {
	case absolute:
		out = "/" + out
	case out == "":
		out = "./"
	}
	return out + rest
}

// dirSegments returns the directory part of p split into segments. The
// last segment of p is treated as a file name.
func dirSegments(p string) []string {
	p = path.Clean(strings.TrimPrefix(p, "/"))
	segs := strings.Split(p, "/")
	return segs[:len(segs)-1]
}

func commonPrefix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
