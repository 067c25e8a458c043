package urlpath

import (
	"regexp"
	"strings"
)

// cssURLRegex matches url(...) references with single, double or no quotes.
// The first group captures the bare URL.
var cssURLRegex = regexp.MustCompile(`url\(['"]?(.*?)['"]?\)`)

// RewriteCSSURLs passes every url(...) reference in css through rewrite and
// emits it back as url('<rewritten>'). Text outside the references is copied
// byte for byte.
func RewriteCSSURLs(css string, rewrite func(string) string) string {
	matches := cssURLRegex.FindAllStringSubmatchIndex(css, -1)
	if len(matches) == 0 {
		return css
	}

	var sb strings.Builder
	sb.Grow(len(css))
	last := 0
	for _, m := range matches {
		sb.WriteString(css[last:m[0]])
		sb.WriteString("url('")
		sb.WriteString(rewrite(css[m[2]:m[3]]))
		sb.WriteString("')")
		last = m[1]
	}
	sb.WriteString(css[last:])
	return sb.String()
}

// RebaseCSS rewrites the relative URLs of a stylesheet originally served from
// originalPath so that they keep pointing at the same files when the
// stylesheet is served from servedPath instead.
func RebaseCSS(css, originalPath, servedPath string) string {
	fragment := RelativePathFragment(servedPath, originalPath)
	return RewriteCSSURLs(css, func(u string) string {
		return ConcatURLs(u, fragment)
	})
}
