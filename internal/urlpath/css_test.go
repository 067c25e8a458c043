package urlpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteCSSURLs_NormalizesQuoting(t *testing.T) {
	in := `foo-element {
    prop1: url('../img/image1.jpg')
    prop2: url(../img/image1.jpg)
    prop3: url("../img/image1.jpg")
}
`
	want := `foo-element {
    prop1: url('../img/image1.jpg')
    prop2: url('../img/image1.jpg')
    prop3: url('../img/image1.jpg')
}
`
	assert.Equal(t, want, RewriteCSSURLs(in, Identity))
}

func TestRewriteCSSURLs_AppliesRewrite(t *testing.T) {
	in := `a{background:url(x.png) no-repeat} b{src:url("y.woff")}`

	got := RewriteCSSURLs(in, strings.ToUpper)

	assert.Equal(t, `a{background:url('X.PNG') no-repeat} b{src:url('Y.WOFF')}`, got)
}

func TestRewriteCSSURLs_LeavesTextWithoutURLsAlone(t *testing.T) {
	in := "body { color: red; }\n/* no references */\n"
	called := false

	got := RewriteCSSURLs(in, func(s string) string {
		called = true
		return s
	})

	assert.Equal(t, in, got)
	assert.False(t, called)
}

func TestRebaseCSS(t *testing.T) {
	in := `foo-element {
    prop1: url('img/image1.jpg')
    prop2: url('image1.jpg')
    prop3: url('../image1.jpg')
    prop4: url('/image1.jpg')
    prop5: url('http://example.com/image1.jpg')
}
`
	testCases := []struct {
		original string
		want     string
	}{
		{
			original: "~/foo",
			want: `foo-element {
    prop1: url('../img/image1.jpg')
    prop2: url('../image1.jpg')
    prop3: url('../../image1.jpg')
    prop4: url('/image1.jpg')
    prop5: url('http://example.com/image1.jpg')
}
`,
		},
		{
			original: "~/css/foo",
			want:     in,
		},
		{
			original: "~/css/sub/foo",
			want: `foo-element {
    prop1: url('sub/img/image1.jpg')
    prop2: url('sub/image1.jpg')
    prop3: url('image1.jpg')
    prop4: url('/image1.jpg')
    prop5: url('http://example.com/image1.jpg')
}
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.original, func(t *testing.T) {
			assert.Equal(t, tc.want, RebaseCSS(in, tc.original, "~/css/styles.css"))
		})
	}
}
