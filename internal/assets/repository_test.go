package assets

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths[T Requestable](rs []T) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Path()
	}
	return out
}

func TestFlavorPaths(t *testing.T) {
	standard, minified := FlavorPaths("~/Scripts/jquery-ui(.min).js")
	assert.Equal(t, "~/Scripts/jquery-ui.js", standard)
	assert.Equal(t, "~/Scripts/jquery-ui.min.js", minified)

	standard, minified = FlavorPaths("~/Scripts/jquery.js")
	assert.Equal(t, "~/Scripts/jquery.js", standard)
	assert.Empty(t, minified)
}

func TestBuild_OrdersDependenciesFirst(t *testing.T) {
	c := NewCatalog(emptyLoader())
	d0 := Must(c.AddScript("~/d0.js"))
	d1 := Must(c.AddScript("~/d1.js", d0))
	d2 := Must(c.AddScript("~/d2.js", d0))
	r := Must(c.AddScript("~/r.js", d1, d2))
	other := Must(c.AddScript("~/other.js"))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	want := []string{"~/d0.js", "~/d1.js", "~/d2.js", "~/r.js", "~/other.js"}
	if diff := cmp.Diff(want, paths(repo.Resources())); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	for _, res := range []*Resource{d0, d1, d2, r, other} {
		for _, dep := range res.Dependencies() {
			assert.Less(t, repo.Index(dep), repo.Index(res), "%s must come after %s", res, dep)
		}
	}
}

func TestBuild_OrderIsStableAcrossBuilds(t *testing.T) {
	declare := func() *Catalog {
		c := NewCatalog(emptyLoader())
		z := Must(c.AddScript("~/z.js"))
		y := Must(c.AddScript("~/y.js"))
		Must(c.AddScript("~/x.js", y))
		require.NoError(t, c.Link(y, z))
		return c
	}

	first, err := declare().Commit(context.Background())
	require.NoError(t, err)
	for range 10 {
		again, err := declare().Commit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, paths(first.Resources()), paths(again.Resources()))
	}
	assert.Equal(t, []string{"~/z.js", "~/y.js", "~/x.js"}, paths(first.Resources()))
}

func TestBuild_DetectsCycle(t *testing.T) {
	a := &Resource{typ: Script, path: "A"}
	b := &Resource{typ: Script, path: "B"}
	cc := &Resource{typ: Script, path: "C"}
	a.deps = []*Resource{b}
	b.deps = []*Resource{cc}
	cc.deps = []*Resource{a}

	_, err := Build(context.Background(), []Requestable{a, b, cc}, emptyLoader())

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"A", "B", "C", "A"}, cycleErr.Cycle)
	assert.Contains(t, err.Error(), "A->B->C->A")
}

func TestBuild_RejectsUndeclaredMembers(t *testing.T) {
	dep := &Resource{typ: Script, path: "~/dep.js"}
	r := &Resource{typ: Script, path: "~/r.js", deps: []*Resource{dep}}

	_, err := Build(context.Background(), []Requestable{r}, emptyLoader())
	require.ErrorIs(t, err, ErrUndeclared)
}

func TestBuild_LoadFailureNamesPath(t *testing.T) {
	c := NewCatalog(MapLoader{"~/site.js": "x"})
	Must(c.AddScript("~/site(.min).js"))

	_, err := c.Commit(context.Background())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "~/site.min.js", loadErr.Path)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRepository_FlavorsAndFallback(t *testing.T) {
	c := NewCatalog(MapLoader{
		"~/a.js":     "standard a",
		"~/a.min.js": "min a",
		"~/b.js":     "only b",
	})
	a := Must(c.AddScript("~/a(.min).js"))
	b := Must(c.AddScript("~/b.js"))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "~/a.js", repo.FlavoredPath(a, Standard))
	assert.Equal(t, "~/a.min.js", repo.FlavoredPath(a, Minified))
	assert.Equal(t, "~/b.js", repo.FlavoredPath(b, Standard))
	assert.Equal(t, "~/b.js", repo.FlavoredPath(b, Minified))

	assert.Equal(t, Content{Body: "min a", ContentType: "text/javascript"}, repo.Fetch(a))
	assert.Equal(t, "standard a", repo.FetchFlavor(a, Standard).Body)
	assert.Equal(t, "only b", repo.Fetch(b).Body)
}

func TestRepository_HashIsMD5OfStandardContent(t *testing.T) {
	c := NewCatalog(MapLoader{"~/a.js": "standard", "~/a.min.js": "minified"})
	a := Must(c.AddScript("~/a(.min).js"))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	sum := md5.Sum([]byte("standard"))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), repo.Hash(a))
}

func TestRepository_BundleHashIsXOROfMembers(t *testing.T) {
	c := NewCatalog(MapLoader{"~/a.js": "a", "~/b.js": "b"})
	a := Must(c.AddScript("~/a.js"))
	b := Must(c.AddScript("~/b.js"))
	ab := Must(c.AddBundle("~/ab", a, b))
	ba := Must(c.AddBundle("~/ba", b, a))
	nested := Must(c.AddBundle("~/nested", ab))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	ha, hb := md5.Sum([]byte("a")), md5.Sum([]byte("b"))
	var want [md5.Size]byte
	for i := range want {
		want[i] = ha[i] ^ hb[i]
	}
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(want[:]), repo.Hash(ab))
	assert.Equal(t, repo.Hash(ab), repo.Hash(ba), "XOR does not depend on member order")
	assert.Equal(t, repo.Hash(ab), repo.Hash(nested))
}

func TestRepository_BundleConcatenatesMinifiedInDeclarationOrder(t *testing.T) {
	c := NewCatalog(MapLoader{
		"~/a.js": "A;", "~/a.min.js": "a;",
		"~/b.js": "B;",
		"~/c.js": "C;",
	})
	a := Must(c.AddScript("~/a(.min).js"))
	b := Must(c.AddScript("~/b.js"))
	cc := Must(c.AddScript("~/c.js"))
	inner := Must(c.AddBundle("~/inner", a, b))
	outer := Must(c.AddBundle("~/outer", inner, cc))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Content{Body: "a;B;", ContentType: "text/javascript"}, repo.Fetch(inner))
	assert.Equal(t, "a;B;C;", repo.Fetch(outer).Body)
	assert.Equal(t, "~/outer", repo.FlavoredPath(outer, Standard))
}

func TestRepository_StylesheetBundleRebasesURLs(t *testing.T) {
	foo := `foo-element {
    prop1: url('img/image1.jpg')
    prop2: url('image1.jpg')
    prop3: url('../image1.jpg')
    prop4: url('/image1.jpg')
    prop5: url('http://example.com/image1.jpg')
}
`
	want := `foo-element {
    prop1: url('../img/image1.jpg')
    prop2: url('../image1.jpg')
    prop3: url('../../image1.jpg')
    prop4: url('/image1.jpg')
    prop5: url('http://example.com/image1.jpg')
}
foo-element {
    prop1: url('img/image1.jpg')
    prop2: url('image1.jpg')
    prop3: url('../image1.jpg')
    prop4: url('/image1.jpg')
    prop5: url('http://example.com/image1.jpg')
}
foo-element {
    prop1: url('sub/img/image1.jpg')
    prop2: url('sub/image1.jpg')
    prop3: url('image1.jpg')
    prop4: url('/image1.jpg')
    prop5: url('http://example.com/image1.jpg')
}
`
	c := NewCatalog(LoaderFunc(func(context.Context, string) (string, error) { return foo, nil }))
	foo1 := Must(c.AddStylesheet("~/foo"))
	foo2 := Must(c.AddStylesheet("~/css/foo"))
	foo3 := Must(c.AddStylesheet("~/css/sub/foo"))
	bundle := Must(c.AddBundle("~/css/styles.css", foo1, foo2, foo3))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, want, repo.Fetch(bundle).Body)
	assert.Equal(t, "text/css", repo.Fetch(bundle).ContentType)
	assert.Equal(t, foo, repo.Fetch(foo1).Body, "resources are served unmodified")
}

func TestRepository_QuotingNormalizedInBundle(t *testing.T) {
	foo := `foo-element {
    prop1: url('../img/image1.jpg')
    prop2: url(../img/image1.jpg)
    prop3: url("../img/image1.jpg")
}
`
	c := NewCatalog(MapLoader{"~/css/foo": foo})
	res := Must(c.AddStylesheet("~/css/foo"))
	bundle := Must(c.AddBundle("~/css/styles.css", res))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, foo, repo.Fetch(res).Body)
	assert.Equal(t, `foo-element {
    prop1: url('../img/image1.jpg')
    prop2: url('../img/image1.jpg')
    prop3: url('../img/image1.jpg')
}
`, repo.Fetch(bundle).Body)
}

func TestRepository_FetchIsIdempotent(t *testing.T) {
	c := NewCatalog(MapLoader{"~/a.css": "a{background:url(x.png)}", "~/b/b.css": "b{}"})
	a := Must(c.AddStylesheet("~/a.css"))
	b := Must(c.AddStylesheet("~/b/b.css"))
	bundle := Must(c.AddBundle("~/b/all.css", a, b))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	first := repo.Fetch(bundle)
	for range 5 {
		assert.Equal(t, first, repo.Fetch(bundle))
	}
	assert.Equal(t, "a{background:url('../x.png')}b{}", first.Body)
}

func TestRepository_LookupRoundTrip(t *testing.T) {
	c := NewCatalog(MapLoader{"~/a.js": "a", "~/a.min.js": "min", "~/b.js": "b"})
	a := Must(c.AddScript("~/a(.min).js"))
	b := Must(c.AddScript("~/b.js"))
	bundle := Must(c.AddBundle("~/bundles/ab", a, b))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	for _, r := range []Requestable{a, b, bundle} {
		for _, f := range []Flavor{Standard, Minified} {
			found, ok := repo.Find(repo.FlavoredPath(r, f))
			require.True(t, ok)
			assert.Same(t, r, found)
		}
		found, ok := repo.Find(r.Path())
		require.True(t, ok)
		assert.Same(t, r, found)
	}

	e, ok := repo.Lookup("~/a.js")
	require.True(t, ok)
	assert.True(t, e.Concrete)
	assert.Equal(t, "a", repo.FetchEntry(e).Body)

	e, ok = repo.Lookup("~/a(.min).js")
	require.True(t, ok)
	assert.False(t, e.Concrete)
	assert.Equal(t, "min", repo.FetchEntry(e).Body)

	_, ok = repo.Find("~/unknown.js")
	assert.False(t, ok)

	assert.Equal(t, []string{"~/a(.min).js", "~/a.js", "~/a.min.js", "~/b.js", "~/bundles/ab"}, repo.Paths())
}

func TestRepository_DeclaredPathShadowsFlavorPath(t *testing.T) {
	c := NewCatalog(MapLoader{"~/a.js": "plain", "~/a.min.js": "min"})
	plain := Must(c.AddScript("~/a.js"))
	Must(c.AddScript("~/a(.min).js"))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	found, ok := repo.Find("~/a.js")
	require.True(t, ok)
	assert.Same(t, plain, found)
}

func TestExpandResources_DepthFirst(t *testing.T) {
	a := &Resource{typ: Script, path: "a"}
	b := &Resource{typ: Script, path: "b"}
	cc := &Resource{typ: Script, path: "c"}
	inner := &Bundle{typ: Script, path: "inner", contents: []Requestable{a, b}}

	got := ExpandResources(inner, cc)

	assert.Equal(t, []string{"a", "b", "c"}, paths(got))
}

func TestRequestables_FlattensGroups(t *testing.T) {
	a := &Resource{typ: Script, path: "a"}
	css := &Resource{typ: Stylesheet, path: "a.css"}
	bundle := &Bundle{typ: Script, path: "bundle", contents: []Requestable{a}}
	inner := &Group{contents: []Requirable{css, bundle}}
	outer := &Group{contents: []Requirable{inner, a}}

	assert.Equal(t, []string{"a.css", "bundle", "a"}, paths(Requestables(outer)))
	assert.Equal(t, []string{"a"}, paths(Requestables(a)))
}
