package tracker

import (
	"context"
	"testing"

	"github.com/specialistvlad/basicbundles/internal/assets"
	"github.com/specialistvlad/basicbundles/internal/urlpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is three small dependency diamonds and two bundles sharing bar.
type fixture struct {
	catalog *assets.Catalog
	repo    *assets.Repository

	foo12, foo1, foo2, foo *assets.Resource
	bar12, bar1, bar2, bar *assets.Resource
	baz12, baz1, baz2, baz *assets.Resource

	bundle1, bundle2 *assets.Bundle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := assets.NewCatalog(assets.LoaderFunc(func(_ context.Context, path string) (string, error) {
		return "/*" + path + "*/", nil
	}))
	f := &fixture{catalog: c}
	diamond := func(name string) (*assets.Resource, *assets.Resource, *assets.Resource, *assets.Resource) {
		d12 := assets.Must(c.AddScript("~/" + name + "12"))
		d1 := assets.Must(c.AddScript("~/"+name+"1", d12))
		d2 := assets.Must(c.AddScript("~/"+name+"2", d12))
		top := assets.Must(c.AddScript("~/"+name, d1, d2))
		return d12, d1, d2, top
	}
	f.foo12, f.foo1, f.foo2, f.foo = diamond("foo")
	f.bar12, f.bar1, f.bar2, f.bar = diamond("bar")
	f.baz12, f.baz1, f.baz2, f.baz = diamond("baz")
	f.bundle1 = assets.Must(c.AddBundle("~/bundle1", f.foo, f.bar))
	f.bundle2 = assets.Must(c.AddBundle("~/bundle2", f.bar, f.baz))

	repo, err := c.Commit(context.Background())
	require.NoError(t, err)
	f.repo = repo
	return f
}

func (f *fixture) fooTree() []*assets.Resource {
	return []*assets.Resource{f.foo12, f.foo1, f.foo2, f.foo}
}

func (f *fixture) barTree() []*assets.Resource {
	return []*assets.Resource{f.bar12, f.bar1, f.bar2, f.bar}
}

func (f *fixture) bazTree() []*assets.Resource {
	return []*assets.Resource{f.baz12, f.baz1, f.baz2, f.baz}
}

func concat(lists ...[]*assets.Resource) []*assets.Resource {
	var out []*assets.Resource
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func TestTracker_Dependencies(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		name           string
		require        []assets.Requirable
		wantExpanded   []*assets.Resource
		wantSimplified []assets.Requestable
	}{
		{
			name:           "whole tree",
			require:        []assets.Requirable{f.foo},
			wantExpanded:   f.fooTree(),
			wantSimplified: []assets.Requestable{f.foo},
		},
		{
			name:           "part of the tree",
			require:        []assets.Requirable{f.foo1},
			wantExpanded:   []*assets.Resource{f.foo12, f.foo1},
			wantSimplified: []assets.Requestable{f.foo1},
		},
		{
			name:           "duplicate require",
			require:        []assets.Requirable{f.foo, f.foo},
			wantExpanded:   f.fooTree(),
			wantSimplified: []assets.Requestable{f.foo},
		},
		{
			name:           "dependency required explicitly",
			require:        []assets.Requirable{f.foo12, f.foo},
			wantExpanded:   f.fooTree(),
			wantSimplified: []assets.Requestable{f.foo12, f.foo},
		},
		{
			name:           "required before its dependency",
			require:        []assets.Requirable{f.foo1, f.foo12},
			wantExpanded:   []*assets.Resource{f.foo12, f.foo1},
			wantSimplified: []assets.Requestable{f.foo1, f.foo12},
		},
		{
			name:           "bundle",
			require:        []assets.Requirable{f.bundle1},
			wantExpanded:   concat(f.fooTree(), f.barTree()),
			wantSimplified: []assets.Requestable{f.bundle1},
		},
		{
			name:           "duplicate bundle",
			require:        []assets.Requirable{f.bundle1, f.bundle1},
			wantExpanded:   concat(f.fooTree(), f.barTree()),
			wantSimplified: []assets.Requestable{f.bundle1},
		},
		{
			// Simplify does not notice that bar and foo1 are inside bundle1.
			name:           "bundle plus members",
			require:        []assets.Requirable{f.bar, f.bundle1, f.foo1},
			wantExpanded:   concat(f.fooTree(), f.barTree()),
			wantSimplified: []assets.Requestable{f.bar, f.bundle1, f.foo1},
		},
		{
			name:           "overlapping bundles",
			require:        []assets.Requirable{f.bundle1, f.bundle2},
			wantExpanded:   concat(f.fooTree(), f.barTree(), f.bazTree()),
			wantSimplified: []assets.Requestable{f.bundle1, f.bundle2},
		},
		{
			name:           "group",
			require:        []assets.Requirable{f.catalog.AddGroup(f.baz, f.foo)},
			wantExpanded:   concat(f.fooTree(), f.bazTree()),
			wantSimplified: []assets.Requestable{f.baz, f.foo},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := New(f.repo)
			for _, r := range tc.require {
				tr.Require(r)
			}

			assert.Equal(t, tc.wantExpanded, tr.Expand(assets.Script))
			assert.Equal(t, tc.wantSimplified, tr.Simplify(assets.Script))
		})
	}
}

func TestTracker_FiltersByType(t *testing.T) {
	c := assets.NewCatalog(assets.MapLoader{"~/a.js": "a", "~/a.css": "b"})
	js := assets.Must(c.AddScript("~/a.js"))
	css := assets.Must(c.AddStylesheet("~/a.css"))
	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	tr := New(repo)
	tr.Require(css, js)

	assert.Equal(t, []*assets.Resource{js}, tr.Expand(assets.Script))
	assert.Equal(t, []assets.Requestable{css}, tr.Simplify(assets.Stylesheet))
	assert.Equal(t, []assets.Requestable{css, js}, tr.Required())
}

func TestTracker_EmptyRendersNothing(t *testing.T) {
	f := newFixture(t)
	tr := New(f.repo)

	assert.Empty(t, tr.Expand(assets.Script))
	assert.Empty(t, tr.Simplify(assets.Script))
	assert.Equal(t, "", tr.Render(assets.Script, assets.Individual, assets.Standard, urlpath.Identity))
}

func TestTracker_Render(t *testing.T) {
	c := assets.NewCatalog(assets.MapLoader{
		"~/lib.js":       "lib",
		"~/lib.min.js":   "l",
		"~/app.js":       "app",
		"~/site.css":     "body{}",
		"~/site.min.css": "body{}",
	})
	lib := assets.Must(c.AddScript("~/lib(.min).js"))
	app := assets.Must(c.AddScript("~/app.js", lib))
	bundle := assets.Must(c.AddBundle("~/bundles/all.js", app))
	css := assets.Must(c.AddStylesheet("~/site(.min).css"))
	repo, err := c.Commit(context.Background())
	require.NoError(t, err)

	vp := urlpath.NewVirtualPaths("/static")

	tr := New(repo)
	tr.Require(bundle, css)

	t.Run("individual standard", func(t *testing.T) {
		got := tr.Render(assets.Script, assets.Individual, assets.Standard, vp.ToAbsolute)
		want := `<script src="/static/lib.js?version=` + repo.Hash(lib) + `"></script>` + "\n" +
			`<script src="/static/app.js?version=` + repo.Hash(app) + `"></script>`
		assert.Equal(t, want, got)
	})

	t.Run("individual minified", func(t *testing.T) {
		got := tr.Render(assets.Script, assets.Individual, assets.Minified, vp.ToAbsolute)
		want := `<script src="/static/lib.min.js?version=` + repo.Hash(lib) + `"></script>` + "\n" +
			`<script src="/static/app.js?version=` + repo.Hash(app) + `"></script>`
		assert.Equal(t, want, got)
	})

	t.Run("bundled", func(t *testing.T) {
		got := tr.Render(assets.Script, assets.Bundled, assets.Minified, vp.ToAbsolute)
		want := `<script src="/static/bundles/all.js?version=` + repo.Hash(bundle) + `"></script>`
		assert.Equal(t, want, got)
	})

	t.Run("stylesheet", func(t *testing.T) {
		got := tr.Render(assets.Stylesheet, assets.Bundled, assets.Standard, vp.ToAbsolute)
		want := `<link href="/static/site.css?version=` + repo.Hash(css) + `" rel="stylesheet" type="text/css">`
		assert.Equal(t, want, got)
	})
}

func TestTag_EscapesURL(t *testing.T) {
	assert.Equal(t,
		`<script src="/a.js?x=1&amp;y=&#34;2&#34;"></script>`,
		Tag(assets.Script, `/a.js?x=1&y="2"`))
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	tr := New(nil)
	got, ok := FromContext(NewContext(context.Background(), tr))
	require.True(t, ok)
	assert.Same(t, tr, got)
}
