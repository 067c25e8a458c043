// Package manifest loads declarations from HCL, YAML and JSONC files and
// applies them to an assets.Catalog.
//
// YAML and JSONC manifests share one layout:
//
//	scripts:
//	  - name: jquery
//	    path: ~/Scripts/jquery(.min).js
//	  - name: app
//	    path: ~/Scripts/app.js
//	    depends_on: [script.jquery]
//	stylesheets:
//	  - name: site
//	    path: ~/Content/site.css
//	bundles:
//	  - name: core
//	    path: ~/bundles/core.js
//	    contents: [jquery, app]
//	groups:
//	  - name: layout
//	    contents: [bundle.core, stylesheet.site]
//
// References are bare names or "<kind>.<name>". HCL manifests use the
// equivalent blocks and may reference with traversals (script.jquery).
package manifest
