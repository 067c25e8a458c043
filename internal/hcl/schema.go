package hcl

import "github.com/hashicorp/hcl/v2"

// variablesRoot picks the variable blocks out of a file and leaves the rest
// for the second pass.
type variablesRoot struct {
	Variables []*variableBlock `hcl:"variable,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

// fileRoot is the full set of top-level blocks a manifest may contain.
type fileRoot struct {
	Variables   []*variableBlock `hcl:"variable,block"`
	Scripts     []*resourceBlock `hcl:"script,block"`
	Stylesheets []*resourceBlock `hcl:"stylesheet,block"`
	Bundles     []*bundleBlock   `hcl:"bundle,block"`
	Groups      []*groupBlock    `hcl:"group,block"`
}

type variableBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

type resourceBlock struct {
	Name      string         `hcl:"name,label"`
	Path      string         `hcl:"path"`
	DependsOn hcl.Expression `hcl:"depends_on,optional"`
}

type bundleBlock struct {
	Name     string         `hcl:"name,label"`
	Path     string         `hcl:"path"`
	Contents hcl.Expression `hcl:"contents"`
}

type groupBlock struct {
	Name     string         `hcl:"name,label"`
	Contents hcl.Expression `hcl:"contents"`
}
