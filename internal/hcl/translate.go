package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/basicbundles/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateFile converts the decoded blocks of one file into the agnostic
// model.
func translateFile(ctx context.Context, path string, root *fileRoot, evalCtx *hcl.EvalContext) (*config.Model, error) {
	model := &config.Model{}

	resources := []struct {
		kind   string
		blocks []*resourceBlock
	}{
		{config.KindScript, root.Scripts},
		{config.KindStylesheet, root.Stylesheets},
	}
	for _, group := range resources {
		for _, b := range group.blocks {
			var deps []config.Ref
			if isExprDefined(ctx, b.DependsOn, "depends_on") {
				var err error
				if deps, err = refsFromExpr(b.DependsOn, evalCtx); err != nil {
					return nil, fmt.Errorf("in %s %q (%s): %w", group.kind, b.Name, path, err)
				}
			}
			model.Resources = append(model.Resources, &config.Resource{
				Kind:      group.kind,
				Name:      b.Name,
				Path:      b.Path,
				DependsOn: deps,
				Source:    path,
			})
		}
	}

	for _, b := range root.Bundles {
		contents, err := refsFromExpr(b.Contents, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("in bundle %q (%s): %w", b.Name, path, err)
		}
		model.Bundles = append(model.Bundles, &config.Bundle{
			Name:     b.Name,
			Path:     b.Path,
			Contents: contents,
			Source:   path,
		})
	}

	for _, b := range root.Groups {
		contents, err := refsFromExpr(b.Contents, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("in group %q (%s): %w", b.Name, path, err)
		}
		model.Groups = append(model.Groups, &config.Group{
			Name:     b.Name,
			Contents: contents,
			Source:   path,
		})
	}
	return model, nil
}

// refsFromExpr reads a list whose elements are either traversals such as
// script.jquery, or string expressions holding a reference.
func refsFromExpr(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]config.Ref, error) {
	elems, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}

	refs := make([]config.Ref, 0, len(elems))
	for _, elem := range elems {
		ref, diags := refFromExpr(elem, evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func refFromExpr(expr hcl.Expression, evalCtx *hcl.EvalContext) (config.Ref, hcl.Diagnostics) {
	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() && config.IsKind(traversal.RootName()) {
		if len(traversal) == 2 {
			if attr, ok := traversal[1].(hcl.TraverseAttr); ok {
				return config.Ref{Kind: traversal.RootName(), Name: attr.Name}, nil
			}
		}
		return config.Ref{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid reference",
			Detail:   "A reference must have the form <kind>.<name>, e.g. script.jquery.",
			Subject:  expr.Range().Ptr(),
		}}
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return config.Ref{}, diags
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil || str.IsNull() || !str.IsKnown() {
		return config.Ref{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid reference",
			Detail:   "A reference must be a traversal like script.jquery or a string.",
			Subject:  expr.Range().Ptr(),
		}}
	}
	ref, err := config.ParseRef(str.AsString())
	if err != nil {
		return config.Ref{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid reference",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return ref, nil
}
