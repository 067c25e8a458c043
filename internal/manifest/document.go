package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/basicbundles/internal/config"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// document is the shared YAML/JSONC layout.
type document struct {
	Scripts     []resourceDoc `yaml:"scripts" json:"scripts"`
	Stylesheets []resourceDoc `yaml:"stylesheets" json:"stylesheets"`
	Bundles     []bundleDoc   `yaml:"bundles" json:"bundles"`
	Groups      []groupDoc    `yaml:"groups" json:"groups"`
}

type resourceDoc struct {
	Name      string   `yaml:"name" json:"name"`
	Path      string   `yaml:"path" json:"path"`
	DependsOn []string `yaml:"depends_on" json:"depends_on"`
}

type bundleDoc struct {
	Name     string   `yaml:"name" json:"name"`
	Path     string   `yaml:"path" json:"path"`
	Contents []string `yaml:"contents" json:"contents"`
}

type groupDoc struct {
	Name     string   `yaml:"name" json:"name"`
	Contents []string `yaml:"contents" json:"contents"`
}

func parseYAML(data []byte) (*document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	return &doc, nil
}

// parseJSONC strips comments and trailing commas, then decodes strictly.
func parseJSONC(data []byte) (*document, error) {
	stripped := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(stripped)) == 0 {
		return &document{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(stripped))
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	return &doc, nil
}

// toModel validates doc and translates it into the agnostic model.
func (doc *document) toModel(source string) (*config.Model, error) {
	model := &config.Model{}

	resources := []struct {
		kind string
		docs []resourceDoc
	}{
		{config.KindScript, doc.Scripts},
		{config.KindStylesheet, doc.Stylesheets},
	}
	for _, group := range resources {
		for i, r := range group.docs {
			if r.Name == "" || r.Path == "" {
				return nil, fmt.Errorf("%s #%d: name and path are required", group.kind, i+1)
			}
			deps, err := config.ParseRefs(r.DependsOn)
			if err != nil {
				return nil, fmt.Errorf("in %s %q: %w", group.kind, r.Name, err)
			}
			model.Resources = append(model.Resources, &config.Resource{
				Kind:      group.kind,
				Name:      r.Name,
				Path:      r.Path,
				DependsOn: deps,
				Source:    source,
			})
		}
	}

	for i, b := range doc.Bundles {
		if b.Name == "" || b.Path == "" {
			return nil, fmt.Errorf("bundle #%d: name and path are required", i+1)
		}
		contents, err := config.ParseRefs(b.Contents)
		if err != nil {
			return nil, fmt.Errorf("in bundle %q: %w", b.Name, err)
		}
		model.Bundles = append(model.Bundles, &config.Bundle{Name: b.Name, Path: b.Path, Contents: contents, Source: source})
	}

	for i, g := range doc.Groups {
		if g.Name == "" {
			return nil, fmt.Errorf("group #%d: name is required", i+1)
		}
		contents, err := config.ParseRefs(g.Contents)
		if err != nil {
			return nil, fmt.Errorf("in group %q: %w", g.Name, err)
		}
		model.Groups = append(model.Groups, &config.Group{Name: g.Name, Contents: contents, Source: source})
	}
	return model, nil
}
