// Package hcl provides the HCL implementation of config.Loader. It is
// responsible for parsing manifests, evaluating variables and translating
// blocks into the format-agnostic config.Model.
package hcl
