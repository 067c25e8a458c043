// Package config defines the format-agnostic declaration model produced by
// manifest loaders, along with the Loader interface they implement.
//
// A Model only names things; turning it into a resource graph is the job of
// the manifest package, which feeds it to an assets.Catalog. Concrete
// loaders for HCL, YAML and JSONC live in separate packages.
package config
