// Package assets is the resource graph and build engine of the bundler.
//
// # Model
//
// Everything a page can ask for is a Requirable. The set is closed:
//
//   - *Resource: a single script or stylesheet with ordered dependencies.
//   - *Bundle: an aggregate of Resources and nested Bundles of one Type,
//     served from its own path as one concatenated file.
//   - *Group: a list of Requirables of any type, required together. A Group
//     has no path and is never stored.
//
// Resources and Bundles are also Requestables: they have a path and can be
// fetched on their own.
//
// # Lifecycle
//
// A Catalog is open for declarations until Commit is called. Commit runs the
// build pass exactly once and freezes the catalog; every later call returns
// the same Repository (or the same error). The Repository is immutable, so
// it is read concurrently without locks.
//
// The build pass:
//
//  1. orders all Resources so that dependencies come first, failing with a
//     *CycleError when the dependency relation has a cycle;
//  2. loads the standard and, for "(.min)" patterns, minified flavor of each
//     Resource through the Loader;
//  3. hashes each Resource's standard content (MD5) and XORs member hashes
//     into bundle hashes;
//  4. concatenates bundle contents, rebasing url(...) references in
//     stylesheets to the bundle's location.
//
// The bundle hash is a cache-busting token only. XOR is order insensitive
// and cancels duplicated members; that is accepted in exchange for a hash
// that is trivial to derive from the member hashes.
package assets
