// Package app contains the host application. It loads manifests, builds
// the asset repository once, and then serves, renders or exports it,
// decoupled from any specific entrypoint like a CLI.
package app
