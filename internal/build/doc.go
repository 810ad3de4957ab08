// Package build provides the canonical build execution pipeline for sitebuild.
//
// A build walks the docs tree into a file collection, lets registered plugins
// rewrite the collection, and renders the result into the output directory.
// All execution paths (CLI, dev server, tests) route through Builder.
package build
