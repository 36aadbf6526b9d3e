// Package univload holds the public contracts of the university registry
// loader: run configuration, the logger interface, sentinel errors and the
// exit codes the CLI maps them to.
package univload
