// Package workspace reads the member manifests of a pmnps monorepo.
//
// A workspace root holds .pmnpsrc.json, a root package.json, library
// packages under packages/ and deployable platforms under plats/. Every
// direct sub-directory with a package.json is a member; scoped directories
// (packages/@corp/ui) are descended into one level.
package workspace
