// Package graph defines the source graph produced by recipe evaluation.
// A graph describes the meshes a recipe builds: solid primitives, imported
// mesh files, transforms and groups. Each root becomes one named mesh
// after tessellation.
package graph
