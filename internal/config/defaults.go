// Package config provides shared configuration constants for vexc, plus
// the vexc.yaml project file format.
//
// Grounded on the teacher's pkg/config/defaults.go (a handful of shared
// constants consumed by both the CLI and library code).
package config

// DefaultBuildDir is the build output directory used when a vexc.yaml
// project file does not override it.
const DefaultBuildDir = "build"

// DefaultOptLevel is the optimization level stored in Project.OptLevel
// when a project file does not override it. vexc's core never optimizes
// its own IR (spec.md §1 Non-goals); the driver's compile and link steps
// do not pass this level to the host C++ compiler.
const DefaultOptLevel = 2

// DefaultCacheBackend names the interface-cache backend used when a
// project file does not select one explicitly.
const DefaultCacheBackend = "sqlite"
