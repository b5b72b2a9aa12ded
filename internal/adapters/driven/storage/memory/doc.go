// Package memory provides in-memory implementations of the driven store ports.
//
// These stores back the unit tests. They hold all data in maps and
// slices guarded by mutexes and lose everything when the process exits.
package memory
