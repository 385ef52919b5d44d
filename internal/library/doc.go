// Package library derives the virtual folder tree of the media library from
// stored object keys and classifies, filters and sorts its items.
// Everything here is pure: no I/O, no shared state.
package library
