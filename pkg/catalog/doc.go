// Package catalog discovers the components of the editable workspace and
// keeps the current generation of their metadata.
//
// A Scanner asks a Source for raw entries (the build server's component
// scan, or a walk of a local directory), normalizes them with the
// best-effort inference in classify.go, and hands the result to a Registry.
// Each scan produces a new generation that replaces the previous one.
//
// Classification is deliberately shallow. Category comes from path
// segments, the display name from the file name, and description and tags
// from a static table. None of it reads the component's source.
package catalog
