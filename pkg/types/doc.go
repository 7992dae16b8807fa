// Package types defines the Graph and Backend interfaces, node and edge
// types, configuration, and standard error values for the kgraph knowledge
// graph. The kb package builds archetypes, relations and meta-objects on top
// of any Graph; adapters in internal/ implement it.
package types
