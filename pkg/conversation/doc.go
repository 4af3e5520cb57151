// Package conversation holds the path-addressable conversation tree.
//
// A dialogue is a tree of Nodes, each owning one Message. Exactly one chain of
// active children runs from the root to a terminal node, and only that chain is
// rendered into a completion request by BuildRequest. Older branches stay in the
// tree: Replace moves the replaced node under its replacement and flags it with
// Refresh, so stale drafts and reviews remain inspectable without ever being
// sent to the completion service again.
package conversation
