package conversation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrInvalidPath = errors.New("invalid conversation path")
	ErrNotAChild   = errors.New("node is not a child")
)

type NodeID uuid.UUID

func (id NodeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(id))
}

func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

func NewNodeID() NodeID {
	return NodeID(uuid.New())
}

// Path is the 1-based position of a node, starting with the root's own label.
type Path []int

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Path) child(index int) Path {
	ret := make(Path, len(p), len(p)+1)
	copy(ret, p)
	return append(ret, index+1)
}

// ParsePath parses the dotted form produced by Path.String.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}
	var ret Path
	for _, part := range strings.Split(s, ".") {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 1 {
			return nil, errors.Wrapf(ErrInvalidPath, "component %q of %q", part, s)
		}
		ret = append(ret, idx)
	}
	return ret, nil
}

const noActive = -1

// Node is a node of the conversation tree. It owns its message and its children.
//
// Children are kept in creation order. The active index points at the live branch;
// following it from the root down to a node without an active child yields the
// active chain, the only part of the tree that is rendered for the completion service.
//
// Every structural mutation relabels the affected subtree so that a child's path
// is always its parent's path followed by its 1-based index.
type Node struct {
	ID       NodeID
	Message  *Message
	Children []*Node
	Refresh  bool
	Path     Path

	active int
}

// NewNode creates a detached node. A detached node is labeled as a root.
func NewNode(msg *Message) *Node {
	return &Node{
		ID:      NewNodeID(),
		Message: msg,
		Path:    Path{1},
		active:  noActive,
	}
}

// ActiveIndex returns the index of the active child, if any.
func (n *Node) ActiveIndex() (int, bool) {
	if n.active == noActive {
		return 0, false
	}
	return n.active, true
}

func (n *Node) ActiveChild() *Node {
	if n.active == noActive {
		return nil
	}
	return n.Children[n.active]
}

// AddChild appends node and makes it the live branch.
func (n *Node) AddChild(node *Node) *Node {
	n.Children = append(n.Children, node)
	n.active = len(n.Children) - 1
	node.SetPath(n.Path.child(n.active))
	return n
}

func (n *Node) indexOf(node *Node) int {
	for i, child := range n.Children {
		if child == node {
			return i
		}
	}
	return -1
}

// RemoveChild drops node from the children. If it was the active child, the last
// remaining child becomes active, or none when no children are left.
func (n *Node) RemoveChild(node *Node) error {
	idx := n.indexOf(node)
	if idx < 0 {
		return errors.Wrapf(ErrNotAChild, "remove %s from %s", node.Path, n.Path)
	}
	wasActive := n.active == idx

	n.Children = append(n.Children[:idx], n.Children[idx+1:]...)
	switch {
	case wasActive || len(n.Children) == 0:
		n.active = len(n.Children) - 1
	case n.active > idx:
		n.active--
	}
	if n.active < 0 {
		n.active = noActive
	}

	n.relabelChildren()
	return nil
}

// Replace puts newNode where oldNode was. oldNode is kept as history: it becomes a
// child of newNode and is flagged for refresh together with its descendants.
func (n *Node) Replace(oldNode *Node, newNode *Node) error {
	idx := n.indexOf(oldNode)
	if idx < 0 {
		return errors.Wrapf(ErrNotAChild, "replace %s under %s", oldNode.Path, n.Path)
	}
	oldNode.SetRefresh()
	n.Children[idx] = newNode
	newNode.SetPath(n.Path.child(idx))
	newNode.AddChild(oldNode)
	return nil
}

// ReplacePath replaces the node addressed by path (relative to n) with node.
func (n *Node) ReplacePath(path Path, node *Node) error {
	if len(path) == 0 {
		return errors.Wrap(ErrInvalidPath, "cannot replace the node a path is resolved from")
	}
	parent, err := n.GetPath(path[:len(path)-1])
	if err != nil {
		return err
	}
	last := path[len(path)-1]
	if last < 1 || last > len(parent.Children) {
		return errors.Wrapf(ErrInvalidPath, "%s has no child %d", parent.Path, last)
	}
	return parent.Replace(parent.Children[last-1], node)
}

// SetRefresh flags this node and all of its descendants as stale.
func (n *Node) SetRefresh() *Node {
	n.Refresh = true
	for _, child := range n.Children {
		child.SetRefresh()
	}
	return n
}

// ClearActive keeps the children but takes them off the active chain, making n
// the terminal node of the chain.
func (n *Node) ClearActive() *Node {
	n.active = noActive
	return n
}

// Detach removes all children and returns them.
func (n *Node) Detach() []*Node {
	ret := n.Children
	n.Children = nil
	n.active = noActive
	for _, child := range ret {
		child.SetPath(Path{1})
	}
	return ret
}

// Leaf follows the active chain down to its terminal node.
func (n *Node) Leaf() *Node {
	node := n
	for node.active != noActive {
		node = node.Children[node.active]
	}
	return node
}

// AppendActive adds node under the terminal node of the active chain and returns it.
func (n *Node) AppendActive(node *Node) *Node {
	n.Leaf().AddChild(node)
	return node
}

// ChatEntry is one element of the active chain.
type ChatEntry struct {
	Path    Path
	Message *Message
}

// ActiveChat lists the active chain from n down to its terminal node.
func (n *Node) ActiveChat() []ChatEntry {
	node := n
	ret := []ChatEntry{{Path: node.Path, Message: node.Message}}
	for node.active != noActive {
		node = node.Children[node.active]
		ret = append(ret, ChatEntry{Path: node.Path, Message: node.Message})
	}
	return ret
}

// GetPath resolves path relative to n, each component being a 1-based child index.
func (n *Node) GetPath(path Path) (*Node, error) {
	node := n
	for _, idx := range path {
		if idx < 1 || idx > len(node.Children) {
			return nil, errors.Wrapf(ErrInvalidPath, "%s has no child %d", node.Path, idx)
		}
		node = node.Children[idx-1]
	}
	return node, nil
}

// AppendLeaf adds child under the node addressed by path.
func (n *Node) AppendLeaf(path Path, child *Node) error {
	node, err := n.GetPath(path)
	if err != nil {
		return err
	}
	node.AddChild(child)
	return nil
}

// SetPath labels n with path and relabels every descendant.
func (n *Node) SetPath(path Path) *Node {
	n.Path = path
	n.relabelChildren()
	return n
}

func (n *Node) relabelChildren() {
	for i, child := range n.Children {
		child.SetPath(n.Path.child(i))
	}
}

// Walk visits n and its descendants depth first, stopping when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

func (n *Node) String() string {
	var b strings.Builder
	n.outline(&b, 0, true)
	return b.String()
}

// outline writes one line per node; ">" marks the active chain, "*" a stale node.
func (n *Node) outline(b *strings.Builder, depth int, onChain bool) {
	marker := ""
	if n.Refresh {
		marker = "*"
	}
	bullet := "-"
	if onChain {
		bullet = ">"
	}
	agent, content := "", ""
	if n.Message != nil {
		agent = n.Message.Agent
		content = n.Message.Content
		if runes := []rune(content); len(runes) > 60 {
			content = string(runes[:57]) + "..."
		}
		content = strings.ReplaceAll(content, "\n", " ")
	}
	_, _ = fmt.Fprintf(b, "%s%s %s%s [%s] %s\n", strings.Repeat("  ", depth), bullet, n.Path, marker, agent, content)
	for i, child := range n.Children {
		child.outline(b, depth+1, onChain && i == n.active)
	}
}
