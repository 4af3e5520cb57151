package conversation

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(agent string) *Node {
	return NewNode(NewMessage(agent, KindCore, RoleSystem, agent+" says hi"))
}

// assertLabels checks that every child is labeled parent path + its 1-based index.
func assertLabels(t *testing.T, n *Node) {
	t.Helper()
	for i, child := range n.Children {
		expected := append(append(Path{}, n.Path...), i+1)
		assert.Equal(t, expected, child.Path, "child %d of %s", i, n.Path)
		assertLabels(t, child)
	}
}

func TestNewNodeIsRoot(t *testing.T) {
	n := node("a")
	assert.Equal(t, Path{1}, n.Path)
	assert.Nil(t, n.ActiveChild())
	_, ok := n.ActiveIndex()
	assert.False(t, ok)
	assert.False(t, n.Refresh)
}

func TestAddChildLabelsAndActivates(t *testing.T) {
	root := node("root")
	a, b := node("a"), node("b")
	root.AddChild(a).AddChild(b)

	assert.Equal(t, Path{1, 1}, a.Path)
	assert.Equal(t, Path{1, 2}, b.Path)
	idx, ok := root.ActiveIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Same(t, b, root.ActiveChild())
}

func TestAddChildRelabelsSubtree(t *testing.T) {
	sub := node("sub")
	sub.AddChild(node("x"))
	sub.Children[0].AddChild(node("y"))

	root := node("root")
	root.AddChild(node("first"))
	root.AddChild(sub)

	assert.Equal(t, Path{1, 2}, sub.Path)
	assert.Equal(t, Path{1, 2, 1}, sub.Children[0].Path)
	assert.Equal(t, Path{1, 2, 1, 1}, sub.Children[0].Children[0].Path)
	assertLabels(t, root)
}

func TestAppendActiveFollowsChain(t *testing.T) {
	root := node("root")
	for i := 0; i < 4; i++ {
		root.AppendActive(node(fmt.Sprintf("n%d", i)))
	}

	chat := root.ActiveChat()
	require.Len(t, chat, 5)
	assert.Equal(t, Path{1, 1, 1, 1, 1}, chat[4].Path)
	assert.Equal(t, "n3", root.Leaf().Message.Agent)
	assertLabels(t, root)
}

func TestActiveChatIsIdempotent(t *testing.T) {
	root := node("root")
	root.AppendActive(node("a"))
	root.AppendActive(node("b"))
	root.Children[0].AddChild(node("side"))
	root.Children[0].Children[1].AddChild(node("deep"))

	first := root.ActiveChat()
	second := root.ActiveChat()
	assert.Equal(t, first, second)
	// root, a, side, deep
	assert.Len(t, first, 4)
	assert.Equal(t, "deep", first[3].Message.Agent)
}

func TestActiveChatLengthIsDepthPlusOne(t *testing.T) {
	root := node("root")
	assert.Len(t, root.ActiveChat(), 1)

	depth := 0
	for _, agent := range []string{"a", "b", "c"} {
		root.AppendActive(node(agent))
		depth++
		assert.Len(t, root.ActiveChat(), depth+1)
	}
}

func TestRemoveChild(t *testing.T) {
	t.Run("active child falls back to last", func(t *testing.T) {
		root := node("root")
		a, b, c := node("a"), node("b"), node("c")
		root.AddChild(a).AddChild(b).AddChild(c)

		require.NoError(t, root.RemoveChild(c))
		assert.Same(t, b, root.ActiveChild())
		assertLabels(t, root)
	})

	t.Run("removing before active shifts index", func(t *testing.T) {
		root := node("root")
		a, b, c := node("a"), node("b"), node("c")
		root.AddChild(a).AddChild(b).AddChild(c)

		require.NoError(t, root.RemoveChild(a))
		assert.Same(t, c, root.ActiveChild())
		assert.Equal(t, Path{1, 1}, b.Path)
		assert.Equal(t, Path{1, 2}, c.Path)
	})

	t.Run("removing after active keeps it", func(t *testing.T) {
		root := node("root")
		a, b := node("a"), node("b")
		root.AddChild(a).AddChild(b)
		root.active = 0

		require.NoError(t, root.RemoveChild(b))
		assert.Same(t, a, root.ActiveChild())
	})

	t.Run("removing last child clears active", func(t *testing.T) {
		root := node("root")
		a := node("a")
		root.AddChild(a)

		require.NoError(t, root.RemoveChild(a))
		assert.Nil(t, root.ActiveChild())
		assert.Empty(t, root.Children)
	})

	t.Run("unknown child", func(t *testing.T) {
		root := node("root")
		err := root.RemoveChild(node("stranger"))
		assert.True(t, errors.Is(err, ErrNotAChild))
	})
}

func TestReplaceKeepsHistory(t *testing.T) {
	root := node("root")
	old := node("old")
	root.AddChild(node("sibling"))
	root.AddChild(old)
	old.AddChild(node("review"))
	old.Children[0].AddChild(node("notes"))
	before := root.Count()

	fresh := node("fresh")
	require.NoError(t, root.Replace(old, fresh))

	// the replaced node moves under its replacement, so the tree grows by exactly one
	assert.Equal(t, before+1, root.Count())
	assert.Same(t, fresh, root.Children[1])
	assert.Same(t, fresh, root.ActiveChild())
	assert.Equal(t, Path{1, 2}, fresh.Path)
	assert.False(t, fresh.Refresh)

	require.Len(t, fresh.Children, 1)
	assert.Same(t, old, fresh.ActiveChild())
	old.Walk(func(n *Node) bool {
		assert.True(t, n.Refresh, n.Path.String())
		return true
	})
	assert.Equal(t, Path{1, 2, 1, 1, 1}, old.Children[0].Children[0].Path)
	assertLabels(t, root)
}

func TestReplaceUnknownChild(t *testing.T) {
	root := node("root")
	err := root.Replace(node("x"), node("y"))
	assert.True(t, errors.Is(err, ErrNotAChild))
}

func TestReplacePath(t *testing.T) {
	root := node("root")
	root.AppendActive(node("a"))
	root.AppendActive(node("b"))

	fresh := node("fresh")
	require.NoError(t, root.ReplacePath(Path{1, 1}, fresh))
	assert.Equal(t, Path{1, 1, 1}, fresh.Path)
	assert.Equal(t, "b", fresh.Children[0].Message.Agent)

	assert.True(t, errors.Is(root.ReplacePath(Path{}, node("x")), ErrInvalidPath))
	assert.True(t, errors.Is(root.ReplacePath(Path{3}, node("x")), ErrInvalidPath))
}

func TestClearActiveAndDetach(t *testing.T) {
	root := node("root")
	response := root.AppendActive(node("response"))
	response.AddChild(node("review"))
	response.AddChild(node("edit"))

	response.ClearActive()
	assert.Same(t, response, root.Leaf())
	assert.Len(t, response.Children, 2)
	assert.Len(t, root.ActiveChat(), 2)

	detached := response.Detach()
	require.Len(t, detached, 2)
	assert.Empty(t, response.Children)
	for _, n := range detached {
		assert.Equal(t, Path{1}, n.Path)
	}
}

func TestGetPathAndAppendLeaf(t *testing.T) {
	root := node("root")
	root.AppendActive(node("a"))
	root.AppendActive(node("b"))

	b, err := root.GetPath(Path{1, 1})
	require.NoError(t, err)
	assert.Equal(t, "b", b.Message.Agent)

	self, err := root.GetPath(Path{})
	require.NoError(t, err)
	assert.Same(t, root, self)

	_, err = root.GetPath(Path{2})
	assert.True(t, errors.Is(err, ErrInvalidPath))

	require.NoError(t, root.AppendLeaf(Path{1}, node("side")))
	a := root.Children[0]
	assert.Equal(t, Path{1, 1, 2}, a.Children[1].Path)
	assert.True(t, errors.Is(root.AppendLeaf(Path{9}, node("x")), ErrInvalidPath))
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("1.2.3")
	require.NoError(t, err)
	assert.Equal(t, Path{1, 2, 3}, p)
	assert.Equal(t, "1.2.3", p.String())

	empty, err := ParsePath("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParsePath("1.0")
	assert.True(t, errors.Is(err, ErrInvalidPath))
	_, err = ParsePath("1.x")
	assert.True(t, errors.Is(err, ErrInvalidPath))
}

func TestPathEqual(t *testing.T) {
	assert.True(t, Path{1, 2}.Equal(Path{1, 2}))
	assert.False(t, Path{1, 2}.Equal(Path{1}))
	assert.False(t, Path{1, 2}.Equal(Path{1, 3}))
}

func TestOutline(t *testing.T) {
	root := node("root")
	old := root.AppendActive(node("old"))
	require.NoError(t, root.Replace(old, node("new")))

	out := root.String()
	assert.Contains(t, out, "> 1 [root]")
	assert.Contains(t, out, "  > 1.1 [new]")
	assert.Contains(t, out, "    > 1.1.1* [old]")
}

func TestOutlineTruncatesOnRunes(t *testing.T) {
	content := strings.Repeat("a", 56) + "🔏🔏 and more text after the glyph"
	root := NewNode(NewMessage("GPT-Expert", KindRevise, RoleUser, content))

	out := root.String()
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("a", 56)+"🔏...")
}
