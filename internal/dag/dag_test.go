package dag

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/forgegrid/internal/node"
)

func nodes(ids ...string) []node.Node {
	out := make([]node.Node, len(ids))
	for i, id := range ids {
		out[i] = node.Node{ID: id, Type: node.Custom, Title: id}
	}
	return out
}

func edge(from, to string) node.Edge {
	return node.Edge{ID: from + "->" + to, Source: from, Target: to}
}

func TestSanitize(t *testing.T) {
	ns := nodes("a", "b", "c")

	t.Run("drops dangling edges", func(t *testing.T) {
		got := Sanitize(ns, []node.Edge{edge("a", "b"), edge("a", "zz"), edge("zz", "c")})
		assert.Equal(t, []node.Edge{edge("a", "b")}, got)
	})

	t.Run("drops self loops", func(t *testing.T) {
		got := Sanitize(ns, []node.Edge{edge("a", "a"), edge("b", "c")})
		assert.Equal(t, []node.Edge{edge("b", "c")}, got)
	})

	t.Run("keeps first duplicate", func(t *testing.T) {
		first := node.Edge{ID: "e1", Source: "a", Target: "b"}
		second := node.Edge{ID: "e2", Source: "a", Target: "b"}
		reverse := node.Edge{ID: "e3", Source: "b", Target: "a"}
		got := Sanitize(ns, []node.Edge{first, second, reverse})
		assert.Equal(t, []node.Edge{first, reverse}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Sanitize(nil, nil))
		assert.Empty(t, Sanitize(ns, nil))
	})

	t.Run("idempotent", func(t *testing.T) {
		messy := []node.Edge{
			edge("a", "b"), edge("a", "b"), edge("c", "c"), edge("a", "x"),
			edge("b", "c"), edge("c", "a"), edge("b", "c"),
		}
		once := Sanitize(ns, messy)
		assert.Equal(t, once, Sanitize(ns, once))
	})
}

func TestBuildPlan_Scenarios(t *testing.T) {
	t.Run("linear chain", func(t *testing.T) {
		ns := []node.Node{
			{ID: "A", Type: node.Ingest},
			{ID: "B", Type: node.Filter},
			{ID: "C", Type: node.Train},
		}
		plan, err := BuildPlan(ns, []node.Edge{edge("A", "B"), edge("B", "C")}, "A")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, plan.IDs())
		assert.Equal(t, ns, plan.Nodes)
		assert.Equal(t, map[string]struct{}{"A": {}, "B": {}, "C": {}}, plan.Reachable)
	})

	t.Run("upstream feeder is excluded", func(t *testing.T) {
		plan, err := BuildPlan(nodes("A", "B", "C"), []node.Edge{edge("A", "B"), edge("C", "B")}, "A")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, plan.IDs())
		assert.True(t, plan.Contains("B"))
		assert.False(t, plan.Contains("C"))
	})

	t.Run("single node", func(t *testing.T) {
		plan, err := BuildPlan(nodes("solo"), nil, "solo")
		require.NoError(t, err)
		assert.Equal(t, []string{"solo"}, plan.IDs())
	})

	t.Run("start in the middle", func(t *testing.T) {
		plan, err := BuildPlan(nodes("a", "b", "c", "d"), []node.Edge{edge("a", "b"), edge("b", "c"), edge("c", "d")}, "b")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "d"}, plan.IDs())
	})
}

func TestBuildPlan_TieBreak(t *testing.T) {
	// s fans out to x, y, z which are defined in the order z, x, y.
	ns := nodes("s", "z", "x", "y", "join")
	es := []node.Edge{
		edge("s", "x"), edge("s", "y"), edge("s", "z"),
		edge("x", "join"), edge("y", "join"), edge("z", "join"),
	}
	plan, err := BuildPlan(ns, es, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"s", "z", "x", "y", "join"}, plan.IDs())
}

func TestBuildPlan_TieBreakReappliedAsReadySetGrows(t *testing.T) {
	// After "a" runs, "late" (index 1) becomes ready while "b" (index 3) is
	// already waiting. The earlier-defined node must win.
	ns := nodes("s", "late", "a", "b")
	es := []node.Edge{edge("s", "a"), edge("s", "b"), edge("a", "late")}
	plan, err := BuildPlan(ns, es, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"s", "a", "late", "b"}, plan.IDs())
}

func TestBuildPlan_Determinism(t *testing.T) {
	ns := nodes("root", "n1", "n2", "n3", "n4", "n5", "n6", "n7")
	es := []node.Edge{
		edge("root", "n3"), edge("root", "n1"), edge("root", "n2"),
		edge("n1", "n4"), edge("n2", "n4"), edge("n3", "n5"),
		edge("n4", "n6"), edge("n5", "n6"), edge("n6", "n7"),
		edge("n2", "n7"), edge("n1", "n4"), edge("n7", "n7"),
	}
	want, err := BuildPlan(ns, es, "root")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]node.Edge(nil), es...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := BuildPlan(ns, shuffled, "root")
		require.NoError(t, err)
		assert.Equal(t, want.IDs(), got.IDs())
	}
}

func TestBuildPlan_OrderIsTopological(t *testing.T) {
	ns := nodes("a", "b", "c", "d", "e", "f")
	es := []node.Edge{
		edge("a", "d"), edge("a", "b"), edge("b", "c"), edge("d", "c"),
		edge("c", "f"), edge("e", "f"), edge("a", "e"),
	}
	plan, err := BuildPlan(ns, es, "a")
	require.NoError(t, err)

	position := make(map[string]int)
	for i, id := range plan.IDs() {
		position[id] = i
	}
	for _, e := range Sanitize(ns, es) {
		if plan.Contains(e.Source) && plan.Contains(e.Target) {
			assert.Less(t, position[e.Source], position[e.Target], "%s -> %s", e.Source, e.Target)
		}
	}
}

func TestBuildPlan_Errors(t *testing.T) {
	t.Run("invalid start node", func(t *testing.T) {
		_, err := BuildPlan(nodes("a"), nil, "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidStartNode)
		assert.Contains(t, err.Error(), `"missing"`)
	})

	t.Run("reachable two node cycle", func(t *testing.T) {
		_, err := BuildPlan(nodes("A", "B"), []node.Edge{edge("A", "B"), edge("B", "A")}, "A")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCyclicGraph)
		assert.Contains(t, err.Error(), "remove circular connections")

		var planErr *PlanError
		require.True(t, errors.As(err, &planErr))
		assert.Equal(t, []string{"A", "B"}, planErr.NodeIDs)
	})

	t.Run("cycle downstream of start", func(t *testing.T) {
		_, err := BuildPlan(nodes("s", "x", "y"), []node.Edge{edge("s", "x"), edge("x", "y"), edge("y", "x")}, "s")
		assert.ErrorIs(t, err, ErrCyclicGraph)
	})

	t.Run("unreachable cycle is ignored", func(t *testing.T) {
		ns := nodes("start", "next", "c1", "c2", "c3")
		es := []node.Edge{
			edge("start", "next"),
			edge("c1", "c2"), edge("c2", "c3"), edge("c3", "c1"),
			edge("c1", "next"),
		}
		plan, err := BuildPlan(ns, es, "start")
		require.NoError(t, err)
		assert.Equal(t, []string{"start", "next"}, plan.IDs())
	})

	t.Run("self loop is sanitized away", func(t *testing.T) {
		plan, err := BuildPlan(nodes("a", "b"), []node.Edge{edge("a", "a"), edge("a", "b")}, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, plan.IDs())
	})
}

func TestRoots(t *testing.T) {
	ns := nodes("a", "b", "c", "d")
	es := []node.Edge{edge("a", "b"), edge("c", "b"), edge("b", "d"), edge("d", "d")}
	roots := Roots(ns, es)
	require.Len(t, roots, 2)
	assert.Equal(t, "a", roots[0].ID)
	assert.Equal(t, "c", roots[1].ID)
}

func BenchmarkBuildPlan(b *testing.B) {
	const size = 300
	ids := make([]string, size)
	for i := range ids {
		ids[i] = string(rune('A'+i%26)) + string(rune('a'+i/26))
	}
	ns := nodes(ids...)
	var es []node.Edge
	for i := 1; i < size; i++ {
		es = append(es, edge(ids[i/2], ids[i]))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildPlan(ns, es, ids[0]); err != nil {
			b.Fatal(err)
		}
	}
}
