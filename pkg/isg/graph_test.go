package isg

import (
	"testing"

	"github.com/kraklabs/isgraph/pkg/interning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEntity(t *testing.T, name, path string, line int) Entity {
	t.Helper()
	e := NewLocatedEntity(LangRust, KindFunction, name, interning.NameID(0),
		Location{LineStart: line, LineEnd: line}, path, "fn "+name+"()", "fn "+name+"() {}")
	return e
}

func TestUpsertNodeInsertThenUpdate(t *testing.T) {
	g := NewGraph()
	e := mustEntity(t, "helper", "src/main.rs", 1)

	res, err := g.UpsertNode(e)
	require.NoError(t, err)
	assert.Equal(t, Inserted, res)

	res, err = g.UpsertNode(e)
	require.NoError(t, err)
	assert.Equal(t, Updated, res)
	assert.Equal(t, 1, g.NodeCount())
}

func TestInsertEdgeIsIdempotent(t *testing.T) {
	g := NewGraph()
	main := mustEntity(t, "main", "src/main.rs", 1)
	helper := mustEntity(t, "helper", "src/main.rs", 1)
	_, _ = g.UpsertNode(main)
	_, _ = g.UpsertNode(helper)

	g.InsertEdge(Edge{From: main.Key, To: helper.Key, Kind: EdgeCalls, SourceLocation: "src/main.rs:1"})
	g.InsertEdge(Edge{From: main.Key, To: helper.Key, Kind: EdgeCalls, SourceLocation: "src/main.rs:1"})

	assert.Equal(t, 1, g.EdgeCount())

	out := g.OutEdges(main.Key)
	require.Len(t, out, 1)
	in := g.InEdges(helper.Key)
	require.Len(t, in, 1)
}

func TestDanglingEdgeIsFlaggedNotDropped(t *testing.T) {
	g := NewGraph()
	main := mustEntity(t, "main", "src/main.rs", 1)
	_, _ = g.UpsertNode(main)

	external := ISGL1Key("rust:fn:external:lib_rs:1-1")
	g.InsertEdge(Edge{From: main.Key, To: external, Kind: EdgeCalls})

	assert.True(t, g.IsDangling(external))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestApplyTemporalChangeOnUnknownKeyIsNotFound(t *testing.T) {
	g := NewGraph()
	err := g.ApplyTemporalChange("missing", ActionEdit, nil)
	assert.Error(t, err)
}

func TestApplyTemporalChangeEditSetsFutureCode(t *testing.T) {
	g := NewGraph()
	e := mustEntity(t, "f", "src/lib.rs", 1)
	_, err := g.UpsertNode(e)
	require.NoError(t, err)

	future := "fn f() -> i32 { 0 }"
	require.NoError(t, g.ApplyTemporalChange(e.Key, ActionEdit, &future))

	updated, ok := g.GetByKey(e.Key)
	require.True(t, ok)
	assert.Equal(t, TemporalState{CurrentInd: true, FutureInd: true, Action: ActionEdit}, updated.Temporal)
	require.NotNil(t, updated.FutureCode)
	assert.Equal(t, future, *updated.FutureCode)
	assert.NotNil(t, updated.CurrentCode)
}
