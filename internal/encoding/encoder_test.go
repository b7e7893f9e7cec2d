package encoding

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"mcpsolve/internal/instance"
	"mcpsolve/internal/route"
)

func sampleInstance(t *testing.T) *instance.Instance {
	t.Helper()
	in, err := instance.New("sample", []int{10, 10}, []int{5, 5, 5}, [][]int{
		{0, 3, 4, 2},
		{3, 0, 5, 3},
		{4, 5, 0, 4},
		{2, 3, 4, 0},
	})
	require.NoError(t, err)
	return in
}

func satisfied(t *testing.T, e *Encoding, routes [][]int) error {
	t.Helper()
	values, err := e.Assignment(routes)
	require.NoError(t, err)
	return e.Sys.Satisfied(values)
}

func TestEncode_Deterministic(t *testing.T) {
	in := sampleInstance(t)
	for _, mode := range []SymmetryMode{SymmetryNone, SymmetryLoad, SymmetryLex} {
		a := Encode(in, Options{Symmetry: mode, Bounded: true, Bound: 12})
		b := Encode(in, Options{Symmetry: mode, Bounded: true, Bound: 12})
		require.Equal(t, a.Sys, b.Sys, "mode %s", mode)
	}
}

func TestEncode_ValidRoutesSatisfy(t *testing.T) {
	in := sampleInstance(t)
	e := Encode(in, Options{})
	require.NoError(t, satisfied(t, e, [][]int{{0, 2}, {1}}))
	require.NoError(t, satisfied(t, e, [][]int{{2, 0}, {1}}))
	require.NoError(t, satisfied(t, e, [][]int{{1}, {0, 2}}))
}

func TestEncode_CapacityViolation(t *testing.T) {
	e := Encode(sampleInstance(t), Options{})
	require.Error(t, satisfied(t, e, [][]int{{0, 1, 2}, {}}))
}

func TestEncode_Bound(t *testing.T) {
	in := sampleInstance(t)
	routes := [][]int{{0, 2}, {1}} // lengths 10 and 6
	require.Error(t, satisfied(t, Encode(in, Options{Bounded: true, Bound: 9}), routes))
	require.NoError(t, satisfied(t, Encode(in, Options{Bounded: true, Bound: 10}), routes))
}

func TestEncode_LoadSymmetry(t *testing.T) {
	e := Encode(sampleInstance(t), Options{Symmetry: SymmetryLoad})
	require.NoError(t, satisfied(t, e, [][]int{{0, 2}, {1}}))
	require.Error(t, satisfied(t, e, [][]int{{1}, {0, 2}}))
}

func TestEncode_LexSymmetry(t *testing.T) {
	e := Encode(sampleInstance(t), Options{Symmetry: SymmetryLex})
	require.NoError(t, satisfied(t, e, [][]int{{0}, {1, 2}}))
	require.Error(t, satisfied(t, e, [][]int{{1, 2}, {0}}))
}

func TestEncode_SubtourRejectedForEveryPositioning(t *testing.T) {
	in := sampleInstance(t)
	e := Encode(in, Options{})
	values, err := e.Assignment([][]int{{0, 1, 2}, {}})
	require.NoError(t, err)
	set := func(c, from, to int, v bool) {
		l, ok := e.Arc(c, from, to)
		require.True(t, ok)
		values[l.Var()] = v
	}
	// depot -> 0 -> depot plus the detached cycle 1 -> 2 -> 1
	set(0, 0, 1, false)
	set(0, 2, 3, false)
	set(0, 0, 3, true)
	set(0, 2, 1, true)

	var posVars []int
	for j := 0; j < in.N; j++ {
		for _, l := range e.position[AssignKey{0, j}] {
			posVars = append(posVars, l.Var())
		}
	}
	for mask := 0; mask < 1<<len(posVars); mask++ {
		for i, v := range posVars {
			values[v] = mask&(1<<i) != 0
		}
		require.Error(t, e.Sys.Satisfied(values), "positions mask %b accepted a subtour", mask)
	}
}

func TestEncode_WitnessRoundTrip(t *testing.T) {
	in := sampleInstance(t)
	e := Encode(in, Options{Symmetry: SymmetryLoad})
	values, err := e.Assignment([][]int{{2, 0}, {1}})
	require.NoError(t, err)
	require.Equal(t, 10, e.ObjectiveOf(values))

	routes, diags := route.Reconstruct(e.Witness(values), zerolog.Nop())
	require.Empty(t, diags)
	require.Equal(t, [][]int{{2, 0}, {1}}, routes)
}

func TestEncode_NoItems(t *testing.T) {
	in, err := instance.New("empty", []int{4, 4}, nil, [][]int{{0}})
	require.NoError(t, err)
	e := Encode(in, Options{Symmetry: SymmetryLoad})
	values, err := e.Assignment([][]int{{}, {}})
	require.NoError(t, err)
	require.NoError(t, e.Sys.Satisfied(values))
	require.Equal(t, 0, e.ObjectiveOf(values))
}

func TestEncode_MoreCouriersThanItems(t *testing.T) {
	in, err := instance.New("wide", []int{3, 3, 3}, []int{1}, [][]int{{0, 2}, {2, 0}})
	require.NoError(t, err)
	e := Encode(in, Options{Symmetry: SymmetryLoad})
	require.NoError(t, satisfied(t, e, [][]int{{0}, {}, {}}))
	// an idle courier may not select any arc
	values, err := e.Assignment([][]int{{0}, {}, {}})
	require.NoError(t, err)
	l, ok := e.Arc(1, 1, 0)
	require.True(t, ok)
	values[l.Var()] = true
	require.Error(t, e.Sys.Satisfied(values))
}

func TestEncode_NoSelfLoops(t *testing.T) {
	e := Encode(sampleInstance(t), Options{})
	for c := 0; c < 2; c++ {
		for v := 0; v < 4; v++ {
			_, ok := e.Arc(c, v, v)
			require.False(t, ok)
		}
	}
}

func TestParseSymmetryMode(t *testing.T) {
	m, err := ParseSymmetryMode("LEX")
	require.NoError(t, err)
	require.Equal(t, SymmetryLex, m)
	m, err = ParseSymmetryMode("")
	require.NoError(t, err)
	require.Equal(t, SymmetryLoad, m)
	_, err = ParseSymmetryMode("sideways")
	require.Error(t, err)
}
