package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodeAssignsSequentialIDs(t *testing.T) {
	// Arrange
	g := New()

	// Act
	a := g.AddNode(CourseNode, "Algebra")
	b := g.AddNode(ProfessorNode, "Dr. Ada")

	// Assert
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

func TestGetNodeUnknownIsAbsent(t *testing.T) {
	g := New()
	_, ok := g.GetNode(42)
	assert.False(t, ok)
}

func TestAddEdgeUnknownNodeFails(t *testing.T) {
	// Arrange
	g := New()
	a := g.AddNode(CourseNode, "Algebra")

	// Act
	err := g.AddEdge(a, 999)

	// Assert
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestAddEdgeAllowsParallelEdges(t *testing.T) {
	// Arrange
	g := New()
	a := g.AddNode(CourseNode, "Algebra")
	b := g.AddNode(ProfessorNode, "Dr. Ada")

	// Act
	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(a, b))

	// Assert
	assert.Equal(t, []int{b, b}, g.Neighbors(a))
}

func TestRemoveNodeDetachesIncidentEdges(t *testing.T) {
	// Arrange
	g := New()
	a := g.AddNode(CourseNode, "Algebra")
	b := g.AddNode(ProfessorNode, "Dr. Ada")
	c := g.AddNode(CourseNode, "Calculus")
	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(c, a))

	// Act
	g.RemoveNode(a)

	// Assert
	_, ok := g.GetNode(a)
	assert.False(t, ok)
	assert.Empty(t, g.Neighbors(c))
	assert.Empty(t, g.ReverseNeighbors(b))
}

func TestHasCycleDetectsBackEdge(t *testing.T) {
	// Arrange
	g := New()
	a := g.AddNode(CourseNode, "A")
	b := g.AddNode(CourseNode, "B")
	c := g.AddNode(CourseNode, "C")
	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(b, c))
	require.NoError(t, g.AddEdge(c, a))

	// Act & Assert
	assert.True(t, g.HasCycle())
}

func TestHasCycleFalseOnDAG(t *testing.T) {
	g := New()
	a := g.AddNode(CourseNode, "A")
	b := g.AddNode(CourseNode, "B")
	c := g.AddNode(CourseNode, "C")
	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(b, c))

	assert.False(t, g.HasCycle())
}

func TestTopologicalSortFailsOnCycle(t *testing.T) {
	// Arrange
	g := New()
	a := g.AddNode(CourseNode, "A")
	b := g.AddNode(CourseNode, "B")
	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(b, a))

	// Act
	_, err := g.TopologicalSort()

	// Assert
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestTopologicalSortOrdersDependentsFirst(t *testing.T) {
	// Arrange: C depends on B which depends on A (edges child->prerequisite)
	g := New()
	a := g.AddNode(CourseNode, "A")
	b := g.AddNode(CourseNode, "B")
	c := g.AddNode(CourseNode, "C")
	require.NoError(t, g.AddEdge(c, b))
	require.NoError(t, g.AddEdge(b, a))

	// Act
	order, err := g.TopologicalSort()
	require.NoError(t, err)

	// Assert: a prerequisite must appear after its dependent in a
	// postorder-reversed sort rooted at the dependent-to-prerequisite edges
	posA := indexOf(order, a)
	posB := indexOf(order, b)
	posC := indexOf(order, c)
	assert.True(t, posC < posB)
	assert.True(t, posB < posA)
}

func TestNodesByTypeFilters(t *testing.T) {
	g := New()
	g.AddNode(CourseNode, "Algebra")
	g.AddNode(ProfessorNode, "Dr. Ada")
	g.AddNode(CourseNode, "Calculus")

	courses := g.NodesByType(CourseNode)
	assert.Len(t, courses, 2)
}

func TestBFSVisitsReachableNodes(t *testing.T) {
	g := New()
	a := g.AddNode(CourseNode, "A")
	b := g.AddNode(CourseNode, "B")
	c := g.AddNode(CourseNode, "C")
	unreachable := g.AddNode(CourseNode, "D")
	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(a, c))

	order := g.BFS(a)

	assert.ElementsMatch(t, []int{a, b, c}, order)
	assert.NotContains(t, order, unreachable)
}

func TestDFSUnknownStartReturnsNil(t *testing.T) {
	g := New()
	assert.Nil(t, g.DFS(7))
	assert.Nil(t, g.BFS(7))
}

func indexOf(values []int, target int) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
