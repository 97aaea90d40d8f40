package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timetablegen/timetable/internal/telemetry"
)

// newTestScheduler returns an empty scheduler whose logger discards
// everything; each test loads its own blocks, professors and courses.
func newTestScheduler() Scheduler {
	return New(telemetry.Nop())
}

func TestMinimalFeasibleSchedule(t *testing.T) {
	// Arrange: one course, one professor available for exactly its
	// duration, one group.
	s := newTestScheduler()
	s.LoadTimeBlock(1, "Mon", 8, 0, 9, 0)
	s.LoadProfessor(100, "Prof A", []uint64{1})
	s.LoadCourse(10, "Algebra", 30, nil, 1, 1)
	s.AssignProfessorToCourse(10, 100)

	// Act
	result := s.GenerateSchedule(0, Strict, nil, 0)

	// Assert
	require.True(t, result.Success)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, uint64(10), result.Assignments[0].CourseID)
	assert.Equal(t, uint64(1), result.Assignments[0].BlockID)
	assert.Equal(t, uint64(100), result.Assignments[0].ProfessorID)
}

func TestTwoCoursesSameGroupConflictIsRejected(t *testing.T) {
	// Arrange: two single-block courses in the same group, but only one
	// block exists, so both cannot be seated.
	s := newTestScheduler()
	s.LoadTimeBlock(1, "Mon", 8, 0, 9, 0)
	s.LoadProfessor(100, "Prof A", []uint64{1})
	s.LoadProfessor(101, "Prof B", []uint64{1})
	s.LoadCourse(10, "Algebra", 30, nil, 1, 1)
	s.LoadCourse(11, "Geometry", 30, nil, 1, 1)
	s.AssignProfessorToCourse(10, 100)
	s.AssignProfessorToCourse(11, 101)

	// Act
	result := s.GenerateSchedule(0, Strict, nil, 0)

	// Assert: only one of the two competing courses can occupy the block.
	assert.False(t, result.Success)
	assert.LessOrEqual(t, len(uniqueCourses(result.Assignments)), 1)
}

func TestProfessorDoubleBookingPrevented(t *testing.T) {
	// Arrange: one professor shared by two courses in different groups,
	// only one block available to that professor.
	s := newTestScheduler()
	s.LoadTimeBlock(1, "Mon", 8, 0, 9, 0)
	s.LoadProfessor(100, "Prof A", []uint64{1})
	s.LoadCourse(10, "Algebra", 30, nil, 1, 1)
	s.LoadCourse(11, "Calculus", 30, nil, 2, 1)
	s.AssignProfessorToCourse(10, 100)
	s.AssignProfessorToCourse(11, 100)

	// Act
	result := s.GenerateSchedule(0, Strict, nil, 0)

	// Assert: the same professor cannot teach both at the same time, and
	// there is no other time available, so at most one course is placed.
	assert.LessOrEqual(t, len(uniqueCourses(result.Assignments)), 1)
}

func TestChunkingSpansConsecutiveBlocks(t *testing.T) {
	// Arrange: a two-hour course with two consecutive blocks available.
	s := newTestScheduler()
	s.LoadTimeBlock(1, "Mon", 8, 0, 9, 0)
	s.LoadTimeBlock(2, "Mon", 9, 0, 10, 0)
	s.LoadProfessor(100, "Prof A", []uint64{1, 2})
	s.LoadCourse(10, "Algebra", 30, nil, 1, 2)
	s.AssignProfessorToCourse(10, 100)

	// Act
	result := s.GenerateSchedule(0, Strict, nil, 0)

	// Assert
	require.True(t, result.Success)
	assert.Len(t, result.Assignments, 2)
}

func TestStrictRejectsOverlongDay(t *testing.T) {
	// Arrange: four one-hour blocks back to back on the same day, a
	// four-hour course — STRICT caps consecutive hours for one course at 3.
	s := newTestScheduler()
	s.LoadTimeBlock(1, "Mon", 8, 0, 9, 0)
	s.LoadTimeBlock(2, "Mon", 9, 0, 10, 0)
	s.LoadTimeBlock(3, "Mon", 10, 0, 11, 0)
	s.LoadTimeBlock(4, "Mon", 11, 0, 12, 0)
	s.LoadProfessor(100, "Prof A", []uint64{1, 2, 3, 4})
	s.LoadCourse(10, "Algebra", 30, nil, 1, 4)
	s.AssignProfessorToCourse(10, 100)

	// Act
	result := s.GenerateSchedule(0, Strict, nil, 0)

	// Assert: STRICT cannot seat a 4-hour consecutive run for one course.
	assert.False(t, result.Success)
}

func TestCancellationStopsGeneration(t *testing.T) {
	// Arrange
	s := newTestScheduler()
	s.LoadTimeBlock(1, "Mon", 8, 0, 9, 0)
	s.LoadProfessor(100, "Prof A", []uint64{1})
	s.LoadCourse(10, "Algebra", 30, nil, 1, 1)
	s.AssignProfessorToCourse(10, 100)
	s.Stop()

	// Act
	result := s.GenerateSchedule(0, Strict, nil, 0)

	// Assert: a pre-stopped scheduler never reports a confirmed success.
	assert.False(t, result.Success)
}

func TestResetClearsAllState(t *testing.T) {
	// Arrange
	s := newTestScheduler()
	s.LoadTimeBlock(1, "Mon", 8, 0, 9, 0)
	s.LoadProfessor(100, "Prof A", []uint64{1})
	s.LoadCourse(10, "Algebra", 30, nil, 1, 1)
	s.AssignProfessorToCourse(10, 100)
	require.True(t, s.HasData())

	// Act
	s.Reset()

	// Assert
	assert.False(t, s.HasData())
	assert.Empty(t, s.ValidateData(), "an empty store reports no courses, which ValidateData does surface")
}

func TestValidateDataReportsMissingProfessor(t *testing.T) {
	// Arrange: a course with no assigned professor.
	s := newTestScheduler()
	s.LoadCourse(10, "Algebra", 30, nil, 1, 1)

	// Act
	problems := s.ValidateData()

	// Assert
	assert.Contains(t, problems, "no assigned professor")
}

func TestAnalyzeFailureEmptyOnSuccess(t *testing.T) {
	// Arrange
	s := newTestScheduler()
	s.LoadTimeBlock(1, "Mon", 8, 0, 9, 0)
	s.LoadProfessor(100, "Prof A", []uint64{1})
	s.LoadCourse(10, "Algebra", 30, nil, 1, 1)
	s.AssignProfessorToCourse(10, 100)

	// Act
	result := s.GenerateSchedule(0, Strict, nil, 0)

	// Assert
	require.True(t, result.Success)
	assert.Empty(t, s.AnalyzeFailure())
}

func TestBacktrackCountIsAtLeastAssignmentCount(t *testing.T) {
	// Arrange
	s := newTestScheduler()
	s.LoadTimeBlock(1, "Mon", 8, 0, 9, 0)
	s.LoadTimeBlock(2, "Mon", 9, 0, 10, 0)
	s.LoadProfessor(100, "Prof A", []uint64{1, 2})
	s.LoadCourse(10, "Algebra", 30, nil, 1, 1)
	s.LoadCourse(11, "Geometry", 30, nil, 2, 1)
	s.AssignProfessorToCourse(10, 100)
	s.AssignProfessorToCourse(11, 100)

	// Act
	result := s.GenerateSchedule(0, Strict, nil, 0)

	// Assert: the search visits at least one frame per placed course.
	assert.GreaterOrEqual(t, result.BacktrackCount, int64(len(result.Assignments)))
}

func TestResetThenReplayIsDeterministic(t *testing.T) {
	// Arrange
	build := func() Scheduler {
		s := newTestScheduler()
		s.LoadTimeBlock(1, "Mon", 8, 0, 9, 0)
		s.LoadTimeBlock(2, "Mon", 9, 0, 10, 0)
		s.LoadProfessor(100, "Prof A", []uint64{1, 2})
		s.LoadCourse(10, "Algebra", 30, nil, 1, 1)
		s.LoadCourse(11, "Geometry", 30, nil, 2, 1)
		s.AssignProfessorToCourse(10, 100)
		s.AssignProfessorToCourse(11, 100)
		return s
	}

	// Act
	first := build().GenerateSchedule(0, Strict, nil, 42)
	second := build().GenerateSchedule(0, Strict, nil, 42)

	// Assert: same seed, same inputs, same outcome shape.
	assert.Equal(t, first.Success, second.Success)
	assert.Equal(t, len(first.Assignments), len(second.Assignments))
}
