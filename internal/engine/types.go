package engine

// Strictness selects which soft constraints are promoted to hard ones
// during search.
type Strictness int

const (
	Strict Strictness = iota + 1
	Relaxed
	Greedy
	Emergency
)

// ProgressFunc is invoked at the entry of each top-level search frame with
// the index of the course currently being placed, the total course count,
// and a short human-readable message.
type ProgressFunc func(current, total int, message string)

// Assignment binds a course to a block and the professor teaching it, all
// expressed in the external ids the driver supplied at load time.
type Assignment struct {
	CourseID    uint64
	BlockID     uint64
	ProfessorID uint64
}

// Result is what GenerateSchedule always returns: never an error, always a
// structured outcome.
type Result struct {
	Success                bool
	Assignments            []Assignment
	ErrorMessage           string
	BacktrackCount         int64
	ComputationTimeSeconds float64
}
