// Package engine is the constraint-satisfaction search core: the
// relational model binding courses, professors, groups and blocks; the
// backtracking search with chunked placement; best-so-far tracking under a
// multi-objective score; and the cooperative control surface (time budget,
// cancellation, progress reporting).
//
// The package never panics across its public API (Scheduler): internal
// invariant breaches degrade to documented defaults and are logged, not
// raised, so that no failure here is ever fatal to the caller's process.
package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/timetablegen/timetable/internal/constraint"
	"github.com/timetablegen/timetable/internal/graph"
	"github.com/timetablegen/timetable/internal/telemetry"
)

// Scheduler is the single object the driver talks to: load the data, then
// call GenerateSchedule.
type Scheduler interface {
	LoadCourse(id uint64, name string, enrollment uint64, prerequisiteIDs []uint64, groupID uint64, duration int)
	LoadProfessor(id uint64, name string, availableBlockIDs []uint64)
	LoadTimeBlock(id uint64, day string, startHour, startMinute, endHour, endMinute int)
	AssignProfessorToCourse(courseID, professorID uint64)

	GenerateSchedule(timeLimitSeconds float64, strictness Strictness, onProgress ProgressFunc, seed uint64) Result

	Stop()
	Reset()

	HasData() bool
	ValidateData() string
	AnalyzeFailure() string
}

type courseInfo struct {
	externalID uint64
	duration   int
}

type scheduler struct {
	g     *graph.Graph
	store *constraint.Store

	courseIDs    *idmap
	professorIDs *idmap
	blockIDs     *idmap

	courses map[int]*courseInfo // internal course id -> metadata, insertion order tracked separately
	order   []int               // insertion order of internal course ids

	stopFlag atomic.Bool
	logger   telemetry.Logger

	lastResult    Result
	lastHadData   bool
	lastRunCourses int
}

// New returns an empty scheduler. logger may be telemetry.Nop() if the
// caller does not want diagnostics.
func New(logger telemetry.Logger) Scheduler {
	return &scheduler{
		g:            graph.New(),
		store:        constraint.NewStore(),
		courseIDs:    newIDMap(),
		professorIDs: newIDMap(),
		blockIDs:     newIDMap(),
		courses:      make(map[int]*courseInfo),
		logger:       logger,
	}
}

func (s *scheduler) LoadCourse(id uint64, name string, enrollment uint64, prerequisiteIDs []uint64, groupID uint64, duration int) {
	if duration < 1 {
		s.logger.Warn("course duration clamped to 1", map[string]any{"course": id, "duration": duration})
		duration = 1
	}

	internal, exists := s.courseIDs.internal(id)
	if !exists {
		internal = s.g.AddNode(graph.CourseNode, name)
		s.courseIDs.bind(id, internal)
		s.order = append(s.order, internal)
	}

	s.courses[internal] = &courseInfo{externalID: id, duration: duration}
	s.store.AddCourseGroup(internal, int(groupID))

	for _, prereqExternal := range prerequisiteIDs {
		prereqInternal, ok := s.courseIDs.internal(prereqExternal)
		if !ok {
			s.logger.Debug("prerequisite not yet loaded, dropped", map[string]any{"course": id, "prerequisite": prereqExternal})
			continue
		}
		_ = s.g.AddEdge(internal, prereqInternal)
		s.store.AddCoursePrerequisite(internal, prereqInternal)
	}
}

func (s *scheduler) LoadProfessor(id uint64, name string, availableBlockIDs []uint64) {
	internal, exists := s.professorIDs.internal(id)
	if !exists {
		internal = s.g.AddNode(graph.ProfessorNode, name)
		s.professorIDs.bind(id, internal)
	}

	for _, blockExternal := range availableBlockIDs {
		blockInternal, ok := s.blockIDs.internal(blockExternal)
		if !ok {
			s.logger.Warn("availability references unknown block, dropped", map[string]any{"professor": id, "block": blockExternal})
			continue
		}
		s.store.AddProfessorAvailability(internal, blockInternal)
	}
}

func (s *scheduler) LoadTimeBlock(id uint64, day string, startHour, startMinute, endHour, endMinute int) {
	internal, exists := s.blockIDs.internal(id)
	if !exists {
		name := fmt.Sprintf("%s %02d:%02d-%02d:%02d", day, startHour, startMinute, endHour, endMinute)
		internal = s.g.AddNode(graph.TimeBlockNode, name)
		s.blockIDs.bind(id, internal)
	}

	s.store.AddTimeBlock(constraint.TimeBlock{
		ID:          internal,
		Day:         day,
		StartMinute: startHour*60 + startMinute,
		EndMinute:   endHour*60 + endMinute,
	})
}

func (s *scheduler) AssignProfessorToCourse(courseID, professorID uint64) {
	courseInternal, ok := s.courseIDs.internal(courseID)
	if !ok {
		return
	}
	professorInternal, ok := s.professorIDs.internal(professorID)
	if !ok {
		return
	}
	_ = s.g.AddEdge(courseInternal, professorInternal)
}

// professorOf returns the first neighbor of a course node that is a
// professor node, per the graph's typed-node design; edges to prerequisite
// courses and to the assigned professor are both outbound from the course,
// so the type tag (not insertion order) is what distinguishes them.
func (s *scheduler) professorOf(courseInternal int) (int, bool) {
	for _, neighbor := range s.g.Neighbors(courseInternal) {
		node, ok := s.g.GetNode(neighbor)
		if ok && node.Type == graph.ProfessorNode {
			return neighbor, true
		}
	}
	return 0, false
}

func (s *scheduler) Stop() {
	s.stopFlag.Store(true)
}

func (s *scheduler) Reset() {
	s.g = graph.New()
	s.store = constraint.NewStore()
	s.courseIDs = newIDMap()
	s.professorIDs = newIDMap()
	s.blockIDs = newIDMap()
	s.courses = make(map[int]*courseInfo)
	s.order = nil
	s.stopFlag.Store(false)
	s.lastResult = Result{}
	s.lastHadData = false
	s.lastRunCourses = 0
}

func (s *scheduler) HasData() bool {
	return len(s.courses) > 0
}

func (s *scheduler) ValidateData() string {
	var problems []string
	problems = append(problems, s.store.Validate()...)

	if len(s.courses) == 0 {
		problems = append(problems, "no courses loaded")
	}

	for internal, info := range s.courses {
		if _, ok := s.professorOf(internal); !ok {
			problems = append(problems, fmt.Sprintf("course %d has no assigned professor and will be skipped", info.externalID))
		}
	}

	if s.g.HasCycle() {
		problems = append(problems, "prerequisite graph contains a cycle; prerequisite-based ordering would fall back to insertion order")
	}

	if len(problems) == 0 {
		return ""
	}

	message := ""
	for i, p := range problems {
		if i > 0 {
			message += "; "
		}
		message += p
	}
	return message
}

func (s *scheduler) AnalyzeFailure() string {
	if s.lastResult.Success {
		return ""
	}
	if !s.lastHadData {
		return "no data was loaded before generation was attempted"
	}

	placedSet := uniqueCourses(s.lastResult.Assignments)
	placed := len(placedSet)
	if placed == s.lastRunCourses {
		return "every assigned course was placed, but the run was interrupted by cancellation or time exhaustion before completion could be confirmed"
	}

	starved, blocked := 0, 0
	for internal, info := range s.courses {
		if _, done := placedSet[info.externalID]; done {
			continue
		}
		prof, ok := s.professorOf(internal)
		if !ok {
			continue
		}
		if len(s.store.AvailableBlocks(internal, prof, nil)) == 0 {
			starved++
		} else {
			blocked++
		}
	}

	if starved > blocked {
		return fmt.Sprintf("%d of %d courses placed: the dominant cause appears to be professors with no admissible time blocks at all", placed, s.lastRunCourses)
	}
	return fmt.Sprintf("%d of %d courses placed: the dominant cause appears to be chunk placements colliding with the owning group's existing schedule", placed, s.lastRunCourses)
}

func uniqueCourses(assignments []Assignment) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(assignments))
	for _, a := range assignments {
		set[a.CourseID] = struct{}{}
	}
	return set
}
