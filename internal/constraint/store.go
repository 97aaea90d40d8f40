// Package constraint holds the static scheduling inputs (time blocks,
// professor availability, course-group/prerequisite mappings) and the
// predicates the search engine consults on every placement attempt. It is
// built once by the driver and only read from during search.
package constraint

import (
	"fmt"
	"slices"
)

// TimeBlock is one atomic slot of the weekly grid, identified by its
// internal id, a free-form day label, and a [start,end) interval expressed
// in minutes-of-day.
type TimeBlock struct {
	ID          int
	Day         string
	StartMinute int
	EndMinute   int
}

// Assignment binds a course to a block and the professor teaching it. All
// ids are internal (graph-assigned) ids.
type Assignment struct {
	CourseID    int
	BlockID     int
	ProfessorID int
}

// Store indexes the static inputs the checker needs: blocks by id,
// professor availability, and the course->group / course->prerequisite
// mappings.
type Store struct {
	blocks map[int]TimeBlock

	// professorAvailability preserves insertion order (a plain slice)
	// because available_blocks must be deterministic between runs unless
	// the caller explicitly reorders/shuffles it; a membership set is kept
	// alongside for O(1) lookups.
	professorAvailability    map[int][]int
	professorAvailabilitySet map[int]map[int]struct{}

	coursePrerequisites map[int][]int
	courseGroup         map[int]int
}

// NewStore returns an empty constraint store.
func NewStore() *Store {
	return &Store{
		blocks:                   make(map[int]TimeBlock),
		professorAvailability:    make(map[int][]int),
		professorAvailabilitySet: make(map[int]map[int]struct{}),
		coursePrerequisites:      make(map[int][]int),
		courseGroup:              make(map[int]int),
	}
}

func (s *Store) AddTimeBlock(block TimeBlock) {
	s.blocks[block.ID] = block
}

func (s *Store) AddProfessorAvailability(professorID, blockID int) {
	if _, ok := s.blocks[blockID]; !ok {
		return // unknown blocks are dropped, per loader contract
	}
	if s.professorAvailabilitySet[professorID] == nil {
		s.professorAvailabilitySet[professorID] = make(map[int]struct{})
	}
	if _, already := s.professorAvailabilitySet[professorID][blockID]; already {
		return
	}
	s.professorAvailabilitySet[professorID][blockID] = struct{}{}
	s.professorAvailability[professorID] = append(s.professorAvailability[professorID], blockID)
}

func (s *Store) AddCoursePrerequisite(courseID, prerequisiteCourseID int) {
	s.coursePrerequisites[courseID] = append(s.coursePrerequisites[courseID], prerequisiteCourseID)
}

func (s *Store) AddCourseGroup(courseID, groupID int) {
	s.courseGroup[courseID] = groupID
}

// GroupOf returns the group a course belongs to.
func (s *Store) GroupOf(courseID int) (int, bool) {
	group, ok := s.courseGroup[courseID]
	return group, ok
}

// PrerequisitesOf returns the prerequisite course ids of a course, in
// insertion order.
func (s *Store) PrerequisitesOf(courseID int) []int {
	return s.coursePrerequisites[courseID]
}

// blocksOverlap is the canonical overlap rule: two blocks overlap iff they
// share a day label and their [start,end) intervals intersect. Equal
// endpoints do not overlap — back-to-back placement is permitted.
func blocksOverlap(a, b TimeBlock) bool {
	if a.Day != b.Day {
		return false
	}
	return !(a.EndMinute <= b.StartMinute || b.EndMinute <= a.StartMinute)
}

// IsValid reports whether assignment is admissible against existing: the
// professor is available for the block, no existing assignment for the
// same professor overlaps it, and no existing assignment for a course in
// the same group overlaps it.
func (s *Store) IsValid(a Assignment, existing []Assignment) bool {
	block, ok := s.blocks[a.BlockID]
	if !ok {
		return false // unknown block resolves to "not available"
	}

	if _, available := s.professorAvailabilitySet[a.ProfessorID][a.BlockID]; !available {
		return false
	}

	group, hasGroup := s.courseGroup[a.CourseID]

	for _, e := range existing {
		eBlock, ok := s.blocks[e.BlockID]
		if !ok {
			continue
		}
		if e.ProfessorID == a.ProfessorID && blocksOverlap(block, eBlock) {
			return false
		}
		if hasGroup {
			if eGroup, ok := s.courseGroup[e.CourseID]; ok && eGroup == group && blocksOverlap(block, eBlock) {
				return false
			}
		}
	}

	return true
}

// AvailableBlocks returns the subset of the professor's availability that
// does not clash with existing for that professor, in the store's
// insertion order.
func (s *Store) AvailableBlocks(courseID, professorID int, existing []Assignment) []int {
	candidates := s.professorAvailability[professorID]
	result := make([]int, 0, len(candidates))
	for _, blockID := range candidates {
		block := s.blocks[blockID]
		clash := false
		for _, e := range existing {
			if eBlock, ok := s.blocks[e.BlockID]; ok && e.ProfessorID == professorID && blocksOverlap(block, eBlock) {
				clash = true
				break
			}
		}
		if !clash {
			result = append(result, blockID)
		}
	}
	return result
}

// NextConsecutiveBlock returns the unique block on the same day whose start
// equals this block's end, or (0, false) if none exists or more than one
// would tie.
func (s *Store) NextConsecutiveBlock(blockID int) (int, bool) {
	block, ok := s.blocks[blockID]
	if !ok {
		return 0, false
	}

	found := -1
	ties := 0
	for id, candidate := range s.blocks {
		if candidate.Day == block.Day && candidate.StartMinute == block.EndMinute {
			found = id
			ties++
		}
	}
	if ties != 1 {
		return 0, false
	}
	return found, true
}

// DayOf returns the day label of a block.
func (s *Store) DayOf(blockID int) string {
	return s.blocks[blockID].Day
}

// StartMinuteOf returns the start-of-day minute offset of a block.
func (s *Store) StartMinuteOf(blockID int) int {
	return s.blocks[blockID].StartMinute
}

// ConsecutiveHoursOfCourse returns the maximum run-length of consecutive
// blocks that course occupies on day.
func (s *Store) ConsecutiveHoursOfCourse(courseID int, day string, assignments []Assignment) int {
	blocks := s.courseBlocksOnDay(courseID, day, assignments)
	if len(blocks) == 0 {
		return 0
	}
	s.sortByStartMinute(blocks)

	best, run := 1, 1
	for i := 1; i < len(blocks); i++ {
		if s.blocks[blocks[i-1]].EndMinute == s.blocks[blocks[i]].StartMinute {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// HasGapsInCourse reports whether course has two blocks on day with a
// non-occupied block between them.
func (s *Store) HasGapsInCourse(courseID int, day string, assignments []Assignment) bool {
	blocks := s.courseBlocksOnDay(courseID, day, assignments)
	if len(blocks) < 2 {
		return false
	}
	s.sortByStartMinute(blocks)

	for i := 1; i < len(blocks); i++ {
		prev, next := s.blocks[blocks[i-1]], s.blocks[blocks[i]]
		for _, candidate := range s.blocks {
			if candidate.Day == day && candidate.StartMinute >= prev.EndMinute && candidate.EndMinute <= next.StartMinute {
				return true
			}
		}
	}
	return false
}

// FreeHoursOfGroup counts, across the whole week, hours that fall within
// the group's occupied envelope per day (between its earliest and latest
// block that day) and are not themselves occupied by any course of that
// group. Off-envelope time is not "free".
func (s *Store) FreeHoursOfGroup(groupID int, assignments []Assignment) int {
	blocksByDay := make(map[string][]int)
	for _, a := range assignments {
		block, ok := s.blocks[a.BlockID]
		if !ok {
			continue
		}
		if group, ok := s.courseGroup[a.CourseID]; !ok || group != groupID {
			continue
		}
		blocksByDay[block.Day] = append(blocksByDay[block.Day], a.BlockID)
	}

	free := 0
	for _, blocks := range blocksByDay {
		s.sortByStartMinute(blocks)
		if len(blocks) < 2 {
			continue
		}
		occupied := map[int]struct{}{}
		for _, id := range blocks {
			occupied[id] = struct{}{}
		}
		earliest, latest := s.blocks[blocks[0]], s.blocks[blocks[len(blocks)-1]]
		for id, block := range s.blocks {
			if block.Day != earliest.Day {
				continue
			}
			if block.StartMinute < earliest.StartMinute || block.StartMinute >= latest.EndMinute {
				continue
			}
			if _, occ := occupied[id]; !occ {
				free++
			}
		}
	}
	return free
}

func (s *Store) sortByStartMinute(blockIDs []int) {
	slices.SortFunc(blockIDs, func(a, b int) int {
		return s.blocks[a].StartMinute - s.blocks[b].StartMinute
	})
}

func (s *Store) courseBlocksOnDay(courseID int, day string, assignments []Assignment) []int {
	blocks := make([]int, 0)
	for _, a := range assignments {
		if a.CourseID != courseID {
			continue
		}
		block, ok := s.blocks[a.BlockID]
		if !ok || block.Day != day {
			continue
		}
		blocks = append(blocks, a.BlockID)
	}
	return blocks
}

// Validate reports load-time anomalies that do not prevent the engine from
// running but a caller likely wants to know about: zero-length durations
// already get clamped elsewhere, so this focuses on what the store itself
// can see — professors with no availability at all, and time blocks whose
// end does not strictly follow their start.
func (s *Store) Validate() []string {
	var problems []string
	for id, block := range s.blocks {
		if block.EndMinute <= block.StartMinute {
			problems = append(problems, invalidBlockMessage(id, block))
		}
	}
	for professorID, blocks := range s.professorAvailability {
		if len(blocks) == 0 {
			problems = append(problems, noAvailabilityMessage(professorID))
		}
	}
	return problems
}

func invalidBlockMessage(id int, block TimeBlock) string {
	return fmt.Sprintf("time block %d (%s) has end <= start (%d <= %d)", id, block.Day, block.EndMinute, block.StartMinute)
}

func noAvailabilityMessage(professorID int) string {
	return fmt.Sprintf("professor %d has no admissible time blocks", professorID)
}
