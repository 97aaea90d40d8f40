package engine

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/timetablegen/timetable/internal/constraint"
	"github.com/timetablegen/timetable/internal/score"
)

// noProfessorOptionsConstant is the "flexibility" assigned to a course with
// no professor, per the easiest-first ordering rule — large enough that
// such courses sort last (they are skipped at descend time regardless).
const noProfessorOptionsConstant = 1000

// timeCheckInterval gates the wall-clock check to avoid a clock syscall on
// every recursion entry.
const timeCheckInterval = 1000

// maxUnboundedRestarts bounds the restart/optimization loop when the
// caller passes time_limit_seconds = 0 (unbounded) with STRICT or RELAXED
// strictness. Per §4.4's restart loop, that combination only breaks on
// full success *and* a positive time limit — with no limit at all the
// literal pseudocode never terminates. Resolved here (an Open Question per
// spec §9) as a bounded number of randomized restart passes so the engine
// remains a total function even when misused this way; the bound is large
// enough that it is never the limiting factor in a real run with a time
// budget.
const maxUnboundedRestarts = 25

// searchState is one restart pass of the backtracking descent. It owns the
// mutable assignment stack; the graph and constraint store are borrowed
// immutably.
type searchState struct {
	courses           []int
	courseDuration    map[int]int
	professorByCourse map[int]int
	store             *constraint.Store
	strictness        Strictness
	assignments       []constraint.Assignment

	rng       *rand.Rand
	useRandom bool

	stopFlag   func() bool
	deadline   time.Time
	hasLimit   bool
	callCount  int
	timeUp     bool
	backtracks int64

	progress ProgressFunc
	totalOps int
}

func (s *scheduler) GenerateSchedule(timeLimitSeconds float64, strictness Strictness, onProgress ProgressFunc, seed uint64) Result {
	start := time.Now()
	// A Stop() issued before this call (or left over from a prior run that
	// never cleared it) must still cancel this run rather than be silently
	// dropped; the flag is only cleared once this run has observed it, below.
	s.lastHadData = s.HasData()
	s.lastRunCourses = len(s.courses)

	if !s.lastHadData {
		result := Result{Success: false, ErrorMessage: "no courses loaded before generate_schedule was called"}
		s.lastResult = result
		return result
	}

	courses := s.orderCourses()

	var best []constraint.Assignment
	bestScore := minInt
	useRandom := false
	var totalBacktracks int64
	interrupted := false

	for pass := 0; ; pass++ {
		state := &searchState{
			courses:           courses,
			courseDuration:    s.durationsByInternalID(),
			professorByCourse: s.professorsByInternalID(),
			store:             s.store,
			strictness:        strictness,
			stopFlag:          s.stopFlag.Load,
			progress:          onProgress,
			totalOps:          len(courses),
		}
		if timeLimitSeconds > 0 {
			state.hasLimit = true
			state.deadline = start.Add(time.Duration(timeLimitSeconds * float64(time.Second)))
		}
		if useRandom {
			state.rng = rand.New(rand.NewPCG(seed, uint64(pass)))
			state.useRandom = true
		}

		ok := state.descend(0, start)
		totalBacktracks += state.backtracks
		if state.timeUp || s.stopFlag.Load() {
			interrupted = true
		}

		assignments := state.assignments
		if len(assignments) > len(best) || (len(assignments) == len(best) && score.Score(assignments, s.store) > bestScore) {
			best = assignments
			bestScore = score.Score(assignments, s.store)
		}

		elapsed := time.Since(start).Seconds()
		if timeLimitSeconds > 0 && elapsed >= timeLimitSeconds {
			break
		}
		if strictness >= Greedy || (ok && timeLimitSeconds > 0) {
			break
		}
		if interrupted {
			break
		}
		if timeLimitSeconds <= 0 && pass >= maxUnboundedRestarts {
			break
		}
		useRandom = true
	}

	// This run has now observed whatever Stop() left behind; clear it so a
	// future call starts uncancelled unless Stop() is called again.
	s.stopFlag.Store(false)

	elapsed := time.Since(start).Seconds()
	result := s.buildResult(best, totalBacktracks, elapsed, interrupted)
	s.lastResult = result
	return result
}

func (s *scheduler) durationsByInternalID() map[int]int {
	durations := make(map[int]int, len(s.courses))
	for id, info := range s.courses {
		durations[id] = info.duration
	}
	return durations
}

func (s *scheduler) professorsByInternalID() map[int]int {
	professors := make(map[int]int, len(s.courses))
	for id := range s.courses {
		if prof, ok := s.professorOf(id); ok {
			professors[id] = prof
		}
	}
	return professors
}

// orderCourses applies the "easiest first" rule: descending by the number
// of initially available blocks (§4.4), ties broken by insertion order.
func (s *scheduler) orderCourses() []int {
	type scored struct {
		course int
		opts   int
	}
	entries := make([]scored, 0, len(s.order))
	for _, internal := range s.order {
		opts := noProfessorOptionsConstant
		if prof, ok := s.professorOf(internal); ok {
			opts = len(s.store.AvailableBlocks(internal, prof, nil))
		}
		entries = append(entries, scored{course: internal, opts: opts})
	}

	slices.SortStableFunc(entries, func(a, b scored) int {
		return b.opts - a.opts
	})

	ordered := make([]int, len(entries))
	for i, e := range entries {
		ordered[i] = e.course
	}
	return ordered
}

func (s *scheduler) buildResult(assignments []constraint.Assignment, backtracks int64, elapsed float64, interrupted bool) Result {
	external := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		courseExternal, ok := s.courseIDs.external(a.CourseID)
		if !ok {
			continue
		}
		blockExternal, ok := s.blockIDs.external(a.BlockID)
		if !ok {
			continue
		}
		professorExternal, ok := s.professorIDs.external(a.ProfessorID)
		if !ok {
			continue
		}
		external = append(external, Assignment{CourseID: courseExternal, BlockID: blockExternal, ProfessorID: professorExternal})
	}

	placedCourses := len(uniqueCourses(external))
	totalCourses := s.countAssignableCourses()

	success := placedCourses == totalCourses && !interrupted
	message := ""
	switch {
	case success:
		message = ""
	case interrupted:
		message = "generation was interrupted before completion (cancellation or time exhaustion); returning the best partial solution found"
	default:
		message = progressMessage(placedCourses, totalCourses)
	}

	return Result{
		Success:                success,
		Assignments:            external,
		ErrorMessage:           message,
		BacktrackCount:         backtracks,
		ComputationTimeSeconds: elapsed,
	}
}

func (s *scheduler) countAssignableCourses() int {
	count := 0
	for internal := range s.courses {
		if _, ok := s.professorOf(internal); ok {
			count++
		}
	}
	return count
}

func progressMessage(placed, total int) string {
	if placed == total {
		return ""
	}
	return "placed " + strconv.Itoa(placed) + " of " + strconv.Itoa(total) + " courses"
}

const minInt = -1 << 62

// descend walks the course list in order, attempting place_course for each
// and skipping (never failing) a course it cannot place at all.
func (s *searchState) descend(index int, runStart time.Time) bool {
	s.callCount++
	if s.shouldStop(runStart) {
		return false
	}
	if index >= len(s.courses) {
		return true
	}

	s.backtracks++
	if s.progress != nil {
		s.progress(index, s.totalOps, "placing course")
	}

	course := s.courses[index]
	prof, ok := s.professorOfInSearch(course)
	if !ok {
		return s.descend(index+1, runStart)
	}

	if s.placeCourse(course, prof, s.courseDuration[course], map[string]bool{}, index, runStart) {
		return true
	}
	return s.descend(index+1, runStart)
}

// professorOfInSearch looks up the professor resolved once per pass by the
// caller, keeping the recursive hot path free of any graph access.
func (s *searchState) professorOfInSearch(course int) (int, bool) {
	prof, ok := s.professorByCourse[course]
	return prof, ok
}

func (s *searchState) shouldStop(runStart time.Time) bool {
	if s.stopFlag != nil && s.stopFlag() {
		return true
	}
	if s.hasLimit && s.callCount%timeCheckInterval == 1 {
		if time.Now().After(s.deadline) {
			s.timeUp = true
			return true
		}
	}
	return s.timeUp
}

// daysUsed is threaded through but not yet consulted by any decision here:
// the spec leaves a cap on how many distinct days a course may spread
// across as an open question, so today the daily/consecutive-hour and
// group-overlap checks are the only things gating placement.
func (s *searchState) placeCourse(course, prof, remaining int, daysUsed map[string]bool, index int, runStart time.Time) bool {
	if remaining == 0 {
		return s.descend(index+1, runStart)
	}

	dailyCap := 3
	if s.strictness != Strict {
		dailyCap = 8
	}

	candidates := s.store.AvailableBlocks(course, prof, s.assignments)
	candidates = s.orderCandidates(candidates)

	for _, start := range candidates {
		day := s.store.DayOf(start)
		usedToday := s.countAssignmentsForCourseOnDay(course, day)
		if usedToday >= dailyCap {
			continue
		}
		maxChunk := min3(remaining, dailyCap-usedToday, 3)

		for size := maxChunk; size >= 1; size-- {
			sequence := []int{start}
			cursor := start
			ok := true
			for i := 1; i < size; i++ {
				next, hasNext := s.store.NextConsecutiveBlock(cursor)
				if !hasNext {
					ok = false
					break
				}
				if !s.store.IsValid(constraint.Assignment{CourseID: course, BlockID: next, ProfessorID: prof}, s.assignments) {
					ok = false
					break
				}
				cursor = next
				sequence = append(sequence, next)
			}

			if !ok || !s.store.IsValid(constraint.Assignment{CourseID: course, BlockID: start, ProfessorID: prof}, s.assignments) {
				continue
			}

			committed := make([]constraint.Assignment, len(sequence))
			for i, b := range sequence {
				committed[i] = constraint.Assignment{CourseID: course, BlockID: b, ProfessorID: prof}
			}
			s.assignments = append(s.assignments, committed...)

			if s.postChecksPass(course, day) {
				newDaysUsed := copyDaySet(daysUsed)
				newDaysUsed[day] = true
				if s.placeCourse(course, prof, remaining-size, newDaysUsed, index, runStart) {
					return true
				}
			}

			s.assignments = s.assignments[:len(s.assignments)-len(committed)]
		}
	}

	return false
}

// postChecksPass applies the strictness-gated per-step checks: STRICT
// enforces consecutive-hour caps, group free-hour caps, and no intra-day
// gaps as hard constraints; every other strictness level leaves them
// unenforced (only hard legality, already checked via IsValid, applies).
func (s *searchState) postChecksPass(course int, day string) bool {
	if s.strictness != Strict {
		return true
	}
	if s.store.ConsecutiveHoursOfCourse(course, day, s.assignments) > 3 {
		return false
	}
	group, ok := s.store.GroupOf(course)
	if ok && s.store.FreeHoursOfGroup(group, s.assignments) > 1 {
		return false
	}
	if s.store.HasGapsInCourse(course, day, s.assignments) {
		return false
	}
	return true
}

// orderCandidates applies the early-hour preference on the first
// deterministic pass, or a seeded shuffle on subsequent restart passes.
func (s *searchState) orderCandidates(candidates []int) []int {
	ordered := append([]int(nil), candidates...)
	if s.useRandom && s.rng != nil {
		s.rng.Shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })
		return ordered
	}
	slices.SortFunc(ordered, func(a, b int) int {
		return s.store.StartMinuteOf(a) - s.store.StartMinuteOf(b)
	})
	return ordered
}

func (s *searchState) countAssignmentsForCourseOnDay(course int, day string) int {
	count := 0
	for _, a := range s.assignments {
		if a.CourseID == course && s.store.DayOf(a.BlockID) == day {
			count++
		}
	}
	return count
}

func copyDaySet(days map[string]bool) map[string]bool {
	cp := make(map[string]bool, len(days)+1)
	for k, v := range days {
		cp[k] = v
	}
	return cp
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
