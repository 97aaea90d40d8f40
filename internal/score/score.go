// Package score computes the scalar quality measure used to pick among
// partial solutions that place the same number of courses. Higher is
// better; the formula is canonical so that runs with the same input and
// the same assignment set always produce the same score, regardless of the
// order assignments were appended in.
package score

import (
	"github.com/samber/lo"

	"github.com/timetablegen/timetable/internal/constraint"
)

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

const earlyHourCutoffMinute = 420 // 07:00

// Store is the subset of *constraint.Store the scoring function consults.
type Store interface {
	StartMinuteOf(blockID int) int
	GroupOf(courseID int) (int, bool)
	FreeHoursOfGroup(groupID int, assignments []constraint.Assignment) int
	ConsecutiveHoursOfCourse(courseID int, day string, assignments []constraint.Assignment) int
	HasGapsInCourse(courseID int, day string, assignments []constraint.Assignment) bool
}

// Score folds an assignment set into a single scalar, penalizing gaps, late
// starts, overly long consecutive stretches, and under-assignment.
func Score(assignments []constraint.Assignment, store Store) int {
	total := 100 * len(assignments)

	for _, a := range assignments {
		minute := store.StartMinuteOf(a.BlockID)
		if minute > earlyHourCutoffMinute {
			total -= 50 * ((minute - earlyHourCutoffMinute) / 60)
		}
	}

	groups := lo.Uniq(lo.FilterMap(assignments, func(a constraint.Assignment, _ int) (int, bool) {
		return store.GroupOf(a.CourseID)
	}))
	for _, g := range groups {
		if free := store.FreeHoursOfGroup(g, assignments); free > 1 {
			total -= 200 * (free - 1)
		}
	}

	courses := lo.Uniq(lo.Map(assignments, func(a constraint.Assignment, _ int) int {
		return a.CourseID
	}))
	for _, c := range courses {
		for _, day := range weekdays {
			if k := store.ConsecutiveHoursOfCourse(c, day, assignments); k > 3 {
				total -= 500 * (k - 3)
			}
			if store.HasGapsInCourse(c, day, assignments) {
				total -= 30
			}
		}
	}

	return total
}
