// Package bundle decodes a single raw document (JSON, YAML, whatever viper
// can read) into the scheduler's load calls, the way the retrieval pack's
// input.go decodes one JSON document into the SAT timetabler's model.
package bundle

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/timetablegen/timetable/internal/engine"
)

// RawCourse mirrors one course entry of a bundle document.
type RawCourse struct {
	ID             uint64
	Name           string
	Enrollment     uint64
	Prerequisites  []uint64
	Group          uint64
	DurationBlocks int
	ProfessorID    uint64
}

// RawProfessor mirrors one professor entry.
type RawProfessor struct {
	ID                uint64
	Name              string
	AvailableBlockIDs []uint64
}

// RawTimeBlock mirrors one time block entry.
type RawTimeBlock struct {
	ID    uint64
	Day   string
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// RawBundle is the full shape a bulk load document decodes into.
type RawBundle struct {
	TimeBlocks []RawTimeBlock
	Professors []RawProfessor
	Courses    []RawCourse
}

// LoadBundle decodes raw (typically produced by viper.AllSettings or a
// decoded JSON/YAML document) into bundle and replays it against s in the
// dependency order the scheduler requires: blocks, then professors, then
// courses, then professor assignments.
func LoadBundle(raw map[string]any, s engine.Scheduler) error {
	var parsed RawBundle
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &parsed,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("bundle: building decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("bundle: decoding document: %w", err)
	}

	for _, b := range parsed.TimeBlocks {
		startHour, startMinute, err := splitClock(b.Start)
		if err != nil {
			return fmt.Errorf("bundle: time block %d start: %w", b.ID, err)
		}
		endHour, endMinute, err := splitClock(b.End)
		if err != nil {
			return fmt.Errorf("bundle: time block %d end: %w", b.ID, err)
		}
		s.LoadTimeBlock(b.ID, b.Day, startHour, startMinute, endHour, endMinute)
	}

	for _, p := range parsed.Professors {
		s.LoadProfessor(p.ID, p.Name, p.AvailableBlockIDs)
	}

	for _, c := range parsed.Courses {
		s.LoadCourse(c.ID, c.Name, c.Enrollment, c.Prerequisites, c.Group, c.DurationBlocks)
		if c.ProfessorID != 0 {
			s.AssignProfessorToCourse(c.ID, c.ProfessorID)
		}
	}

	return nil
}

func splitClock(value string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	return hour, minute, nil
}
