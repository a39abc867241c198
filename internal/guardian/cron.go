package guardian

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule is a parsed 5-field cron expression: minute, hour,
// day-of-month, month, day-of-week.
type Schedule struct {
	minutes fieldSet
	hours   fieldSet
	days    fieldSet
	months  fieldSet
	dows    fieldSet
}

type fieldSet map[int]struct{}

func (s fieldSet) has(v int) bool {
	_, ok := s[v]
	return ok
}

// ParseSchedule parses a cron expression supporting *, */N, N, N-M,
// N-M/S, and comma lists. Day-of-week 7 is accepted as Sunday.
func ParseSchedule(expr string) (*Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("cron: expected 5 fields, got %d", len(fields))
	}

	specs := []struct {
		name     string
		min, max int
		dst      *fieldSet
	}{
		{"minute", 0, 59, nil},
		{"hour", 0, 23, nil},
		{"day-of-month", 1, 31, nil},
		{"month", 1, 12, nil},
		{"day-of-week", 0, 7, nil},
	}
	sched := &Schedule{}
	specs[0].dst = &sched.minutes
	specs[1].dst = &sched.hours
	specs[2].dst = &sched.days
	specs[3].dst = &sched.months
	specs[4].dst = &sched.dows

	for i, spec := range specs {
		set, err := parseCronField(fields[i], spec.min, spec.max)
		if err != nil {
			return nil, fmt.Errorf("cron: %s: %w", spec.name, err)
		}
		*spec.dst = set
	}
	// Fold 7 into 0 so both spellings of Sunday match.
	if sched.dows.has(7) {
		delete(sched.dows, 7)
		sched.dows[0] = struct{}{}
	}
	return sched, nil
}

// Matches reports whether t falls on the schedule, at minute
// granularity.
func (s *Schedule) Matches(t time.Time) bool {
	return s.minutes.has(t.Minute()) &&
		s.hours.has(t.Hour()) &&
		s.days.has(t.Day()) &&
		s.months.has(int(t.Month())) &&
		s.dows.has(int(t.Weekday()))
}

// Next returns the first matching time after t, or the zero time if
// none occurs within two years.
func (s *Schedule) Next(t time.Time) time.Time {
	c := t.Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(2, 0, 0)
	for c.Before(limit) {
		switch {
		case !s.months.has(int(c.Month())):
			c = time.Date(c.Year(), c.Month()+1, 1, 0, 0, 0, 0, c.Location())
		case !s.days.has(c.Day()) || !s.dows.has(int(c.Weekday())):
			c = time.Date(c.Year(), c.Month(), c.Day()+1, 0, 0, 0, 0, c.Location())
		case !s.hours.has(c.Hour()):
			c = time.Date(c.Year(), c.Month(), c.Day(), c.Hour()+1, 0, 0, 0, c.Location())
		case !s.minutes.has(c.Minute()):
			c = c.Add(time.Minute)
		default:
			return c
		}
	}
	return time.Time{}
}

func parseCronField(field string, min, max int) (fieldSet, error) {
	set := make(fieldSet)
	for _, part := range strings.Split(field, ",") {
		if err := addCronPart(set, part, min, max); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func addCronPart(set fieldSet, part string, min, max int) error {
	lo, hi, step := min, max, 1

	body, stepStr, hasStep := strings.Cut(part, "/")
	if hasStep {
		n, err := strconv.Atoi(stepStr)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid step in %q", part)
		}
		step = n
	}

	switch {
	case body == "*":
		// full range
	case strings.Contains(body, "-"):
		loStr, hiStr, _ := strings.Cut(body, "-")
		var err error
		if lo, err = strconv.Atoi(loStr); err != nil {
			return fmt.Errorf("invalid range start %q", loStr)
		}
		if hi, err = strconv.Atoi(hiStr); err != nil {
			return fmt.Errorf("invalid range end %q", hiStr)
		}
		if lo < min || hi > max || lo > hi {
			return fmt.Errorf("range %d-%d out of bounds [%d,%d]", lo, hi, min, max)
		}
	default:
		v, err := strconv.Atoi(body)
		if err != nil {
			return fmt.Errorf("invalid value %q", body)
		}
		if v < min || v > max {
			return fmt.Errorf("value %d out of bounds [%d,%d]", v, min, max)
		}
		if hasStep {
			return fmt.Errorf("step needs a range in %q", part)
		}
		lo, hi = v, v
	}

	for v := lo; v <= hi; v += step {
		set[v] = struct{}{}
	}
	return nil
}
