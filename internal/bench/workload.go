// Package bench drives index chains with a timetabling workload: lessons are
// inserted, then repeatedly moved to another room, day or slot the way a local
// search solver would, while both sides of the join are queried.
package bench

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/Aman-CERP/joinindex/internal/config"
)

// maxLessonLength is the longest lesson, in slots.
const maxLessonLength = 3

// Lesson is one planning fact. A lesson occupies [Start, End) on Day in Room,
// needs Skill and is tagged with Skills.
type Lesson struct {
	ID     int
	Room   int
	Day    int
	Start  int
	End    int
	Skill  int
	Skills []int
}

func (l *Lesson) String() string {
	return fmt.Sprintf("lesson#%d(room=%d day=%d %d-%d skill=%d skills=%v)",
		l.ID, l.Room, l.Day, l.Start, l.End, l.Skill, l.Skills)
}

// Key mappings used by scenario joiners.
func room(l *Lesson) any   { return l.Room }
func day(l *Lesson) any    { return l.Day }
func start(l *Lesson) any  { return l.Start }
func end(l *Lesson) any    { return l.End }
func skill(l *Lesson) any  { return l.Skill }
func skills(l *Lesson) any { return l.Skills }

// Workload holds the dimensions lessons are drawn from.
type Workload struct {
	Rooms  int
	Days   int
	Slots  int
	Skills int
}

// NewWorkload reads the dimensions from the bench configuration.
func NewWorkload(cfg config.BenchConfig) Workload {
	return Workload{
		Rooms:  cfg.Rooms,
		Days:   cfg.Days,
		Slots:  cfg.Slots,
		Skills: cfg.Skills,
	}
}

// Generate returns n lessons with IDs 0..n-1.
func (w Workload) Generate(n int, rng *rand.Rand) []*Lesson {
	lessons := make([]*Lesson, n)
	for i := range lessons {
		lessons[i] = w.Lesson(i, rng)
	}
	return lessons
}

// Lesson draws one random lesson.
func (w Workload) Lesson(id int, rng *rand.Rand) *Lesson {
	l := &Lesson{
		ID:   id,
		Room: rng.IntN(w.Rooms),
		Day:  rng.IntN(w.Days),
	}
	w.placeInDay(l, 1+rng.IntN(min(maxLessonLength, w.Slots)), rng)
	w.assignSkills(l, rng)
	return l
}

// Move changes one planning variable of l: room, day, time slot or skills.
func (w Workload) Move(l *Lesson, rng *rand.Rand) {
	switch rng.IntN(4) {
	case 0:
		l.Room = rng.IntN(w.Rooms)
	case 1:
		l.Day = rng.IntN(w.Days)
	case 2:
		w.placeInDay(l, l.End-l.Start, rng)
	default:
		w.assignSkills(l, rng)
	}
}

func (w Workload) placeInDay(l *Lesson, length int, rng *rand.Rand) {
	l.Start = rng.IntN(w.Slots - length + 1)
	l.End = l.Start + length
}

// assignSkills draws the required skill and one to three distinct tags.
func (w Workload) assignSkills(l *Lesson, rng *rand.Rand) {
	l.Skill = rng.IntN(w.Skills)

	n := 1 + rng.IntN(min(3, w.Skills))
	tags := make([]int, 0, n)
	for len(tags) < n {
		s := rng.IntN(w.Skills)
		if !slices.Contains(tags, s) {
			tags = append(tags, s)
		}
	}
	slices.Sort(tags)
	l.Skills = tags
}
