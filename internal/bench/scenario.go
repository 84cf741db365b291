package bench

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Aman-CERP/joinindex/internal/config"
	"github.com/Aman-CERP/joinindex/pkg/joiner"
)

// Scenario is a named join between lessons.
type Scenario struct {
	Name    string
	Joiners *joiner.Joiners[*Lesson, *Lesson]
}

type lessonJoiners = joiner.Joiners[*Lesson, *Lesson]

func lessons() *lessonJoiners {
	return joiner.New[*Lesson, *Lesson]()
}

// benchScenarios are the constraint shapes a timetabling solver indexes.
var benchScenarios = map[string]func() *lessonJoiners{
	// Two lessons in the same room on the same day.
	config.ScenarioEqual: func() *lessonJoiners {
		return lessons().Equal(room, room).Equal(day, day)
	},
	// Two lessons in the same room whose time ranges overlap.
	config.ScenarioMixed: func() *lessonJoiners {
		return lessons().Equal(room, room).Equal(day, day).LessThan(start, end).GreaterThan(end, start)
	},
	// Same day and at least one shared skill tag.
	config.ScenarioContainingAnyOf: func() *lessonJoiners {
		return lessons().Equal(day, day).ContainingAnyOf(skills, skills)
	},
	// Same day and the left lesson's skill is among the right lesson's tags.
	config.ScenarioContainedIn: func() *lessonJoiners {
		return lessons().Equal(day, day).ContainedIn(skill, skills)
	},
}

// checkScenarios exercise every joiner type, alone and combined.
var checkScenarios = []struct {
	name    string
	joiners func() *lessonJoiners
}{
	{joiner.Equal.String(), func() *lessonJoiners { return lessons().Equal(room, room).Equal(day, day).Equal(start, start) }},
	{joiner.LessThan.String(), func() *lessonJoiners { return lessons().Equal(day, day).LessThan(start, end) }},
	{joiner.LessOrEqual.String(), func() *lessonJoiners { return lessons().LessOrEqual(end, start) }},
	{joiner.GreaterThan.String(), func() *lessonJoiners { return lessons().GreaterThan(end, start).Equal(room, room) }},
	{joiner.GreaterOrEqual.String(), func() *lessonJoiners { return lessons().Equal(room, room).GreaterOrEqual(start, start) }},
	{joiner.Containing.String(), func() *lessonJoiners { return lessons().Containing(skills, skill) }},
	{joiner.ContainedIn.String(), func() *lessonJoiners { return lessons().Equal(room, room).ContainedIn(skill, skills) }},
	{joiner.ContainingAnyOf.String(), func() *lessonJoiners { return lessons().ContainingAnyOf(skills, skills) }},
	{"deep", func() *lessonJoiners {
		return lessons().Equal(room, room).GreaterThan(end, start).ContainingAnyOf(skills, skills).
			Equal(day, day).LessThan(start, end)
	}},
}

// ScenarioNames lists every bench scenario name, sorted.
func ScenarioNames() []string {
	names := make([]string, 0, len(benchScenarios))
	for name := range benchScenarios {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupScenarios resolves bench scenario names in the given order.
func LookupScenarios(names []string) ([]Scenario, error) {
	out := make([]Scenario, 0, len(names))
	for _, name := range names {
		build, ok := benchScenarios[name]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (want one of %s)", name, strings.Join(ScenarioNames(), ", "))
		}
		out = append(out, Scenario{Name: name, Joiners: build()})
	}
	return out, nil
}

// CheckScenarios returns one scenario per joiner type plus a five-level chain.
func CheckScenarios() []Scenario {
	out := make([]Scenario, 0, len(checkScenarios))
	for _, s := range checkScenarios {
		out = append(out, Scenario{Name: s.name, Joiners: s.joiners()})
	}
	return out
}
