package bench

import (
	"context"
	"hash/fnv"
	"iter"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/internal/telemetry"
	"github.com/Aman-CERP/joinindex/internal/ui"
	"github.com/Aman-CERP/joinindex/pkg/index"
)

const (
	// probesPerCheck is the number of probes used by each periodic check.
	probesPerCheck = 16
	// finalProbes is the number of probes used by the last check of a job.
	finalProbes = 64
	// drawSize is how many swap candidates a move samples.
	drawSize = 3
	// cancelCheckEvery is how often, in moves, the context is consulted.
	cancelCheckEvery = 256
)

// job runs one scenario on one backend.
type job struct {
	scenario    Scenario
	backend     index.Backend
	workload    Workload
	facts       int
	moves       int
	verifyEvery int
	seed        uint64

	observer index.Observer
	logger   *slog.Logger
	// report is called with the job's stage and the number of moves it made
	// since the previous call.
	report func(stage ui.Stage, moved int, msg string)
}

func (j *job) label() string {
	return j.scenario.Name + "/" + j.backend.String()
}

// placement remembers where a lesson is stored in both chains.
type placement struct {
	leftKey    any
	leftEntry  index.Entry
	rightKey   any
	rightEntry index.Entry
}

// run executes the job. Invariant violations inside the chains surface as
// fatal errors rather than panics.
func (j *job) run(ctx context.Context) (telemetry.ScenarioResult, error) {
	var result telemetry.ScenarioResult
	var runErr error
	if err := errors.Capture(func() { result, runErr = j.execute(ctx) }); err != nil {
		runErr = err
	}
	return result, j.annotate(runErr)
}

// annotate tags the IndexError in err's chain with the job label.
func (j *job) annotate(err error) error {
	if ie, ok := errors.As(err); ok {
		ie.WithDetail("job", j.label())
	}
	return err
}

func (j *job) execute(ctx context.Context) (telemetry.ScenarioResult, error) {
	result := telemetry.ScenarioResult{
		Scenario: j.scenario.Name,
		Backend:  j.backend.String(),
		Facts:    j.facts,
		Moves:    j.moves,
	}

	j.report(ui.StageGenerating, 0, "")
	// Backends of one scenario share a workload and move sequence so their
	// numbers compare. Draws and probes use their own streams.
	rng := rand.New(rand.NewPCG(j.seed, streamID(j.scenario.Name)))
	probeRNG := rand.New(rand.NewPCG(j.seed, streamID(j.scenario.Name+"#probe")))
	drawRNG := rand.New(rand.NewPCG(j.seed, streamID(j.scenario.Name+"#draw")))
	lessons := j.workload.Generate(j.facts, rng)

	left, right, err := j.buildSides()
	if err != nil {
		return result, err
	}
	result.Chains = []string{left.idx.String(), right.idx.String()}

	j.report(ui.StageInserting, 0, "")
	places := make([]placement, len(lessons))
	for i, l := range lessons {
		places[i] = j.insert(left, right, l)
	}

	j.report(ui.StageMoving, 0, "")
	progressEvery := max(j.moves/100, 1)
	sinceReport := 0
	var queries, matches int64
	start := time.Now()

	for m := 1; m <= j.moves; m++ {
		if m%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		l := lessons[rng.IntN(len(lessons))]
		j.retract(left, right, l, places[l.ID])
		j.workload.Move(l, rng)
		places[l.ID] = j.insert(left, right, l)

		// Lessons that now conflict with l, seen from both sides.
		n := 0
		left.idx.ForEach(left.queryKey(l), func(*Lesson) { n++ })
		matches += int64(n) + int64(right.idx.Size(right.queryKey(l)))
		queries += 2

		// Sample swap candidates.
		drawn := 0
		for range j.candidates(left, l, drawRNG) {
			if drawn++; drawn == drawSize {
				break
			}
		}
		queries++

		if sinceReport++; sinceReport == progressEvery {
			j.report(ui.StageMoving, sinceReport, "")
			sinceReport = 0
		}

		if j.verifyEvery > 0 && m%j.verifyEvery == 0 {
			if err := j.verify(left, right, lessons, probeRNG, probesPerCheck); err != nil {
				return result, err
			}
			result.Verified++
		}
	}
	result.Elapsed = time.Since(start)
	result.Queries = queries
	result.Matches = matches
	if sinceReport > 0 {
		j.report(ui.StageMoving, sinceReport, "")
	}

	if j.verifyEvery > 0 {
		j.report(ui.StageVerifying, 0, "")
		if err := j.verify(left, right, lessons, probeRNG, finalProbes); err != nil {
			return result, err
		}
		result.Verified++
	}

	j.logger.Debug("bench_job_finished",
		slog.String("job", j.label()),
		slog.Int("moves", j.moves),
		slog.Int64("matches", matches),
		slog.Int("verified", result.Verified),
		slog.Duration("elapsed", result.Elapsed))

	return result, nil
}

// buildSides compiles the scenario and builds both chains. The left chain is
// queried with right keys and the right chain with left keys.
func (j *job) buildSides() (*side, *side, error) {
	js := j.scenario.Joiners
	f, err := index.NewFactory(js.Predicates(), index.WithBackend(j.backend), index.WithLogger(j.logger))
	if err != nil {
		return nil, nil, err
	}
	leftKey, err := index.KeysExtractor(f, js.LeftMappings())
	if err != nil {
		return nil, nil, err
	}
	rightKey, err := index.KeysExtractor(f, js.RightMappings())
	if err != nil {
		return nil, nil, err
	}

	left := &side{
		name:       j.label() + "/left",
		idx:        j.observe(index.Build[*Lesson](f, index.Left), j.label()+"/left"),
		storeKey:   leftKey,
		queryKey:   rightKey,
		matches:    js.Matches,
		positional: f.SupportsGet(index.Left),
	}
	right := &side{
		name:       j.label() + "/right",
		idx:        j.observe(index.Build[*Lesson](f, index.Right), j.label()+"/right"),
		storeKey:   rightKey,
		queryKey:   leftKey,
		matches:    func(stored, probe *Lesson) bool { return js.Matches(probe, stored) },
		positional: f.SupportsGet(index.Right),
	}
	return left, right, nil
}

func (j *job) observe(idx index.Indexer[*Lesson], name string) index.Indexer[*Lesson] {
	if j.observer == nil {
		return idx
	}
	return index.Observe(idx, name, j.observer)
}

func (j *job) insert(left, right *side, l *Lesson) placement {
	p := placement{leftKey: left.storeKey(l), rightKey: right.storeKey(l)}
	p.leftEntry = left.idx.Put(p.leftKey, l)
	p.rightEntry = right.idx.Put(p.rightKey, l)
	return p
}

func (j *job) retract(left, right *side, l *Lesson, p placement) {
	left.idx.Remove(p.leftKey, p.leftEntry)
	right.idx.Remove(p.rightKey, p.rightEntry)
}

// candidates yields lessons joining with l in random order when the chain
// supports positional access, in index order otherwise.
func (j *job) candidates(s *side, l *Lesson, rng *rand.Rand) iter.Seq[*Lesson] {
	key := s.queryKey(l)
	if s.positional {
		return index.RandomSequence(s.idx, key, rng)
	}
	return s.idx.Iterator(key)
}

// verify checks both chains with existing lessons and fresh ones as probes.
func (j *job) verify(left, right *side, lessons []*Lesson, rng *rand.Rand, n int) error {
	probes := make([]*Lesson, 0, n)
	for i := range n {
		if i%2 == 0 {
			probes = append(probes, lessons[rng.IntN(len(lessons))])
		} else {
			probes = append(probes, j.workload.Lesson(-1, rng))
		}
	}
	if err := left.verify(lessons, probes); err != nil {
		return err
	}
	return right.verify(lessons, probes)
}

// streamID derives a random stream from a name.
func streamID(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}
