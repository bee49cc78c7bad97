// Package batch turns puzzle requests into settled puzzles on a
// pool of worker goroutines.  Every slot of a batch draws its
// seeds from the batch's master seed and its own slot index, so
// a batch rerun with the same requests and master seed produces
// the same puzzles in the same order, however many workers carry
// the load.
package batch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SKR35/Samurai-Sudoku-Generator/puzzle"
)

/*

Requests and outcomes

*/

// A Request asks for a number of puzzles at one difficulty.
// Difficulty names resolve case-insensitively.
type Request struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// A State is the position of one job in its lifecycle.  Jobs
// move Pending, Generating, Carving and then settle in exactly
// one of Accepted, Failed, or TimedOut.
type State int

// Constants for the job states.
const (
	Pending State = iota
	Generating
	Carving
	Accepted
	Failed
	TimedOut
	MaxState
)

var stateNames = []string{
	"Pending", "Generating", "Carving", "Accepted", "Failed", "TimedOut",
}

func (s State) String() string {
	if s < Pending || s >= MaxState {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// An Outcome is the settled result of one slot.  Accepted slots
// carry their puzzle; the others carry the error that stopped
// them.
type Outcome struct {
	Index      int
	Difficulty puzzle.Difficulty
	Seed       uint64
	Attempts   int
	State      State
	Puzzle     *puzzle.Puzzle
	Err        error
}

// A PartialFailure lists the slots of a batch that settled
// without a puzzle.  The other slots' puzzles are still good.
type PartialFailure struct {
	Slots []int
}

func (pf *PartialFailure) Error() string {
	return fmt.Sprintf("%d slots produced no puzzle: %v", len(pf.Slots), pf.Slots)
}

/*

Seed derivation

*/

// deriveSeed gives every attempt at every slot its own seed,
// pinned to the master seed.  The slot and attempt pack into
// the PCG stream selector, so no two attempts anywhere in the
// batch share a generator, and a rerun derives the same seeds.
func deriveSeed(master uint64, slot, attempt int) uint64 {
	return rand.NewPCG(master, uint64(slot)<<16|uint64(attempt)).Uint64()
}

/*

Orchestration

*/

// Retry budget for a slot whose attempts keep washing out.
const maxAttempts = 3

// log goes through the shared logrus logger, so hosts can set
// the format and level for the whole process in one place.
var log = logrus.StandardLogger()

// A job is the unit of work for one output slot.
type job struct {
	index   int
	profile *puzzle.DifficultyProfile
}

// expand turns the requests into one job per output slot.  A
// request with an unknown difficulty or a non-positive count
// fails the whole batch up front, before any work starts.
func expand(requests []Request) ([]job, error) {
	var jobs []job
	for _, r := range requests {
		profile, err := puzzle.LookupDifficulty(r.Difficulty)
		if err != nil {
			return nil, err
		}
		if r.Count < 1 {
			return nil, puzzle.Error{
				Scope:     puzzle.ArgumentScope,
				Structure: puzzle.AttributeValueStructure,
				Condition: puzzle.TooSmallCondition,
				Attribute: puzzle.NamedAttribute,
				Values:    puzzle.ErrorData{"Count", r.Count, 1},
			}
		}
		for i := 0; i < r.Count; i++ {
			jobs = append(jobs, job{index: len(jobs), profile: profile})
		}
	}
	return jobs, nil
}

// Run generates one puzzle per requested slot and returns the
// outcomes ordered by slot index, whatever order the work
// finished in.  The deadline is a time budget charged to each
// attempt at each slot separately; a non-positive budget is
// already spent, so every attempt times out.  When every slot
// settles Accepted the error is nil; otherwise it is a
// *PartialFailure naming the failed slots, and the successful
// slots still carry their puzzles.
func Run(ctx context.Context, requests []Request, masterSeed uint64, workerCount int, perJobDeadline time.Duration) ([]Outcome, error) {
	jobs, err := expand(requests)
	if err != nil {
		return nil, err
	}
	outcomes := make([]Outcome, len(jobs))
	if len(jobs) == 0 {
		return outcomes, nil
	}

	pool := newWorkerPool(workerCount)
	defer pool.close()
	log.WithFields(logrus.Fields{
		"jobs":    len(jobs),
		"workers": pool.workers,
		"seed":    masterSeed,
	}).Info("batch started")

	var wg sync.WaitGroup
	for i := range jobs {
		j := jobs[i]
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcomes[j.index] = runJob(ctx, j, masterSeed, perJobDeadline)
		}
		if pool.submit(ctx, task) != nil {
			// The context died while we waited on a jammed queue.
			// The job still settles with its usual seeds; it just
			// fails fast on the dead context in this goroutine.
			task()
		}
	}
	wg.Wait()

	var failed []int
	for i := range outcomes {
		if outcomes[i].State != Accepted {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		return outcomes, &PartialFailure{Slots: failed}
	}
	return outcomes, nil
}

// runJob settles one slot.  Attempts continue through carve
// rejections and per-attempt deadline expiries, each with the
// next derived seed, until the retry budget runs out.  Any
// other failure is final on the spot.
func runJob(ctx context.Context, j job, masterSeed uint64, deadline time.Duration) Outcome {
	out := Outcome{Index: j.index, Difficulty: j.profile.Difficulty, State: Pending}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out.Attempts = attempt
		out.Seed = deriveSeed(masterSeed, j.index, attempt)
		entry := log.WithFields(logrus.Fields{
			"slot":       j.index,
			"difficulty": j.profile.Difficulty,
			"seed":       out.Seed,
			"attempt":    attempt,
		})

		start := time.Now()
		p, err := runAttempt(ctx, j.profile, out.Seed, deadline, &out)
		if err == nil {
			out.State = Accepted
			out.Puzzle = p
			out.Err = nil
			entry.WithFields(logrus.Fields{
				"clueCount": p.ClueCount,
				"duration":  time.Since(start),
			}).Info("puzzle accepted")
			return out
		}
		out.Err = err
		switch {
		case puzzle.IsDeadlineExceeded(err):
			out.State = TimedOut
			entry.WithField("duration", time.Since(start)).Warn("attempt timed out")
		case puzzle.IsCarveFailure(err):
			out.State = Failed
			entry.WithField("error", err).Warn("carve rejected the attempt")
		default:
			out.State = Failed
			entry.WithField("error", err).Error("job failed")
			return out
		}
		if ctx.Err() != nil {
			// The whole batch is out of time, not just this
			// attempt, so retrying would end the same way.
			return out
		}
	}
	if out.State == Failed {
		out.Err = puzzle.Error{
			Scope:     puzzle.CarveScope,
			Structure: puzzle.ScopeStructure,
			Condition: puzzle.RetriesExhaustedCondition,
			Values:    puzzle.ErrorData{maxAttempts},
		}
	}
	return out
}

// runAttempt runs the generate and carve legs of one try at a
// slot, moving the outcome's state as the legs start.
func runAttempt(ctx context.Context, profile *puzzle.DifficultyProfile, seed uint64, deadline time.Duration, out *Outcome) (*puzzle.Puzzle, error) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	out.State = Generating
	full, err := puzzle.GenerateFull(ctx, seed)
	if err != nil {
		return nil, err
	}
	out.State = Carving
	return puzzle.Carve(ctx, full, profile, seed)
}
