package puzzle

/*

Full board generation

*/

import (
	"context"
	"math/rand/v2"
)

// PRNG stream selectors.  A job seed feeds two generators, one
// for filling and one for carving; giving each its own stream
// keeps their draws independent while staying reproducible from
// the single seed.
const (
	fillSeedStream  = 1
	carveSeedStream = 2
)

// GenerateFull creates a completely filled samurai board from
// the given seed.  The same seed always produces the same board,
// no matter what machine or how many other generations are
// running.
//
// The fill is a randomized but exhaustive search, so it cannot
// dead-end: it only fails if the context expires before the
// search finishes, which the returned Error then reports.
func GenerateFull(ctx context.Context, seed uint64) (*Board, error) {
	rng := rand.New(rand.NewPCG(seed, fillSeedStream))
	b, _, ok := solve(ctx, NewEmpty(), nil, rng)
	if !ok {
		return nil, Error{
			Scope:     SolveScope,
			Structure: ScopeStructure,
			Condition: DeadlineExceededCondition,
		}
	}
	if len(b.errors) > 0 {
		// the search space of an empty canvas can't be exhausted
		return nil, Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: LocationAttribute,
			Condition: UnsatisfiableCondition,
			Values:    ErrorData{"GenerateFull"},
		}
	}
	return b, nil
}
