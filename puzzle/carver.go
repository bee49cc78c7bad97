package puzzle

/*

Clue carving

Carving is the second half of generation.  Start from a full
board and repeatedly visit the remaining clues in a seed-shuffled
order, tentatively blanking each visited value.  A removal is
kept only when the remaining clues still force a unique solution;
otherwise the value goes back and the visit moves on.  A removal
late in a pass can unlock clues an earlier visit had to keep, so
passes repeat until the count reaches the target or a whole pass
removes nothing.  Each uniqueness check stops as soon as a second
solution turns up.

*/

import (
	"context"
	"math/rand/v2"
)

// Carve removes clues from a completely solved board until the
// clue count reaches the profile's target or no removable clue
// remains, whichever comes first.  The result is accepted when
// the final count lies inside the profile's band, so a carve
// that stalls short of the target can still succeed.
//
// Carving is deterministic in the seed: the same board, profile,
// and seed always carve the same puzzle.  The full board is not
// modified.  When the context expires mid-carve and the count is
// still outside the band, the returned Error reports the
// deadline rather than the band.
func Carve(ctx context.Context, full *Board, profile *DifficultyProfile, seed uint64) (*Puzzle, error) {
	if profile == nil {
		return nil, Error{
			Scope:     ArgumentScope,
			Structure: AttributeStructure,
			Condition: InvalidArgumentCondition,
			Attribute: DifficultyAttribute,
		}
	}
	if full == nil || !full.Solved() {
		return nil, Error{
			Scope:     ArgumentScope,
			Structure: AttributeStructure,
			Condition: UnsolvedBoardCondition,
			Attribute: BoardAttribute,
		}
	}
	solution := full.allValues()
	clues := append([]int(nil), solution...)
	clueCount := len(clues)

	rng := rand.New(rand.NewPCG(seed, carveSeedStream))
	for {
		carved := false
		for _, i := range rng.Perm(len(clues)) {
			if clueCount <= profile.Target || ctx.Err() != nil {
				break
			}
			if clues[i] == 0 {
				continue
			}
			value := clues[i]
			clues[i] = 0
			probe, err := create(samuraiMap, clues)
			if err != nil {
				panic(err) // the clues came from a solved board
			}
			switch probe.CountSolutions(ctx) {
			case UniqueSolution:
				clueCount--
				carved = true
			case NoSolutions:
				// removing a clue can only add solutions, never
				// remove them, so the solver itself is broken
				clues[i] = value
				return nil, Error{
					Scope:     InternalScope,
					Structure: AttributeStructure,
					Attribute: LocationAttribute,
					Condition: UnsatisfiableCondition,
					Values:    ErrorData{"Carve"},
				}
			default:
				// multiple solutions, or the deadline expired
				// mid-probe; either way the clue stays
				clues[i] = value
			}
		}
		if !carved || clueCount <= profile.Target || ctx.Err() != nil {
			break
		}
	}

	if !profile.Contains(clueCount) {
		if ctx.Err() != nil {
			return nil, Error{
				Scope:     CarveScope,
				Structure: ScopeStructure,
				Condition: DeadlineExceededCondition,
			}
		}
		return nil, Error{
			Scope:     CarveScope,
			Structure: ScopeStructure,
			Condition: ClueBandCondition,
			Values:    ErrorData{clueCount, profile.MinClues, profile.MaxClues},
		}
	}
	return &Puzzle{
		Clues:      clues,
		Solution:   solution,
		Difficulty: profile.Difficulty,
		ClueCount:  clueCount,
		Seed:       seed,
	}, nil
}
