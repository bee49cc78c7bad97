package puzzle

import (
	"context"
	"fmt"
	"math/rand/v2"
)

/*

Samurai board solver

The solver uses an algorithm adapted from the method used by some
human solvers I have observed.  It is a depth-first search
algorithm that uses a stack for backtracking.  It is called
Ariadne's thread, after the mythical heroine who used a ball of
yarn as a stack in her depth-first search for an exit from the
minotaur's maze.

1. Fill in all the bound values you can.

2. Check the state of the board:

2.1 If the board is solved, you're done.

2.2 If the board has errors, go to step 4.

2.3 The board has unbound, empty squares.  Continue to step 3.

3. Guess a value for an unbound, empty square as follows:

3.1 Find the first unbound square with the fewest number of
possible values.  (Any order for choosing the square works, this
algorithm uses reading order.)

3.2 Save the board state, the chosen square, and the possible
values on the top of the stack.

3.3 Assign the first of the possible values to the chosen square.

3.4 Go to step 1.

4. "Rewind your thread" as follows:

4.1 Pop the stack until you find an entry that has unused choices
for its chosen square.

4.2 If the stack is empty, stop.  The board can't be solved.

4.3 Restore the board state from the state on the stack.

4.4 Fill in the chosen square with the first remaining possible value.

4.5 Go to step 1.

The order in which step 3.3 tries the possible values is what
distinguishes the solver's two uses.  With no PRNG, values are
tried in ascending order, so the search is fully deterministic;
that's how solution counting works.  With a seeded PRNG, the
values are shuffled before the first is tried, so repeated
searches from an empty board produce different (but seed-
reproducible) filled boards; that's how full boards are
generated.

Every trip around the search loop checks the context, so callers
can bound searches that would otherwise run a very long time on
sparse samurai canvases.

*/

// A choice is a board, a square to choose, the choice to try
// first in that square, and the next choices to try after that.
// The next choices are kept in try order, which is only sorted
// when the search is deterministic.
type choice struct {
	brd    *Board
	cindex int
	cvalue int
	cnext  []int
}

// A thread is a stack of choices
type thread []choice

// solve a board using Ariadne's thread.  Entered with a board
// and a stack of prior choices (which can be empty), this finds
// the next possible solution and returns the board and stack at
// time of solution (or unsolvable error).  The final return is
// false if the context expired before the search finished, in
// which case the returned board and stack are unfinished work.
func solve(ctx context.Context, b *Board, t thread, rng *rand.Rand) (*Board, thread, bool) {
	for {
		if ctx.Err() != nil {
			return b, t, false
		}
		if len(b.errors) == 0 && assignKnown(b) {
			return b, t, true
		}
		if len(b.errors) > 0 {
			b, t = popChoice(b, t)
			if len(t) == 0 {
				return b, t, true
			}
			continue
		}
		b, t = pushChoice(b, t, rng)
	}
}

// assignKnown takes a solvable board and tries to solve it by
// assigning all the known empty squares (bound or single-valued)
// to their known value and then looping to see if those
// assignments led to more known values that it can assign.  If
// it is able to fill all the board's empty squares with legal
// values, then it has solved the board and returns true.  If
// there are empty squares left, or if one of its assignments
// make the board unsolvable, then it returns false.
func assignKnown(b *Board) bool {
	for {
		known, unknown := 0, 0
		for i := 1; i <= b.mapping.scount; i++ {
			if b.squares[i].aval == 0 {
				if b.squares[i].bval != 0 {
					known++
					b.assign(i, b.squares[i].bval)
				} else if len(b.squares[i].pvals) == 1 {
					known++
					b.assign(i, b.squares[i].pvals[0])
				} else {
					unknown++
				}
				if len(b.errors) > 0 {
					return false
				}
			}
		}
		if unknown == 0 {
			return true
		}
		if known == 0 {
			return false
		}
	}
}

// popChoice resets a board to the next choice after the current
// choice in a thread has failed.  If there is no next choice,
// the incoming board is returned, along with the empty thread.
func popChoice(b *Board, t thread) (*Board, thread) {
	for len(t) > 0 {
		top := &t[len(t)-1]
		if len(top.cnext) == 0 {
			*top = choice{} // release storage held in choice before pop
			t = t[:len(t)-1]
			continue
		}
		new := top.brd.copy()
		top.cvalue, top.cnext = top.cnext[0], top.cnext[1:]
		new.assign(top.cindex, top.cvalue) // errors handled by caller
		return new, t
	}
	return b, t
}

// pushChoice chooses an unbound square to assign, pushes a board
// copy and the choice on the stack, and then applies that choice
// to the board.  A non-nil rng shuffles the order in which the
// square's possible values will be tried.
func pushChoice(b *Board, t thread, rng *rand.Rand) (*Board, thread) {
	cindex, ccount := 0, GridSize+1
	for i := 1; i <= b.mapping.scount; i++ {
		if b.squares[i].aval == 0 && b.squares[i].bval == 0 {
			count := len(b.squares[i].pvals)
			if count == 2 {
				cindex, ccount = i, 2
				break
			}
			if count < ccount {
				cindex, ccount = i, count
			}
		}
	}
	if cindex == 0 {
		// internal caller error - called when no choice available
		panic(fmt.Errorf("pushChoice called with no available choices"))
	}
	order := append([]int(nil), b.squares[cindex].pvals...)
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	c := choice{
		brd:    b.copy(),
		cindex: cindex,
		cvalue: order[0],
		cnext:  order[1:],
	}
	// The guess may prove immediately contradictory; the solve
	// loop pops the thread when that happens.
	b.assign(c.cindex, c.cvalue)
	return b, append(t, c)
}

// newSolution constructs a solution from a solved board and its
// solving thread.
func newSolution(b *Board, t thread) Solution {
	S := Solution{Values: b.allValues()}
	if len(t) > 0 {
		S.Choices = make([]Choice, len(t))
		for i := range t {
			S.Choices[i].Index, S.Choices[i].Value = t[i].cindex, t[i].cvalue
		}
	}
	return S
}

/*

Bounded operations over the search

*/

// CountSolutions reports whether the board has no solutions,
// exactly one, or more than one.  The search is deterministic
// and stops as soon as a second solution is found.  The board is
// copied first, so it's not altered during the count.
//
// The context bounds the search.  If it expires before the count
// is decided (including a context that is already expired on
// entry), the result is UnknownSolutions.
func (b *Board) CountSolutions(ctx context.Context) SolutionCount {
	count := 0
	p, t, ok := solve(ctx, b.copy(), nil, nil)
	for {
		if !ok {
			return UnknownSolutions
		}
		if len(p.errors) > 0 {
			break
		}
		count++
		if count > 1 {
			return MultipleSolutions
		}
		p, t = popChoice(p, t)
		if len(t) == 0 {
			break
		}
		p, t, ok = solve(ctx, p, t, nil)
	}
	if count == 0 {
		return NoSolutions
	}
	return UniqueSolution
}

// Solution finds the board's first solution in deterministic
// search order.  The board is copied first, so it's not altered.
// An Error is returned if the board has no solutions or the
// context expires before one is found.
func (b *Board) Solution(ctx context.Context) (Solution, error) {
	p, t, ok := solve(ctx, b.copy(), nil, nil)
	if !ok {
		return Solution{}, Error{
			Scope:     SolveScope,
			Structure: ScopeStructure,
			Condition: DeadlineExceededCondition,
		}
	}
	if len(p.errors) > 0 {
		return Solution{}, Error{
			Scope:     SolveScope,
			Structure: ScopeStructure,
			Condition: UnsatisfiableCondition,
		}
	}
	return newSolution(p, t), nil
}
