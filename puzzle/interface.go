// Copyright 2016 Daniel C. Brotsky.  All rights reserved.

// Package puzzle provides a model for Samurai Sudoku puzzles and
// operations for generating them.
//
// A Samurai Sudoku puzzle is five overlapping 9x9 Sudoku grids
// laid out on a 21x21 canvas: one grid in each corner and one in
// the center.  The center grid shares each of its corner 3x3
// boxes with one of the corner grids, so the five grids are not
// independent: a value placed in a shared box constrains two
// grids at once.  Positions on the canvas covered by no grid are
// inactive and hold no squares.
//
// The active squares are designated by indices that start at 1
// and increase left-to-right, top-to-bottom (English reading
// order) over the canvas, skipping inactive positions.  Each
// square is either empty (represented with a 0 value) or has an
// assigned value between 1 and 9 (inclusive).
//
// For each empty square in a board, the implementation maintains
// a set of possible values the square can be assigned without
// conflicting with other squares.  The conflicting squares are
// determined by the groups that contain the square: the row,
// column, and tile of each grid the square belongs to.  Squares
// in a shared tile belong to two grids, so they are constrained
// by six groups rather than three.
//
// If a square in a group is the only possible location for a
// needed value, we say that the square is bound by the group,
// and the implementation tracks these bound squares.  If an
// assignment of some other value is made to that square, the
// board will not be solvable, and is deemed invalid.  Invalid
// boards can also arise from assignments of the same value to
// multiple squares in a group.
package puzzle

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
)

// New returns a Board holding the summary's values, with
// constraint relaxation already performed, or an error if the
// summary doesn't describe a samurai board.  The returned board
// may be unsolvable; that's not an error, it's reported by the
// board's Errors.
func New(summary *Summary) (*Board, error) {
	if summary == nil {
		return nil, Error{
			Scope:     ArgumentScope,
			Structure: AttributeStructure,
			Attribute: SummaryAttribute,
			Condition: InvalidArgumentCondition,
		}
	}
	if summary.Geometry != "" && summary.Geometry != SamuraiGeometryName {
		return nil, Error{
			Scope:     GeometryScope,
			Structure: AttributeValueStructure,
			Attribute: GeometryAttribute,
			Condition: UnknownGeometryCondition,
			Values:    ErrorData{summary.Geometry},
		}
	}
	if len(summary.Values) != SquareCount {
		return nil, Error{
			Scope:     GeometryScope,
			Structure: AttributeValueStructure,
			Attribute: BoardSizeAttribute,
			Condition: WrongBoardSizeCondition,
			Values:    ErrorData{len(summary.Values), SquareCount},
		}
	}
	return create(samuraiMap, summary.Values)
}

// NewEmpty returns a samurai Board with no assigned values.
func NewEmpty() *Board {
	b, err := create(samuraiMap, make([]int, SquareCount))
	if err != nil {
		// empty values can't be rejected
		panic(err)
	}
	return b
}

// A Summary is the positional content of a board: its geometry
// name and the values of its squares in index order (0 for
// empty).  Summaries are the serialization form for boards and
// for the clue and solution sides of generated puzzles.
type Summary struct {
	Geometry string `json:"geometry"`
	Values   []int  `json:"values"`
}

// Hash returns a digest of a summary's content, as an uppercase
// hexadecimal string.  Two summaries with the same geometry and
// values always have the same hash, so the hash serves as a
// storage identifier for generated content.
func (s *Summary) Hash() (string, error) {
	if s == nil {
		return "", Error{
			Scope:     ArgumentScope,
			Structure: AttributeStructure,
			Attribute: SummaryAttribute,
			Condition: InvalidArgumentCondition,
		}
	}
	var sb strings.Builder
	sb.WriteString(s.Geometry)
	for _, v := range s.Values {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(v))
	}
	return fmt.Sprintf("%X", sha256.Sum256([]byte(sb.String()))), nil
}

// A Puzzle is a finished generation product: a set of clues with
// a unique solution, the solution itself, and the parameters
// that produced it.  The Clues and Solution slices are in square
// index order; clue squares hold their value and carved squares
// hold 0.
type Puzzle struct {
	Clues      []int      `json:"clues"`
	Solution   []int      `json:"solution"`
	Difficulty Difficulty `json:"difficulty"`
	ClueCount  int        `json:"clueCount"`
	Seed       uint64     `json:"seed"`
}

// ClueSummary returns a summary of the puzzle's clue side.  The
// values are copied, so the caller can't damage the puzzle.
func (p *Puzzle) ClueSummary() *Summary {
	return &Summary{SamuraiGeometryName, append([]int(nil), p.Clues...)}
}

// SolutionSummary returns a summary of the puzzle's solved side.
func (p *Puzzle) SolutionSummary() *Summary {
	return &Summary{SamuraiGeometryName, append([]int(nil), p.Solution...)}
}

// Hash returns the storage identifier for a puzzle, which is the
// hash of its clue side.
func (p *Puzzle) Hash() (string, error) {
	return p.ClueSummary().Hash()
}

// A SolutionCount reports what a bounded solution count learned
// about a board.  Counting stops as soon as a second solution is
// found, so boards with two solutions and boards with thousands
// report the same way.
type SolutionCount int

// Constants for the solution count outcomes.  The zero value is
// UnknownSolutions, for counts that never ran or ran out of
// deadline.
const (
	UnknownSolutions SolutionCount = iota
	NoSolutions
	UniqueSolution
	MultipleSolutions
)

// Solution counts implement Stringer
func (sc SolutionCount) String() string {
	switch sc {
	case NoSolutions:
		return "no solutions"
	case UniqueSolution:
		return "a unique solution"
	case MultipleSolutions:
		return "multiple solutions"
	}
	return "an unknown number of solutions"
}

// A Square in a board gives the square's index, assigned value
// (if any), bound value (if any, with sources), and possible
// values (if more than one).  Board squares are numbered
// left-to-right, top-to-bottom over the canvas, starting at 1,
// and the sequence of squares is returned in that order.
//
// Only required fields should be specified in a Square, so as to
// minimize the Square's JSON-encoded form (which is used for
// transmission of puzzle data from server to client).  If an
// Aval (user-assigned value) is specified, no other fields
// should be present.  The Pvals (possible values) field should
// only be present if there are multiple possible values; if the
// square has only one possible value it should be specified as
// the Aval or the Bval (bound value).  A Bsrc (bound value
// source) should only be present if a group requires that bound
// value be assigned to the Square.
type Square struct {
	Index int       `json:"index"`
	Aval  int       `json:"aval,omitempty"`
	Bval  int       `json:"bval,omitempty"`
	Bsrc  []GroupID `json:"bsrc,omitempty"`
	Pvals intset    `json:"pvals,omitempty"`
}

// A GroupID names a row, column, or tile of one of the five
// grids, collectively called groups.  The Grid is one of the
// five grid names; the numbering of each type of group is
// 1-based within its grid.
type GroupID struct {
	Grid  string `json:"grid"`
	Gtype string `json:"gtype"`
	Index int    `json:"index"`
}

// Group IDs implement Stringer
func (gid GroupID) String() string {
	if gid.Gtype == "" {
		return fmt.Sprintf("%s <group> %d", gid.Grid, gid.Index)
	}
	return fmt.Sprintf("%s %s %d", gid.Grid, gid.Gtype, gid.Index)
}

// GType (group type) constants.  These are human-readable but
// not localized.
const (
	GtypeRow  = "row"
	GtypeCol  = "column"
	GtypeTile = "tile"
)

// A Choice assigns a value to a square.  The square is referred
// to by its index.
type Choice struct {
	Index int `json:"index"`
	Value int `json:"value"`
}

// A Solution is a filled-in board (expressed as its values) plus
// the sequence of choices for empty squares that were made to
// get there.  Solutions tend to have far fewer choices than
// originally empty squares, because most of the empty squares in
// most boards have their values forced (bound) by the overlap
// structure.  These bound values are present only in the solved
// values, not in the choice list.
type Solution struct {
	Values  []int    `json:"values"`
	Choices []Choice `json:"choices,omitempty"`
}
