// samurai.go - a Samurai Sudoku puzzle generator.
// Copyright (C) 2016 Daniel C. Brotsky.
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, write to the Free Software Foundation, Inc.,
// 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
// Licensed under the LGPL v3.  See the LICENSE file for details

package puzzle

import (
	"reflect"
	"testing"
)

/*

Test helpers

*/

// mustSquareAt looks up the square index at a canvas position
// that the test knows is active.
func mustSquareAt(t *testing.T, row, col int) int {
	si, ok := SquareAt(row, col)
	if !ok {
		t.Fatalf("No active square at canvas position (%d, %d)", row, col)
	}
	return si
}

// valuesAt builds a full canvas value list with the given values
// at the given canvas positions and zeros everywhere else.
func valuesAt(t *testing.T, at map[[2]int]int) []int {
	values := make([]int, SquareCount)
	for pos, v := range at {
		values[mustSquareAt(t, pos[0], pos[1])-1] = v
	}
	return values
}

// hasValue reports whether an intset contains a value.
func hasValue(is intset, v int) bool {
	_, found := is.find(v)
	return found
}

/*

Integer sets

*/

func TestNewIntsetRange(t *testing.T) {
	norm := intset{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	for i := -2; i <= len(norm); i++ {
		out := newIntsetRange(i)
		if out == nil {
			t.Fatalf("Creating intset range(%d) produced nil", i)
		}
		if i < 1 {
			if len(out) != 0 {
				t.Errorf("Creating intset range(%d) produced non-empty result: %v", i, out)
			}
		} else if !reflect.DeepEqual(out, norm[:i]) {
			t.Errorf("Creating intset range(%d) produced %v, expected %v", i, out, norm[:i])
		}
	}
}

func TestNewIntsetCopy(t *testing.T) {
	testcases := []intset{
		nil,
		intset{},
		newIntsetRange(GridSize),
		intset{2, 5, 9},
		intset{-6, 0, 4, 88},
	}
	for _, tc := range testcases {
		out := newIntsetCopy(tc)
		if !reflect.DeepEqual(out, tc) {
			t.Errorf("newIntsetCopy(%v) produced different output: %v", tc, out)
		}
	}
}

func TestIntsetFind(t *testing.T) {
	// keeping it simple is best, this is not a complex function
	inputVals := []int{4, 5, 6, 8, 9, 1}
	inputIntset := intset{2, 4, 6, 8}
	outputIndices := []int{1, 2, 2, 3, 4, 0}
	outputFlags := []bool{true, false, true, true, false, false}
	for i, inVal := range inputVals {
		where, found := inputIntset.find(inVal)
		if where != outputIndices[i] || found != outputFlags[i] {
			t.Errorf("%v.find(%d) gave %d, %v, expected %d, %v",
				inputIntset, inVal, where, found, outputIndices[i], outputFlags[i])
		}
	}
}

func TestIntsetInsert(t *testing.T) {
	// just like TestIntsetFind, but does the insertion.
	inputVals := []int{4, 5, 6, 8, 9, 1}
	inputIntset := intset{2, 4, 6, 8}
	outputIntsets := []intset{
		intset{2, 4, 6, 8},
		intset{2, 4, 5, 6, 8},
		intset{2, 4, 6, 8},
		intset{2, 4, 6, 8},
		intset{2, 4, 6, 8, 9},
		intset{1, 2, 4, 6, 8},
	}
	outputFlags := []bool{true, false, true, true, false, false}
	for i, inVal := range inputVals {
		input := newIntsetCopy(inputIntset)
		found := input.insert(inVal)
		if !reflect.DeepEqual(input, outputIntsets[i]) || found != outputFlags[i] {
			t.Errorf("%v.insert(%d) gave %v, %v expected %v, %v",
				inputIntset, inVal, input, found, outputIntsets[i], outputFlags[i])
		}
	}
}

func TestIntsetRemove(t *testing.T) {
	// like intset.insert, so use essentially the same tests.
	inputVals := []int{4, 5, 6, 8, 9, 1}
	inputIntset := intset{2, 4, 6, 8}
	outputIntsets := []intset{
		intset{2, 6, 8},
		intset{2, 4, 6, 8},
		intset{2, 4, 8},
		intset{2, 4, 6},
		intset{2, 4, 6, 8},
		intset{2, 4, 6, 8},
	}
	for i, inVal := range inputVals {
		input := newIntsetCopy(inputIntset)
		input.remove(inVal)
		if !reflect.DeepEqual(input, outputIntsets[i]) {
			t.Errorf("%v.remove(%d) is %v, expected %v",
				inputIntset, inVal, input, outputIntsets[i])
		}
	}
}

type intsetSubtractTestcase struct {
	starter    intset
	marker     int
	tosubtract intset
	remaining  intset
	removed    bool
	gotmarker  bool
}

func TestIntsetSubtract(t *testing.T) {
	testcases := []intsetSubtractTestcase{
		intsetSubtractTestcase{ // input equal to target
			newIntsetRange(GridSize), 0,
			newIntsetRange(GridSize),
			intset{},
			true, false,
		},
		intsetSubtractTestcase{ // input overlaps target, marker removed
			newIntsetRange(GridSize), 4,
			intset{0, 3, 4, 6, 9, 12},
			intset{1, 2, 5, 7, 8},
			true, true,
		},
		intsetSubtractTestcase{ // input overlaps target, marker kept
			newIntsetRange(GridSize), 5,
			intset{3, 4, 9},
			intset{1, 2, 5, 6, 7, 8},
			true, false,
		},
		intsetSubtractTestcase{ // input disjoint from target
			intset{2, 5, 8}, 5,
			intset{1, 3, 6, 9},
			intset{2, 5, 8},
			false, false,
		},
		intsetSubtractTestcase{ // empty input
			intset{2, 5, 8}, 0,
			intset{},
			intset{2, 5, 8},
			false, false,
		},
		intsetSubtractTestcase{ // empty target
			intset{}, 0,
			intset{2, 5, 8},
			intset{},
			false, false,
		},
	}
	for i, tc := range testcases {
		target := newIntsetCopy(tc.starter)
		removed, gotmarker := target.subtract(tc.tosubtract, tc.marker)
		if !reflect.DeepEqual(target, tc.remaining) ||
			removed != tc.removed || gotmarker != tc.gotmarker {
			t.Errorf("TestIntsetSubtract case %d: %v.subtract(%v, %d) gave %v, %v, %v; expected %v, %v, %v",
				i+1, tc.starter, tc.tosubtract, tc.marker,
				target, removed, gotmarker,
				tc.remaining, tc.removed, tc.gotmarker)
		}
	}
}

type intsetIntersectTestcase struct {
	starter     intset
	marker      int
	tointersect intset
	remaining   intset
	removed     bool
	gotmarker   bool
}

func TestIntsetIntersect(t *testing.T) {
	testcases := []intsetIntersectTestcase{
		intsetIntersectTestcase{ // input equal to target
			newIntsetRange(GridSize), 0,
			newIntsetRange(GridSize),
			newIntsetRange(GridSize),
			false, false,
		},
		intsetIntersectTestcase{ // input overlaps target, marker removed
			newIntsetRange(GridSize), 4,
			intset{1, 2, 5, 7},
			intset{1, 2, 5, 7},
			true, true,
		},
		intsetIntersectTestcase{ // input overlaps target, marker kept
			newIntsetRange(GridSize), 5,
			intset{3, 5, 9, 14},
			intset{3, 5, 9},
			true, false,
		},
		intsetIntersectTestcase{ // input disjoint from target
			intset{2, 5, 8}, 5,
			intset{1, 3, 6, 9},
			intset{},
			true, true,
		},
		intsetIntersectTestcase{ // empty input
			intset{2, 5, 8}, 0,
			intset{},
			intset{},
			true, false,
		},
		intsetIntersectTestcase{ // empty target
			intset{}, 0,
			intset{2, 5, 8},
			intset{},
			false, false,
		},
	}
	for i, tc := range testcases {
		target := newIntsetCopy(tc.starter)
		removed, gotmarker := target.intersect(tc.tointersect, tc.marker)
		if !reflect.DeepEqual(target, tc.remaining) ||
			removed != tc.removed || gotmarker != tc.gotmarker {
			t.Errorf("TestIntsetIntersect case %d: %v.intersect(%v, %d) gave %v, %v, %v; expected %v, %v, %v",
				i+1, tc.starter, tc.tointersect, tc.marker,
				target, removed, gotmarker,
				tc.remaining, tc.removed, tc.gotmarker)
		}
	}
}

/*

Squares

*/

func TestNewEmptySquares(t *testing.T) {
	logger := &indexLogger{}
	for _, i := range []int{1, 115, SquareCount} {
		s := newEmptySquare(i, logger)
		if s.index != i || s.aval != 0 || s.bval != 0 || len(s.bsrc) != 0 {
			t.Errorf("Empty square %d has unexpected content: %+v", i, *s)
		}
		if !reflect.DeepEqual(s.pvals, newIntsetRange(GridSize)) {
			t.Errorf("Empty square %d has wrong possibles: %v", i, s.pvals)
		}
	}
}

func TestNewFilledSquares(t *testing.T) {
	logger := &indexLogger{}
	for _, v := range []int{1, 5, 9} {
		s := newFilledSquare(17, v, logger)
		if s.index != 17 || s.aval != v || s.bval != 0 || len(s.pvals) != 0 {
			t.Errorf("Filled square with %d has unexpected content: %+v", v, *s)
		}
	}
}

func TestSquareAssign(t *testing.T) {
	logger := &indexLogger{}
	logger.start(0)

	// assigning a possible value leaves no errors
	s := newEmptySquare(3, logger)
	if errs := s.assign(5); len(errs) != 0 {
		t.Errorf("Assigning 5 to empty square gave errors: %v", errs)
	}
	if s.aval != 5 || len(s.pvals) != 0 {
		t.Errorf("Assigned square has unexpected content: %+v", *s)
	}
	if !hasValue(logger.entries, 3) {
		t.Errorf("Assignment was not logged: %v", logger.entries)
	}

	// assigning an impossible value gives a NotInSet error
	s = newEmptySquare(4, logger)
	s.pvals = intset{2, 7}
	errs := s.assign(5)
	if len(errs) != 1 ||
		errs[0].Scope != SquareScope || errs[0].Condition != NotInSetCondition {
		t.Errorf("Assigning impossible value gave wrong errors: %v", errs)
	}

	// assigning against a bound value blames the binding groups
	s = newEmptySquare(5, logger)
	s.bval, s.bsrc = 2, []GroupID{{"TL", GtypeRow, 1}}
	errs = s.assign(7)
	if len(errs) != 1 ||
		errs[0].Scope != GroupScope || errs[0].Condition != NoGroupValueCondition {
		t.Errorf("Assigning against binding gave wrong errors: %v", errs)
	}
}

func TestSquareBind(t *testing.T) {
	logger := &indexLogger{}
	logger.start(0)

	// binding a possible value leaves no errors
	s := newEmptySquare(3, logger)
	src := GroupID{"C", GtypeTile, 1}
	if errs := s.bind(5, src); len(errs) != 0 {
		t.Errorf("Binding 5 on empty square gave errors: %v", errs)
	}
	if s.bval != 5 || !reflect.DeepEqual(s.bsrc, []GroupID{src}) {
		t.Errorf("Bound square has unexpected content: %+v", *s)
	}

	// rebinding the same value is fine, and adds the source
	src2 := GroupID{"TL", GtypeRow, 7}
	if errs := s.bind(5, src2); len(errs) != 0 {
		t.Errorf("Rebinding 5 gave errors: %v", errs)
	}
	if !reflect.DeepEqual(s.bsrc, []GroupID{src, src2}) {
		t.Errorf("Rebound square has wrong sources: %v", s.bsrc)
	}

	// binding a different value blames the original groups
	errs := s.bind(7, GroupID{"C", GtypeRow, 1})
	if len(errs) != 2 ||
		errs[0].Condition != NoGroupValueCondition ||
		errs[1].Condition != NoGroupValueCondition {
		t.Errorf("Conflicting bind gave wrong errors: %v", errs)
	}
}

func TestSquareRemove(t *testing.T) {
	logger := &indexLogger{}
	logger.start(0)

	// removing one of many possibles leaves no errors
	s := newEmptySquare(3, logger)
	if errs := s.remove(5); len(errs) != 0 {
		t.Errorf("Removing 5 gave errors: %v", errs)
	}
	if hasValue(s.pvals, 5) || len(s.pvals) != GridSize-1 {
		t.Errorf("Square after remove has wrong possibles: %v", s.pvals)
	}

	// removing the last possible leaves the square unsolvable
	s.pvals = intset{4}
	errs := s.remove(4)
	if len(errs) != 1 || errs[0].Condition != NoPossibleValuesCondition {
		t.Errorf("Removing last possible gave wrong errors: %v", errs)
	}

	// removing the bound value blames the binding group
	s = newEmptySquare(4, logger)
	s.bval, s.bsrc = 2, []GroupID{{"BR", GtypeCol, 9}}
	errs = s.remove(2)
	if len(errs) != 1 || errs[0].Condition != NoGroupValueCondition {
		t.Errorf("Removing bound value gave wrong errors: %v", errs)
	}
}

func TestSquareSubtractIntersect(t *testing.T) {
	logger := &indexLogger{}
	logger.start(0)

	s := newEmptySquare(3, logger)
	if errs := s.subtract(intset{1, 9}); len(errs) != 0 {
		t.Errorf("Subtracting {1, 9} gave errors: %v", errs)
	}
	if !reflect.DeepEqual(s.pvals, intset{2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("Square after subtract has wrong possibles: %v", s.pvals)
	}
	if errs := s.intersect(intset{2, 5, 8}); len(errs) != 0 {
		t.Errorf("Intersecting {2, 5, 8} gave errors: %v", errs)
	}
	if !reflect.DeepEqual(s.pvals, intset{2, 5, 8}) {
		t.Errorf("Square after intersect has wrong possibles: %v", s.pvals)
	}

	// intersecting away everything leaves the square unsolvable
	errs := s.intersect(intset{4})
	if len(errs) != 1 || errs[0].Condition != NoPossibleValuesCondition {
		t.Errorf("Empty intersection gave wrong errors: %v", errs)
	}
}

/*

Groups

*/

// testGroupDescriptor builds a standalone nine-square group over
// square indices 1 through 9 for group-level tests.
func testGroupDescriptor() *groupDescriptor {
	return &groupDescriptor{
		index:   1,
		id:      GroupID{"TL", GtypeRow, 1},
		indices: newIntsetRange(GridSize),
	}
}

// testGroupSquares builds the squares for testGroupDescriptor,
// assigning the given values (0 means empty).
func testGroupSquares(values []int) []*square {
	logger := &indexLogger{}
	ss := make([]*square, len(values)+1) // 1-based indexing
	for i, v := range values {
		if v == 0 {
			ss[i+1] = newEmptySquare(i+1, logger)
		} else {
			ss[i+1] = newFilledSquare(i+1, v, logger)
		}
	}
	return ss
}

func TestNewGroup(t *testing.T) {
	// an empty group needs everything and holds everything free
	ss := testGroupSquares(make([]int, GridSize))
	g, errs := newGroup(testGroupDescriptor(), ss)
	if len(errs) != 0 {
		t.Fatalf("TestNewGroup: empty group gave errors: %v", errs)
	}
	if !reflect.DeepEqual(g.need, newIntsetRange(GridSize)) ||
		!reflect.DeepEqual(g.free, newIntsetRange(GridSize)) {
		t.Errorf("TestNewGroup: empty group state is wrong: %+v", *g)
	}

	// a partially assigned group subtracts the assigned values
	ss = testGroupSquares([]int{1, 0, 3, 0, 5, 0, 7, 0, 9})
	g, errs = newGroup(testGroupDescriptor(), ss)
	if len(errs) != 0 {
		t.Fatalf("TestNewGroup: partial group gave errors: %v", errs)
	}
	if !reflect.DeepEqual(g.need, intset{2, 4, 6, 8}) ||
		!reflect.DeepEqual(g.free, intset{2, 4, 6, 8}) {
		t.Errorf("TestNewGroup: partial group state is wrong: %+v", *g)
	}
	for _, i := range []int{2, 4, 6, 8} {
		if !reflect.DeepEqual(ss[i].pvals, intset{2, 4, 6, 8}) {
			t.Errorf("TestNewGroup: free square %d has wrong possibles: %v", i, ss[i].pvals)
		}
	}

	// duplicate assigned values are caught
	ss = testGroupSquares([]int{1, 0, 3, 0, 5, 0, 7, 0, 5})
	_, errs = newGroup(testGroupDescriptor(), ss)
	if len(errs) == 0 || errs[0].Condition != DuplicateGroupValuesCondition {
		t.Errorf("TestNewGroup: duplicate group gave wrong errors: %v", errs)
	}
}

func TestGroupAnalyze(t *testing.T) {
	// a hidden single: three free squares, only one of which can
	// hold the 9, so analysis binds it there
	ss := testGroupSquares([]int{1, 4, 5, 6, 7, 8, 0, 0, 0})
	ss[7].pvals = intset{2, 3}
	ss[8].pvals = intset{2, 3}
	ss[9].pvals = intset{2, 3, 9}
	g, errs := newGroup(testGroupDescriptor(), ss)
	if len(errs) != 0 {
		t.Fatalf("TestGroupAnalyze: group construction gave errors: %v", errs)
	}
	if errs = g.analyze(ss); len(errs) != 0 {
		t.Fatalf("TestGroupAnalyze: analysis gave errors: %v", errs)
	}
	if ss[9].bval != 9 {
		t.Errorf("TestGroupAnalyze: hidden single was not bound: %+v", *ss[9])
	}
	if hasValue(g.need, 9) || hasValue(g.free, 9) {
		t.Errorf("TestGroupAnalyze: bound value still needed: %+v", *g)
	}

	// a needed value with no candidate square is an error
	ss = testGroupSquares([]int{1, 4, 5, 6, 7, 8, 0, 0, 0})
	ss[7].pvals = intset{2, 3}
	ss[8].pvals = intset{2, 3}
	ss[9].pvals = intset{2, 3}
	g, errs = newGroup(testGroupDescriptor(), ss)
	if len(errs) != 0 {
		t.Fatalf("TestGroupAnalyze: group construction gave errors: %v", errs)
	}
	errs = g.analyze(ss)
	if len(errs) == 0 || errs[0].Condition != NoGroupValueCondition {
		t.Errorf("TestGroupAnalyze: missing candidate gave wrong errors: %v", errs)
	}
}

func TestGroupAssign(t *testing.T) {
	ss := testGroupSquares(make([]int, GridSize))
	g, errs := newGroup(testGroupDescriptor(), ss)
	if len(errs) != 0 {
		t.Fatalf("TestGroupAssign: group construction gave errors: %v", errs)
	}

	// assigning a square removes its value from the others
	ss[4].assign(6)
	if errs = g.assign(ss, 4); len(errs) != 0 {
		t.Fatalf("TestGroupAssign: assignment gave errors: %v", errs)
	}
	if hasValue(g.need, 6) || hasValue(g.free, 4) || g.where[6] != 4 {
		t.Errorf("TestGroupAssign: group state is wrong: %+v", *g)
	}
	for i := 1; i <= GridSize; i++ {
		if i != 4 && hasValue(ss[i].pvals, 6) {
			t.Errorf("TestGroupAssign: square %d still has 6 possible", i)
		}
	}

	// assigning the same value elsewhere is a duplicate
	ss[7].assign(6)
	errs = g.assign(ss, 7)
	if len(errs) == 0 || errs[0].Condition != DuplicateGroupValuesCondition {
		t.Errorf("TestGroupAssign: duplicate assignment gave wrong errors: %v", errs)
	}
}

/*

Board construction

*/

func TestNewEmptyBoard(t *testing.T) {
	b := NewEmpty()
	if b == nil {
		t.Fatalf("TestNewEmptyBoard: NewEmpty returned nil")
	}
	if len(b.errors) != 0 {
		t.Fatalf("TestNewEmptyBoard: empty board has errors: %v", b.errors)
	}
	if len(b.squares) != SquareCount+1 || len(b.groups) != GroupCount+1 {
		t.Fatalf("TestNewEmptyBoard: board has %d squares, %d groups",
			len(b.squares)-1, len(b.groups)-1)
	}
	full := newIntsetRange(GridSize)
	for i := 1; i <= SquareCount; i++ {
		if b.squares[i].aval != 0 || !reflect.DeepEqual(b.squares[i].pvals, full) {
			t.Errorf("TestNewEmptyBoard: square %d is constrained: %+v", i, *b.squares[i])
		}
	}
	if b.Solved() {
		t.Errorf("TestNewEmptyBoard: empty board claims to be solved")
	}
}

func TestCreateConflicts(t *testing.T) {
	// two equal values in one row of the top-left grid
	values := valuesAt(t, map[[2]int]int{
		{6, 0}: 5,
		{6, 7}: 5,
	})
	b, e := New(&Summary{Geometry: SamuraiGeometryName, Values: values})
	if e != nil {
		t.Fatalf("TestCreateConflicts: board creation failed: %v", e)
	}
	if len(b.errors) == 0 {
		t.Fatalf("TestCreateConflicts: conflicting board has no errors")
	}
	found := false
	for _, err := range b.errors {
		if err.Condition == DuplicateGroupValuesCondition {
			found = true
		}
	}
	if !found {
		t.Errorf("TestCreateConflicts: no duplicate-value error in %v", b.errors)
	}

	// an out-of-range value prevents creation entirely
	values = make([]int, SquareCount)
	values[0] = GridSize + 1
	_, e = New(&Summary{Geometry: SamuraiGeometryName, Values: values})
	if e == nil {
		t.Fatalf("TestCreateConflicts: out-of-range value was accepted")
	}
	if err, ok := e.(Error); !ok || err.Condition != TooLargeCondition {
		t.Errorf("TestCreateConflicts: out-of-range value gave wrong error: %v", e)
	}
}

/*

Assignment and propagation

*/

func TestInternalAssign(t *testing.T) {
	b := NewEmpty()

	// assign in a square of the top-left grid only
	si := mustSquareAt(t, 6, 0)
	changed := b.assign(si, 5)
	if len(b.errors) != 0 {
		t.Fatalf("TestInternalAssign: assignment gave board errors: %v", b.errors)
	}
	if b.squares[si].aval != 5 {
		t.Fatalf("TestInternalAssign: square %d was not assigned", si)
	}
	if !hasValue(changed, si) {
		t.Errorf("TestInternalAssign: changed set %v misses the assigned square", changed)
	}
	// the whole canvas row 6 is one top-left row plus the rest,
	// and the row's shared squares sit in the center grid too
	for _, col := range []int{1, 4, 6, 7, 8} {
		ci := mustSquareAt(t, 6, col)
		if hasValue(b.squares[ci].pvals, 5) {
			t.Errorf("TestInternalAssign: square at (6, %d) still has 5 possible", col)
		}
		if !hasValue(changed, ci) {
			t.Errorf("TestInternalAssign: changed set %v misses square at (6, %d)", changed, col)
		}
	}
	// squares beyond the top-left grid in the same canvas row
	// are not in any of the assigned square's groups
	for _, col := range []int{9, 14, 20} {
		ci := mustSquareAt(t, 6, col)
		if !hasValue(b.squares[ci].pvals, 5) {
			t.Errorf("TestInternalAssign: square at (6, %d) lost 5 without reason", col)
		}
	}
}

func TestSharedTileAssign(t *testing.T) {
	b := NewEmpty()

	// assign in a square shared by the top-left and center grids
	si := mustSquareAt(t, 6, 6)
	b.assign(si, 5)
	if len(b.errors) != 0 {
		t.Fatalf("TestSharedTileAssign: assignment gave board errors: %v", b.errors)
	}

	// the assignment must reach squares of both grids
	checks := []struct {
		row, col int
		why      string
	}{
		{6, 0, "top-left row"},
		{0, 6, "top-left column"},
		{7, 7, "shared tile"},
		{6, 14, "center row"},
		{14, 6, "center column"},
	}
	for _, c := range checks {
		ci := mustSquareAt(t, c.row, c.col)
		if hasValue(b.squares[ci].pvals, 5) {
			t.Errorf("TestSharedTileAssign: %s square at (%d, %d) still has 5 possible",
				c.why, c.row, c.col)
		}
	}

	// but not squares in neither grid
	for _, pos := range [][2]int{{0, 0}, {6, 15}, {15, 6}, {20, 20}} {
		ci := mustSquareAt(t, pos[0], pos[1])
		if !hasValue(b.squares[ci].pvals, 5) {
			t.Errorf("TestSharedTileAssign: square at (%d, %d) lost 5 without reason",
				pos[0], pos[1])
		}
	}
}

/*

Board views and copies

*/

func TestSummaryAndSquares(t *testing.T) {
	values := valuesAt(t, map[[2]int]int{
		{0, 0}:   1,
		{6, 6}:   2,
		{20, 20}: 9,
	})
	b, e := New(&Summary{Geometry: SamuraiGeometryName, Values: values})
	if e != nil {
		t.Fatalf("TestSummaryAndSquares: board creation failed: %v", e)
	}
	summary := b.Summary()
	if summary.Geometry != SamuraiGeometryName {
		t.Errorf("TestSummaryAndSquares: summary geometry is %q", summary.Geometry)
	}
	if !reflect.DeepEqual(summary.Values, values) {
		t.Errorf("TestSummaryAndSquares: summary values differ from input")
	}
	// the summary must not share storage with the board
	summary.Values[0] = 9
	if b.squares[1].aval != 1 {
		t.Errorf("TestSummaryAndSquares: summary shares storage with board")
	}

	squares := b.Squares()
	if len(squares) != SquareCount {
		t.Fatalf("TestSummaryAndSquares: got %d squares", len(squares))
	}
	s1 := squares[0]
	if s1.Index != 1 || s1.Aval != 1 || len(s1.Pvals) != 0 {
		t.Errorf("TestSummaryAndSquares: square 1 view is wrong: %+v", s1)
	}
	s2 := squares[1]
	if s2.Index != 2 || s2.Aval != 0 || hasValue(s2.Pvals, 1) {
		t.Errorf("TestSummaryAndSquares: square 2 view is wrong: %+v", s2)
	}
}

func TestBoardCopy(t *testing.T) {
	b := NewEmpty()
	si := mustSquareAt(t, 6, 6)
	b.assign(si, 5)

	c := b.Copy()
	if c.mapping != b.mapping {
		t.Errorf("TestBoardCopy: copy does not share the mapping")
	}
	if !reflect.DeepEqual(c.allValues(), b.allValues()) {
		t.Errorf("TestBoardCopy: copy has different values")
	}
	if !reflect.DeepEqual(c.allPossibles(), b.allPossibles()) {
		t.Errorf("TestBoardCopy: copy has different possibles")
	}

	// changes to the original must not show in the copy
	oi := mustSquareAt(t, 0, 0)
	b.assign(oi, 7)
	if c.squares[oi].aval != 0 {
		t.Errorf("TestBoardCopy: assignment to original changed the copy")
	}
	if !hasValue(c.squares[mustSquareAt(t, 0, 1)].pvals, 7) {
		t.Errorf("TestBoardCopy: propagation in original changed the copy")
	}

	// and changes to the copy must not show in the original
	ci := mustSquareAt(t, 20, 0)
	c.assign(ci, 3)
	if b.squares[ci].aval != 0 {
		t.Errorf("TestBoardCopy: assignment to copy changed the original")
	}
}
