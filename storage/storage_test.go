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

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SKR35/Samurai-Sudoku-Generator/batch"
	"github.com/SKR35/Samurai-Sudoku-Generator/dbprep"
	"github.com/SKR35/Samurai-Sudoku-Generator/puzzle"
)

/*

test puzzles

*/

// the test puzzles are generated once per run from a pinned
// master seed, so their record ids are the same in every run
const testMasterSeed = 76117

var (
	testPuzzlesOnce sync.Once
	testPuzzlesMemo []*puzzle.Puzzle
)

func testPuzzles(t *testing.T) []*puzzle.Puzzle {
	t.Helper()
	testPuzzlesOnce.Do(func() {
		requests := []batch.Request{
			{Difficulty: "easy", Count: 1},
			{Difficulty: "medium", Count: 1},
		}
		outcomes, err := batch.Run(context.Background(), requests, testMasterSeed,
			len(requests), time.Hour)
		if err != nil {
			return
		}
		for _, out := range outcomes {
			testPuzzlesMemo = append(testPuzzlesMemo, out.Puzzle)
		}
	})
	if len(testPuzzlesMemo) == 0 {
		t.Fatalf("Couldn't generate test puzzles")
	}
	return testPuzzlesMemo
}

/*

setup

*/

// non-nil when the backing services aren't reachable, in which
// case the tests that need them skip
var storageDown error

// we are writing records up the wazoo; make sure they don't
// persist past the end of the test run.
func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	os.Setenv("DBPREP_PATH", filepath.Join("..", "dbprep"))
	if err := dbprep.ReinitializeAll(); err != nil {
		storageDown = err
	}
	defer func(code int) {
		if code == 0 && storageDown == nil {
			if err := dbprep.ReinitializeAll(); err != nil {
				panic(fmt.Errorf("Failed to reinitialize data at teardown: %v", err))
			}
		}
		os.Exit(code)
	}(m.Run())
}

// storageSetup connects to storage, or skips the test when the
// backing services aren't reachable.
func storageSetup(t *testing.T) {
	t.Helper()
	if storageDown != nil {
		t.Skipf("No storage available: %v", storageDown)
	}
	if _, _, err := Connect(); err != nil {
		t.Fatalf("Couldn't connect to storage: %v", err)
	}
}

/*

connection

*/

func TestConnect(t *testing.T) {
	if storageDown != nil {
		t.Skipf("No storage available: %v", storageDown)
	}
	if cid, dbid, err := Connect(); err != nil {
		t.Errorf("Couldn't connect to storage: %v", err)
	} else if cid != rdUrl || dbid != pgUrl {
		t.Errorf("Connected to wrong cache (%s) or wrong database (%s)", cid, dbid)
	}
	Close()
}

/*

puzzle records

*/

func TestSaveLoadPuzzle(t *testing.T) {
	storageSetup(t)
	defer Close()

	for i, p := range testPuzzles(t) {
		id, err := SavePuzzle(p)
		if err != nil {
			t.Fatalf("Couldn't save puzzle %d: %v", i, err)
		}
		if len(id) != 64 || id != strings.ToUpper(id) {
			t.Errorf("Puzzle %d id (%s) is not an uppercase sha256 digest.", i, id)
		}
		// a resave must reuse the record, because the id is a
		// content hash
		again, err := SavePuzzle(p)
		if err != nil {
			t.Fatalf("Couldn't resave puzzle %d: %v", i, err)
		}
		if again != id {
			t.Errorf("Resaving puzzle %d changed its id: %s vs %s", i, again, id)
		}
		pr, ok := LoadPuzzle(id)
		if !ok {
			t.Fatalf("Couldn't load puzzle %d (%s)", i, id)
		}
		if !reflect.DeepEqual(pr.Puzzle(), p) {
			t.Errorf("Loaded puzzle %d differs from the saved one", i)
		}
	}
}

func TestLoadPuzzleColdCache(t *testing.T) {
	storageSetup(t)
	defer Close()

	p := testPuzzles(t)[0]
	id, err := SavePuzzle(p)
	if err != nil {
		t.Fatalf("Couldn't save puzzle: %v", err)
	}
	// clearing the cache forces the load to fall back on the
	// database and rewarm the cache
	if err := dbprep.ClearCache(); err != nil {
		t.Fatalf("Couldn't clear cache: %v", err)
	}
	pr, ok := LoadPuzzle(id)
	if !ok {
		t.Fatalf("Couldn't load puzzle %s from a cold cache", id)
	}
	if !reflect.DeepEqual(pr.Puzzle(), p) {
		t.Errorf("Puzzle loaded from a cold cache differs from the saved one")
	}
	warm, ok := LoadPuzzle(id)
	if !ok {
		t.Fatalf("Couldn't reload puzzle %s", id)
	}
	if !reflect.DeepEqual(warm, pr) {
		t.Errorf("Cached record differs:\nGot: %+v\nExpected: %+v", *warm, *pr)
	}
}

func TestLoadPuzzleMissing(t *testing.T) {
	storageSetup(t)
	defer Close()

	if _, ok := LoadPuzzle("this is not an actual puzzle id!!"); ok {
		t.Errorf("Loaded a puzzle that was never saved!")
	}
}

func TestListPuzzles(t *testing.T) {
	storageSetup(t)
	defer Close()

	saved := make(map[string]bool)
	for i, p := range testPuzzles(t) {
		id, err := SavePuzzle(p)
		if err != nil {
			t.Fatalf("Couldn't save puzzle %d: %v", i, err)
		}
		saved[id] = true
	}
	records := ListPuzzles()
	// the sample data is preloaded, so the list holds more than
	// just our saves
	if len(records) < len(saved) {
		t.Fatalf("Only %d records listed, expected at least %d", len(records), len(saved))
	}
	seen := make(map[string]bool)
	for _, pr := range records {
		if seen[pr.PuzzleId] {
			t.Errorf("Puzzle %s is listed twice", pr.PuzzleId)
		}
		seen[pr.PuzzleId] = true
	}
	for id := range saved {
		if !seen[id] {
			t.Errorf("Puzzle %s is missing from the list", id)
		}
	}
}

/*

list orders

*/

func TestListOrders(t *testing.T) {
	records := []*PuzzleRecord{
		{PuzzleId: "B", Difficulty: "evil", ClueCount: 80},
		{PuzzleId: "A", Difficulty: "easy", ClueCount: 170},
		{PuzzleId: "D", Difficulty: "medium", ClueCount: 140},
		{PuzzleId: "C", Difficulty: "medium", ClueCount: 140},
	}
	sort.Sort(ByDifficulty(records))
	want := []string{"A", "C", "D", "B"}
	for i, pr := range records {
		if pr.PuzzleId != want[i] {
			t.Errorf("Difficulty order %d is %s, expected %s", i, pr.PuzzleId, want[i])
		}
	}
	sort.Sort(ByClueCount(records))
	want = []string{"B", "C", "D", "A"}
	for i, pr := range records {
		if pr.PuzzleId != want[i] {
			t.Errorf("Clue count order %d is %s, expected %s", i, pr.PuzzleId, want[i])
		}
	}
}

/*

batch records

*/

func TestBatchRecord(t *testing.T) {
	storageSetup(t)
	defer Close()

	p := testPuzzles(t)[0]
	pid, err := SavePuzzle(p)
	if err != nil {
		t.Fatalf("Couldn't save puzzle: %v", err)
	}

	br := StartBatch(19067, 2, 1500, 2)
	if br.BatchId == "" {
		t.Fatalf("Started batch has no id")
	}
	br.AddSlot(batch.Outcome{
		Index:      0,
		Difficulty: p.Difficulty,
		Seed:       p.Seed,
		Attempts:   1,
		State:      batch.Accepted,
		Puzzle:     p,
	}, pid)
	br.AddSlot(batch.Outcome{
		Index:      1,
		Difficulty: "evil",
		Seed:       40668,
		Attempts:   3,
		State:      batch.Failed,
		Err:        fmt.Errorf("no acceptable carve"),
	}, "")

	check := func(loaded *BatchRecord) {
		t.Helper()
		if loaded.MasterSeed != br.MasterSeed || loaded.WorkerCount != br.WorkerCount ||
			loaded.DeadlineMillis != br.DeadlineMillis || loaded.SlotCount != br.SlotCount {
			t.Errorf("Loaded batch header is wrong: %+v", *loaded)
		}
		if !reflect.DeepEqual(loaded.Slots, br.Slots) {
			t.Errorf("Loaded slots differ from recorded slots:")
			for i := range br.Slots {
				if i < len(loaded.Slots) && !reflect.DeepEqual(loaded.Slots[i], br.Slots[i]) {
					t.Errorf("Slot %d: Got: %+v, Expected: %+v",
						i, *loaded.Slots[i], *br.Slots[i])
				}
			}
		}
	}

	loaded, ok := LookupBatch(br.BatchId)
	if !ok {
		t.Fatalf("Couldn't look up batch %q", br.BatchId)
	}
	check(loaded)

	// a cold cache forces the database path and a journal rebuild
	if err := dbprep.ClearCache(); err != nil {
		t.Fatalf("Couldn't clear cache: %v", err)
	}
	loaded, ok = LookupBatch(br.BatchId)
	if !ok {
		t.Fatalf("Couldn't look up batch %q from a cold cache", br.BatchId)
	}
	check(loaded)

	if _, ok := LookupBatch("this is not an actual batch id!!"); ok {
		t.Errorf("Found a batch that was never started!")
	}
}
