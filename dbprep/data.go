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

package dbprep

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SKR35/Samurai-Sudoku-Generator/batch"
	"github.com/SKR35/Samurai-Sudoku-Generator/puzzle"
)

/*

entries

*/

type dataFunction func(pgx.Tx) error

var (
	upFunctions = []dataFunction{
		insertSamples,
	}
	downFunctions = []dataFunction{
		deleteSamples,
	}
)

// DataUp: load the sample data into the database.  You should do
// this after you get the schema up!
func DataUp() error {
	return applyFunctions(upFunctions)
}

// DataDown: remove the sample data from the database.  You
// should do this before you tear the schema down!
func DataDown() error {
	return applyFunctions(downFunctions)
}

// apply dataFunctions to the database.  Each is applied in a
// separate transaction, so later ones can rely on the effect of
// earlier ones having been committed.
func applyFunctions(fns []dataFunction) error {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		url = "postgres://localhost/samurai?sslmode=disable"
	}

	// open the database, defer the close
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	// helper that runs each function inside a transaction, and
	// ensures that any problems are rolled back.
	runFunc := func(fn dataFunction) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if e := recover(); e != nil {
				tx.Rollback(ctx)
				panic(e)
			}
		}()
		if err := fn(tx); err != nil {
			tx.Rollback(ctx)
			return err
		}
		return tx.Commit(ctx)
	}

	// run the functions
	for _, fn := range fns {
		if err := runFunc(fn); err != nil {
			return fmt.Errorf("%v failed: %v", fn, err)
		}
	}
	return nil
}

/*

sample puzzles

*/

// The samples are a tiny batch run with a pinned master seed:
// one easy and one medium puzzle, identical on every machine, so
// their content hashes are stable storage ids.  The deeper
// difficulties stay out of the samples: their carves can wash
// out, and a pinned load must never fail.
const sampleMasterSeed = 7268724

type sample struct {
	id     string
	puzzle *puzzle.Puzzle
}

var (
	sampleRequests = []batch.Request{
		{Difficulty: string(puzzle.EasyDifficulty), Count: 1},
		{Difficulty: string(puzzle.MediumDifficulty), Count: 1},
	}
	samplesOnce sync.Once
	samples     []sample
	samplesErr  error
)

// generateSamples builds the sample puzzles on first use and
// memoizes them for the life of the process.
func generateSamples() ([]sample, error) {
	samplesOnce.Do(func() {
		outcomes, err := batch.Run(context.Background(), sampleRequests,
			sampleMasterSeed, len(sampleRequests), time.Hour)
		if err != nil {
			samplesErr = fmt.Errorf("Sample generation failed: %v", err)
			return
		}
		for _, out := range outcomes {
			hash, err := out.Puzzle.Hash()
			if err != nil {
				samplesErr = fmt.Errorf("Can't happen! Sample puzzle %d is invalid!", out.Index)
				return
			}
			samples = append(samples, sample{id: hash, puzzle: out.Puzzle})
		}
	})
	return samples, samplesErr
}

// int32s converts values for the database, which stores value
// lists as 4-byte ints.
func int32s(vals []int) []int32 {
	out := make([]int32, len(vals))
	for i, v := range vals {
		out[i] = int32(v)
	}
	return out
}

// Create and insert the sample puzzles
func insertSamples(tx pgx.Tx) error {
	samples, err := generateSamples()
	if err != nil {
		return err
	}
	ctx := context.Background()

	// idempotency: if the first sample is already stored, this
	// load has run before and the others are there too
	var count int64
	row := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM puzzles WHERE puzzleId = $1", samples[0].id)
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("Database error looking for sample %q: %v", samples[0].id, err)
	}
	if count > 0 {
		return nil
	}

	// get the timestamp of this load
	now := time.Now()

	for i, s := range samples {
		p := s.puzzle
		_, err := tx.Exec(ctx,
			"INSERT INTO puzzles "+
				"(puzzleId, difficulty, clueCount, seed, clueList, solutionList, created) "+
				"VALUES ($1, $2, $3, $4, $5, $6, $7)",
			s.id, string(p.Difficulty), int32(p.ClueCount), int64(p.Seed),
			int32s(p.Clues), int32s(p.Solution), now)
		if err != nil {
			return fmt.Errorf("Database error saving sample puzzle %d: %v", i, err)
		}
	}
	return nil
}

// Delete the sample puzzles
func deleteSamples(tx pgx.Tx) error {
	samples, err := generateSamples()
	if err != nil {
		return err
	}
	for i, s := range samples {
		_, err := tx.Exec(context.Background(),
			"DELETE from puzzles where puzzleId = $1", s.id)
		if err != nil {
			return fmt.Errorf("Database error deleting sample puzzle %d: %v", i, err)
		}
	}
	return nil
}
