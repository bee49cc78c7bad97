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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5"

	"github.com/SKR35/Samurai-Sudoku-Generator/puzzle"
)

/*

puzzle records

*/

// A PuzzleRecord is the stored form of a generated puzzle.  It
// is JSON serializable so it can go into the cache as well as
// the database.  The record id is the hash of the puzzle's clue
// side, so identical puzzles always share one record.
type PuzzleRecord struct {
	PuzzleId   string  `json:"puzzleId"`
	Difficulty string  `json:"difficulty"`
	ClueCount  int32   `json:"clueCount"`
	Seed       uint64  `json:"seed"` // stored bit for bit in a signed db column
	Clues      []int32 `json:"clues"`
	Solution   []int32 `json:"solution"`
}

// SavePuzzle stores a generated puzzle in the database and the
// cache, and returns its record id.  Saving the same puzzle
// twice is harmless: the id is a content hash, and the database
// keeps the first record.
func SavePuzzle(p *puzzle.Puzzle) (string, error) {
	id, err := p.Hash()
	if err != nil {
		return "", err
	}
	pr := &PuzzleRecord{
		PuzzleId:   id,
		Difficulty: string(p.Difficulty),
		ClueCount:  int32(p.ClueCount),
		Seed:       p.Seed,
		Clues:      int32s(p.Clues),
		Solution:   int32s(p.Solution),
	}
	pr.databaseInsert()
	pr.cacheInsert()
	return id, nil
}

// LoadPuzzle first checks the cache, then the database, for the
// record with the given id.  If it loads from the database, it
// caches the result.  The second return is false when no such
// record is stored.
func LoadPuzzle(id string) (*PuzzleRecord, bool) {
	pr := &PuzzleRecord{PuzzleId: id}
	if pr.cacheLoad() {
		return pr, true
	}
	// cache miss, load from database and save to cache
	if !pr.databaseLoad() {
		return nil, false
	}
	pr.cacheInsert()
	return pr, true
}

// ListPuzzles returns the records of all stored puzzles, newest
// first.  The list comes straight from the database; the cache
// only tracks individual records.
func ListPuzzles() []*PuzzleRecord {
	var records []*PuzzleRecord
	body := func(tx pgx.Tx) error {
		rows, err := tx.Query(context.Background(),
			"SELECT puzzleId, difficulty, clueCount, seed, clueList, solutionList "+
				"FROM puzzles ORDER BY created DESC, puzzleId")
		if err != nil {
			return fmt.Errorf("Failure listing puzzles: %v", err)
		}
		defer rows.Close()
		for rows.Next() {
			pr := &PuzzleRecord{}
			var seed int64
			if err := rows.Scan(&pr.PuzzleId, &pr.Difficulty, &pr.ClueCount, &seed,
				&pr.Clues, &pr.Solution); err != nil {
				return fmt.Errorf("Failure reading puzzle list: %v", err)
			}
			pr.Seed = uint64(seed)
			records = append(records, pr)
		}
		return rows.Err()
	}
	pgExecute(body)
	return records
}

// Puzzle rebuilds the generation product a record was saved
// from.  Panics if the record's clues don't describe a samurai
// board, which means the stored data has been corrupted.
func (pr *PuzzleRecord) Puzzle() *puzzle.Puzzle {
	clues := ints(pr.Clues)
	summary := &puzzle.Summary{Geometry: puzzle.SamuraiGeometryName, Values: clues}
	if _, err := puzzle.New(summary); err != nil {
		panic(fmt.Errorf("Failed to rebuild puzzle %q: %v", pr.PuzzleId, err))
	}
	return &puzzle.Puzzle{
		Clues:      clues,
		Solution:   ints(pr.Solution),
		Difficulty: puzzle.Difficulty(pr.Difficulty),
		ClueCount:  int(pr.ClueCount),
		Seed:       pr.Seed,
	}
}

// the database stores square values as 4-byte ints
func int32s(vals []int) []int32 {
	out := make([]int32, len(vals))
	for i, v := range vals {
		out[i] = int32(v)
	}
	return out
}

func ints(vals []int32) []int {
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = int(v)
	}
	return out
}

/*

list orders

*/

// difficultyRank orders the difficulties from easy to evil for
// sorting, since their names don't alphabetize that way.
var difficultyRank = make(map[string]int)

func init() {
	for i, d := range puzzle.KnownDifficulties() {
		difficultyRank[string(d)] = i
	}
}

// sorting of records from easiest to most difficult
type ByDifficulty []*PuzzleRecord

func (pr ByDifficulty) Len() int      { return len(pr) }
func (pr ByDifficulty) Swap(i, j int) { pr[i], pr[j] = pr[j], pr[i] }
func (pr ByDifficulty) Less(i, j int) bool {
	ri, rj := difficultyRank[pr[i].Difficulty], difficultyRank[pr[j].Difficulty]
	return ri < rj || (ri == rj && pr[i].PuzzleId < pr[j].PuzzleId)
}

// sorting of records from fewest clues to most
type ByClueCount []*PuzzleRecord

func (pr ByClueCount) Len() int      { return len(pr) }
func (pr ByClueCount) Swap(i, j int) { pr[i], pr[j] = pr[j], pr[i] }
func (pr ByClueCount) Less(i, j int) bool {
	return pr[i].ClueCount < pr[j].ClueCount ||
		(pr[i].ClueCount == pr[j].ClueCount && pr[i].PuzzleId < pr[j].PuzzleId)
}

/*

cache and database plumbing

*/

// key: compute the cache key for a PuzzleRecord.
func (pr *PuzzleRecord) key() string {
	return "PID:" + pr.PuzzleId
}

// cacheLoad: load an already cached record.  Returns whether the
// record was found in the cache.
func (pr *PuzzleRecord) cacheLoad() bool {
	var bytes []byte
	body := func(conn redis.Conn) (err error) {
		bytes, err = redis.Bytes(conn.Do("GET", pr.key()))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading puzzle record %q: %v", pr.PuzzleId, err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var spr *PuzzleRecord
	err := json.Unmarshal(bytes, &spr)
	if err != nil {
		panic(fmt.Errorf("Failed to unmarshal puzzle record %q: %v", pr.PuzzleId, err))
	}
	if spr.PuzzleId != pr.PuzzleId {
		panic(fmt.Errorf("Cached record (id: %q) found for puzzle %q!",
			spr.PuzzleId, pr.PuzzleId))
	}
	*pr = *spr
	return true
}

// databaseLoad: load a record from the database.  Returns false
// if there is no saved record with the given id.
func (pr *PuzzleRecord) databaseLoad() (found bool) {
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(context.Background(),
			"SELECT difficulty, clueCount, seed, clueList, solutionList FROM puzzles "+
				"WHERE puzzleId = $1", pr.PuzzleId)
		var seed int64
		err := row.Scan(&pr.Difficulty, &pr.ClueCount, &seed, &pr.Clues, &pr.Solution)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Failure looking up puzzle %q: %v", pr.PuzzleId, err)
		}
		pr.Seed = uint64(seed)
		found = true
		return nil
	}
	pgExecute(body)
	return
}

// cacheInsert: insert a record into the cache.  Replaces any
// existing entry with the same id.
func (pr *PuzzleRecord) cacheInsert() {
	bytes, e := json.Marshal(pr)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal puzzle record %q: %v", pr.PuzzleId, e))
	}
	body := func(conn redis.Conn) (err error) {
		_, err = conn.Do("SET", pr.key(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving puzzle record %q: %v", pr.PuzzleId, err)
		}
		return
	}
	rdExecute(body)
}

// databaseInsert: insert a record into the database.  The id is
// a content hash, so a second insert of the same puzzle leaves
// the first one in place.
func (pr *PuzzleRecord) databaseInsert() {
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(context.Background(),
			"INSERT INTO puzzles "+
				"(puzzleId, difficulty, clueCount, seed, clueList, solutionList, created) "+
				"VALUES ($1, $2, $3, $4, $5, $6, $7) "+
				"ON CONFLICT (puzzleId) DO NOTHING",
			pr.PuzzleId, pr.Difficulty, pr.ClueCount, int64(pr.Seed),
			pr.Clues, pr.Solution, time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving puzzle record %q: %v", pr.PuzzleId, err)
		}
		return
	}
	pgExecute(body)
}
