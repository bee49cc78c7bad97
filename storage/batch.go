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
	"log"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SKR35/Samurai-Sudoku-Generator/batch"
)

// A BatchRecord tracks one orchestrated generation run.  The
// header fields persist in a cache hash and a database row; the
// slots persist in a cache journal and their own table, one
// entry per settled slot.
type BatchRecord struct {
	BatchId        string `json:"batchId"`
	MasterSeed     uint64 `json:"masterSeed"`
	WorkerCount    int    `json:"workerCount"`
	DeadlineMillis int64  `json:"deadlineMillis"`
	SlotCount      int    `json:"slotCount"`

	// loaded with the record rather than persisted in its hash
	Slots []*SlotRecord `json:"slots" redis:"-"`
}

// A SlotRecord is the stored outcome of one batch slot.  It is
// JSON serializable for the cache journal.
type SlotRecord struct {
	SlotIndex  int    `json:"slotIndex"`
	Difficulty string `json:"difficulty"`
	State      string `json:"state"`
	Seed       uint64 `json:"seed"`
	Attempts   int    `json:"attempts"`
	PuzzleId   string `json:"puzzleId,omitempty"`
	Error      string `json:"error,omitempty"`
}

/*

batch record manipulation

*/

// StartBatch creates and persists the record of a new batch run.
// The batch id is freshly minted; the slots arrive later, one by
// one, as the orchestrator settles them.
func StartBatch(masterSeed uint64, workerCount int, deadlineMillis int64, slotCount int) *BatchRecord {
	br := &BatchRecord{
		BatchId:        uuid.New().String(),
		MasterSeed:     masterSeed,
		WorkerCount:    workerCount,
		DeadlineMillis: deadlineMillis,
		SlotCount:      slotCount,
	}
	body := func(conn redis.Conn) (err error) {
		conn.Send("HMSET", redis.Args{}.Add(br.key()).AddFlat(br)...)
		_, err = conn.Do("DEL", br.slotsKey())
		if err != nil {
			err = fmt.Errorf("Cache failure saving batch %q: %v", br.BatchId, err)
		}
		return
	}
	rdExecute(body)
	br.databaseInsert()
	log.Printf("Started batch %v with %d slots.", br.BatchId, br.SlotCount)
	return br
}

// AddSlot appends one settled slot to the batch record.  The
// puzzle id may be empty when the slot settled without a puzzle.
func (br *BatchRecord) AddSlot(out batch.Outcome, puzzleId string) {
	sr := &SlotRecord{
		SlotIndex:  out.Index,
		Difficulty: string(out.Difficulty),
		State:      out.State.String(),
		Seed:       out.Seed,
		Attempts:   out.Attempts,
		PuzzleId:   puzzleId,
	}
	if out.Err != nil {
		sr.Error = out.Err.Error()
	}
	body := func(conn redis.Conn) (err error) {
		_, err = conn.Do("RPUSH", br.slotsKey(), marshalSlot(br.BatchId, sr))
		if err != nil {
			err = fmt.Errorf("Cache failure saving slot %d of batch %q: %v",
				sr.SlotIndex, br.BatchId, err)
		}
		return
	}
	rdExecute(body)
	sr.databaseInsert(br.BatchId)
	br.Slots = append(br.Slots, sr)
	log.Printf("Recorded slot %d of batch %v as %s.", sr.SlotIndex, br.BatchId, sr.State)
}

// LookupBatch finds the record of a batch run by id, checking
// the cache first and falling back to the database.  A database
// hit reloads the cache.  The second return is false when the
// batch is unknown.
func LookupBatch(id string) (*BatchRecord, bool) {
	br := &BatchRecord{BatchId: id}
	if !br.cacheLoad() {
		if !br.databaseLoad() {
			return nil, false
		}
		br.cacheInsert()
	}
	br.loadSlots()
	return br, true
}

/*

serialization of slots into and out of the journal

*/

// marshalSlot - get the journal form of a slot record
func marshalSlot(batchId string, sr *SlotRecord) []byte {
	bytes, err := json.Marshal(sr)
	if err != nil {
		panic(fmt.Errorf("Failed to marshal slot %d of batch %q: %v",
			sr.SlotIndex, batchId, err))
	}
	return bytes
}

// loadSlots fills in the batch's slot records.  The cache
// journal is used when present; otherwise the slots come from
// the database and the journal is rebuilt from them.
func (br *BatchRecord) loadSlots() {
	var raw [][]byte
	body := func(conn redis.Conn) (err error) {
		raw, err = redis.ByteSlices(conn.Do("LRANGE", br.slotsKey(), 0, -1))
		if err != nil {
			err = fmt.Errorf("Cache failure reading slots of batch %q: %v", br.BatchId, err)
		}
		return
	}
	rdExecute(body)
	br.Slots = make([]*SlotRecord, 0, len(raw))
	for _, bytes := range raw {
		sr := &SlotRecord{}
		if err := json.Unmarshal(bytes, sr); err != nil {
			panic(fmt.Errorf("Failed to unmarshal slot of batch %q: %v", br.BatchId, err))
		}
		br.Slots = append(br.Slots, sr)
	}
	if len(br.Slots) > 0 || br.SlotCount == 0 {
		return
	}
	// cold cache; reload the journal from the database
	br.databaseLoadSlots()
	if len(br.Slots) == 0 {
		return
	}
	body = func(conn redis.Conn) (err error) {
		args := redis.Args{}.Add(br.slotsKey())
		for _, sr := range br.Slots {
			args = args.Add(marshalSlot(br.BatchId, sr))
		}
		conn.Send("DEL", br.slotsKey())
		_, err = conn.Do("RPUSH", args...)
		if err != nil {
			err = fmt.Errorf("Cache failure rebuilding slots of batch %q: %v", br.BatchId, err)
		}
		return
	}
	rdExecute(body)
}

/*

cache and database plumbing

*/

// key - returns the cache key for the batch header
func (br *BatchRecord) key() string {
	return "BID:" + br.BatchId
}

// slotsKey - returns the key for the batch's slot journal
func (br *BatchRecord) slotsKey() string {
	return br.key() + ":Slots"
}

// cacheLoad: load an already cached batch header.  Returns
// whether the header was found in the cache.
func (br *BatchRecord) cacheLoad() (found bool) {
	body := func(conn redis.Conn) error {
		vals, err := redis.Values(conn.Do("HGETALL", br.key()))
		if len(vals) > 0 {
			if err := redis.ScanStruct(vals, br); err != nil {
				return fmt.Errorf("Cache failure parsing batch %q: %v", br.BatchId, err)
			}
			found = true
			return nil
		}
		return err
	}
	rdExecute(body)
	return
}

// cacheInsert: insert a batch header into the cache.
func (br *BatchRecord) cacheInsert() {
	body := func(conn redis.Conn) (err error) {
		_, err = conn.Do("HMSET", redis.Args{}.Add(br.key()).AddFlat(br)...)
		if err != nil {
			err = fmt.Errorf("Cache failure saving batch %q: %v", br.BatchId, err)
		}
		return
	}
	rdExecute(body)
}

// databaseInsert: insert a new batch header into the database.
func (br *BatchRecord) databaseInsert() {
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(context.Background(),
			"INSERT INTO batches "+
				"(batchId, masterSeed, workerCount, deadlineMillis, slotCount, created) "+
				"VALUES ($1, $2, $3, $4, $5, $6)",
			br.BatchId, int64(br.MasterSeed), int32(br.WorkerCount),
			br.DeadlineMillis, int32(br.SlotCount), time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving batch %q: %v", br.BatchId, err)
		}
		return
	}
	pgExecute(body)
}

// databaseLoad: load a batch header from the database.  Returns
// false if there is no batch with the given id.
func (br *BatchRecord) databaseLoad() (found bool) {
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(context.Background(),
			"SELECT masterSeed, workerCount, deadlineMillis, slotCount FROM batches "+
				"WHERE batchId = $1", br.BatchId)
		var seed int64
		var workers, slots int32
		err := row.Scan(&seed, &workers, &br.DeadlineMillis, &slots)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Failure looking up batch %q: %v", br.BatchId, err)
		}
		br.MasterSeed = uint64(seed)
		br.WorkerCount = int(workers)
		br.SlotCount = int(slots)
		found = true
		return nil
	}
	pgExecute(body)
	return
}

// databaseLoadSlots: load the batch's slots from the database in
// slot order.
func (br *BatchRecord) databaseLoadSlots() {
	body := func(tx pgx.Tx) error {
		rows, err := tx.Query(context.Background(),
			"SELECT slotIndex, difficulty, state, seed, attempts, puzzleId, error "+
				"FROM batchSlots WHERE batchId = $1 ORDER BY slotIndex", br.BatchId)
		if err != nil {
			return fmt.Errorf("Failure listing slots of batch %q: %v", br.BatchId, err)
		}
		defer rows.Close()
		for rows.Next() {
			sr := &SlotRecord{}
			var index, attempts int32
			var seed int64
			if err := rows.Scan(&index, &sr.Difficulty, &sr.State, &seed,
				&attempts, &sr.PuzzleId, &sr.Error); err != nil {
				return fmt.Errorf("Failure reading slots of batch %q: %v", br.BatchId, err)
			}
			sr.SlotIndex = int(index)
			sr.Attempts = int(attempts)
			sr.Seed = uint64(seed)
			br.Slots = append(br.Slots, sr)
		}
		return rows.Err()
	}
	pgExecute(body)
}

// databaseInsert: insert one slot into the database.
func (sr *SlotRecord) databaseInsert(batchId string) {
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(context.Background(),
			"INSERT INTO batchSlots "+
				"(batchId, slotIndex, difficulty, state, seed, attempts, puzzleId, error) "+
				"VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
			batchId, int32(sr.SlotIndex), sr.Difficulty, sr.State,
			int64(sr.Seed), int32(sr.Attempts), sr.PuzzleId, sr.Error)
		if err != nil {
			err = fmt.Errorf("Database error saving slot %d of batch %q: %v",
				sr.SlotIndex, batchId, err)
		}
		return
	}
	pgExecute(body)
}
