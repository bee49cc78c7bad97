package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SKR35/Samurai-Sudoku-Generator/batch"
	"github.com/SKR35/Samurai-Sudoku-Generator/puzzle"
	"github.com/SKR35/Samurai-Sudoku-Generator/storage"
)

var log = logrus.StandardLogger()

// generation defaults, adjustable from the environment at startup
// and per request in the request body
var (
	defaultWorkers  = runtime.NumCPU()
	defaultDeadline = 6 * time.Second
)

// A generateRequest asks the service for count puzzles at one
// difficulty.  The seed is optional; a request without one gets a
// freshly minted master seed, which the response reports so the
// run can be reproduced.
type generateRequest struct {
	Difficulty string  `json:"difficulty"`
	Count      int     `json:"count"`
	Seed       *uint64 `json:"seed,omitempty"`
	Workers    int     `json:"workers,omitempty"`
	Deadline   int64   `json:"deadline,omitempty"` // milliseconds per attempt
}

// A generateResponse reports the bookkeeping of the batch run and
// the stored records of the puzzles it produced.  Slots that
// settled without a puzzle carry their error instead.
type generateResponse struct {
	BatchId    string                  `json:"batchId"`
	MasterSeed uint64                  `json:"masterSeed"`
	Slots      []*storage.SlotRecord   `json:"slots"`
	Records    []*storage.PuzzleRecord `json:"records"`
}

// A puzzleInfo is the listing form of a stored puzzle: the header
// fields without the clue and solution bodies.
type puzzleInfo struct {
	PuzzleId   string `json:"puzzleId"`
	Difficulty string `json:"difficulty"`
	ClueCount  int32  `json:"clueCount"`
	Seed       uint64 `json:"seed"`
}

/*

endpoint handlers

*/

// generateHandler runs a batch for the decoded request, stores
// what it made, and sends back the batch and puzzle records.
func generateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		puzzle.WriteError(puzzle.Error{
			Scope:     puzzle.RequestScope,
			Structure: puzzle.AttributeValueStructure,
			Attribute: puzzle.NamedAttribute,
			Condition: puzzle.GeneralCondition,
			Values:    puzzle.ErrorData{"Method", r.Method},
		}, w, r)
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		puzzle.WriteDecodingError(err, w, r)
		return
	}
	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	workers := defaultWorkers
	if req.Workers > 0 {
		workers = req.Workers
	}
	deadline := defaultDeadline
	if req.Deadline > 0 {
		deadline = time.Duration(req.Deadline) * time.Millisecond
	}

	requests := []batch.Request{{Difficulty: req.Difficulty, Count: req.Count}}
	outcomes, err := batch.Run(r.Context(), requests, seed, workers, deadline)
	if err != nil {
		if _, partial := err.(*batch.PartialFailure); !partial {
			// the batch never started; nothing to record
			puzzle.WriteError(err, w, r)
			return
		}
	}

	br := storage.StartBatch(seed, workers, deadline.Milliseconds(), len(outcomes))
	resp := generateResponse{BatchId: br.BatchId, MasterSeed: seed}
	for _, out := range outcomes {
		var pid string
		if out.State == batch.Accepted {
			var e error
			if pid, e = storage.SavePuzzle(out.Puzzle); e != nil {
				panic(fmt.Errorf("Couldn't save puzzle for slot %d: %v", out.Index, e))
			}
			if pr, ok := storage.LoadPuzzle(pid); ok {
				resp.Records = append(resp.Records, pr)
			}
		}
		br.AddSlot(out, pid)
	}
	resp.Slots = br.Slots
	log.WithFields(logrus.Fields{
		"batch":   br.BatchId,
		"slots":   len(resp.Slots),
		"puzzles": len(resp.Records),
	}).Info("batch recorded")
	puzzle.WriteJSON(resp, http.StatusOK, w, r)
}

// puzzlesHandler lists the headers of all stored puzzles.
func puzzlesHandler(w http.ResponseWriter, r *http.Request) {
	records := storage.ListPuzzles()
	infos := make([]puzzleInfo, len(records))
	for i, pr := range records {
		infos[i] = puzzleInfo{
			PuzzleId:   pr.PuzzleId,
			Difficulty: pr.Difficulty,
			ClueCount:  pr.ClueCount,
			Seed:       pr.Seed,
		}
	}
	puzzle.WriteJSON(infos, http.StatusOK, w, r)
}

// puzzleHandler returns one stored puzzle record by id.  Ids are
// uppercase hex, but we take them in any case.
func puzzleHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/puzzle/")
	if pr, ok := storage.LoadPuzzle(strings.ToUpper(id)); ok {
		puzzle.WriteJSON(pr, http.StatusOK, w, r)
		return
	}
	puzzle.WriteNotFound("puzzle", w, r)
}

// batchHandler returns one batch run record by id, slots and all.
func batchHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/batch/")
	if br, ok := storage.LookupBatch(id); ok {
		puzzle.WriteJSON(br, http.StatusOK, w, r)
		return
	}
	puzzle.WriteNotFound("batch", w, r)
}

// apiHandler routes the service endpoints.
func apiHandler(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/generate":
		generateHandler(w, r)
	case r.URL.Path == "/api/puzzles":
		puzzlesHandler(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/puzzle/"):
		puzzleHandler(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/batch/"):
		batchHandler(w, r)
	default:
		puzzle.WriteNotFound("endpoint", w, r)
	}
}

// protect wraps a handler so a storage panic turns into a 500
// response instead of a dropped connection.
func protect(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(logrus.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
					"panic":  rec,
				}).Error("handler panicked")
				puzzle.WriteError(puzzle.Error{
					Scope:     puzzle.InternalScope,
					Structure: puzzle.AttributeValueStructure,
					Attribute: puzzle.LocationAttribute,
					Condition: puzzle.GeneralCondition,
					Values:    puzzle.ErrorData{r.URL.Path, fmt.Sprint(rec)},
				}, w, r)
			}
		}()
		handler(w, r)
	}
}

/*

server

*/

func main() {
	// environment overrides for the generation defaults
	if ws := os.Getenv("SAMURAI_WORKERS"); ws != "" {
		if n, err := strconv.Atoi(ws); err == nil && n > 0 {
			defaultWorkers = n
		} else {
			log.WithField("SAMURAI_WORKERS", ws).Warn("ignoring unusable worker count")
		}
	}
	if ds := os.Getenv("SAMURAI_DEADLINE"); ds != "" {
		if d, err := time.ParseDuration(ds); err == nil && d > 0 {
			defaultDeadline = d
		} else {
			log.WithField("SAMURAI_DEADLINE", ds).Warn("ignoring unusable deadline")
		}
	}

	// connect to storage, or die trying
	cid, dbid, err := storage.Connect()
	if err != nil {
		log.WithField("error", err).Fatal("storage connection failed")
	}
	log.WithFields(logrus.Fields{"cache": cid, "database": dbid}).Info("storage connected")

	http.HandleFunc("/", protect(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Info("handling request")
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler(w, r)
			return
		}
		puzzle.WriteNotFound("endpoint", w, r)
	}))

	// Heroku environment port sensing
	port := os.Getenv("PORT")
	if port == "" {
		// running locally in dev mode
		port = "localhost:8080"
	} else {
		// running as a true server
		port = ":" + port
	}

	log.WithField("address", port).Info("listening")
	if err := http.ListenAndServe(port, nil); err != nil {
		log.WithField("error", err).Fatal("listener failure")
	}
}
