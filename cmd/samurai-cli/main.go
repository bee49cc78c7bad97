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

// Command-line client for the samurai puzzle generator
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SKR35/Samurai-Sudoku-Generator/batch"
	"github.com/SKR35/Samurai-Sudoku-Generator/puzzle"
	"github.com/SKR35/Samurai-Sudoku-Generator/storage"
)

func main() {
	// catch signals
	shutdownOnSignal()

	// serve
	if err := listener(os.Stdout, os.Stdin); err != nil {
		log.Printf("CLI failure: %v", err)
		shutdown(listenerFailureShutdown)
	}
	storageClose()
}

/*

CLI listener

*/

type request struct {
	inline  string
	command string
	args    []string
}

// size of the input read buffer; tests shrink it to force
// fragmented reads
var bufsize = 4096

// listener reads lines and dispatches them to handlers
func listener(out io.Writer, in io.Reader) error {
	// if we are on a terminal, we do prompting
	// (see http://stackoverflow.com/questions/22744443/ for source)
	prompt := false
	if f, ok := out.(*os.File); ok {
		if stat, _ := f.Stat(); stat != nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			prompt = true
		}
	}

	input := make([]byte, bufsize)
	var pending []byte
	atEOF := false
	for {
		if prompt {
			fmt.Fprintf(out, "samurai> ")
		}
		// collect one line; a read may deliver a fragment or
		// several lines at once
		var line string
		for {
			if i := bytes.IndexByte(pending, '\n'); i >= 0 {
				line, pending = string(pending[:i]), pending[i+1:]
				break
			}
			if atEOF {
				if prompt {
					fmt.Fprintf(out, " (EOF)\n")
				}
				if len(bytes.TrimSpace(pending)) == 0 {
					return nil
				}
				// dispatch the unterminated last line
				line, pending = string(pending), nil
				break
			}
			n, err := in.Read(input)
			pending = append(pending, input[:n]...)
			switch err {
			case nil:
			case io.EOF:
				atEOF = true
			default:
				if prompt {
					fmt.Fprintf(out, " (read error)\n")
				}
				return err
			}
		}

		r := &request{inline: strings.Trim(line, " \t\r\n")}
		args := strings.Split(r.inline, " ")
		r.command = strings.ToLower(args[0])
		switch r.command {
		case "":
			continue
		case "quit":
			fallthrough
		case "exit":
			return nil
		}
		for _, arg := range args[1:] {
			if len(arg) > 0 {
				r.args = append(r.args, strings.ToLower(arg))
			}
		}
		dispatchCommand(out, r)
	}
}

// command dispatching
type commandInfo struct {
	command     string
	argInfo     string
	description string
	handler     func(io.Writer, *request)
}

// the command dispatch info is sorted for easy usage printing,
// and then hashed for rapid dispatching
var (
	dispatchInfo  []commandInfo
	dispatchTable map[string]*commandInfo
)

func init() {
	dispatchInfo = []commandInfo{
		{"generate", "[difficulty]", "generate a puzzle (default medium)", generateHandler},
		{"show", "", "show the current puzzle's clues", showHandler},
		{"solution", "", "show the current puzzle's solution", solutionHandler},
		{"verify", "", "recheck the current puzzle's uniqueness", verifyHandler},
		{"list", "", "list the difficulty profiles", listHandler},
		{"stored", "", "list the stored puzzles", storedHandler},
		{"save", "", "save the current puzzle to storage", saveHandler},
		{"load", "id", "load a stored puzzle", loadHandler},
		{"seed", "[number]", "get/set the master seed", seedHandler},
		{"workers", "[count]", "get/set the worker count", workersHandler},
		{"deadline", "[duration]", "get/set the carve deadline", deadlineHandler},
		{"markdown", "on|off", "format boards in Markdown", markdownHandler},
		{"help", "", "show this usage summary", helpHandler},
	}
	dispatchTable = make(map[string]*commandInfo, len(dispatchInfo))
	for i := range dispatchInfo {
		dispatchTable[dispatchInfo[i].command] = &dispatchInfo[i]
	}
}

func dispatchCommand(w io.Writer, r *request) {
	defer func() {
		if err := recover(); err != nil {
			errorHandler(err, w, r)
		}
	}()

	ci := dispatchTable[r.command]
	if ci == nil {
		usageHandler(fmt.Sprintf("%q is not a known command", r.command), w, r)
	} else {
		ci.handler(w, r)
	}
}

/*

request handlers

*/

// client state
var (
	useMarkdown = false
	current     *puzzle.Puzzle // the puzzle being inspected, if any
	masterSeed  uint64         // 0 means mint a fresh seed per run
	workerCount = 1
	deadline    = 6 * time.Second
)

func generateHandler(w io.Writer, r *request) {
	difficulty := "medium"
	if len(r.args) > 0 {
		difficulty = r.args[0]
	}
	if _, err := puzzle.LookupDifficulty(difficulty); err != nil {
		usageHandler(fmt.Sprintf("%q is not a known difficulty", difficulty), w, r)
		return
	}
	seed := masterSeed
	if seed == 0 {
		seed = rand.Uint64()
	}
	fmt.Fprintf(w, "Generating a new %s puzzle from seed %d...\n", difficulty, seed)
	requests := []batch.Request{{Difficulty: difficulty, Count: 1}}
	outcomes, err := batch.Run(context.Background(), requests, seed, workerCount, deadline)
	if err != nil {
		if len(outcomes) > 0 && outcomes[0].Err != nil {
			err = outcomes[0].Err
		}
		fmt.Fprintf(w, "Generation failed: %v\n", err)
		return
	}
	out := outcomes[0]
	current = out.Puzzle
	fmt.Fprintf(w, "Generated a new %s puzzle with %d clues on attempt %d.\n",
		out.Difficulty, current.ClueCount, out.Attempts)
	showHandler(w, r)
}

func showHandler(w io.Writer, r *request) {
	if current == nil {
		fmt.Fprintf(w, "No puzzle to show.\n")
		return
	}
	writeBoard(w, current.ClueSummary())
}

func solutionHandler(w io.Writer, r *request) {
	if current == nil {
		fmt.Fprintf(w, "No puzzle to show.\n")
		return
	}
	writeBoard(w, current.SolutionSummary())
}

func verifyHandler(w io.Writer, r *request) {
	if current == nil {
		fmt.Fprintf(w, "No puzzle to verify.\n")
		return
	}
	clues, err := puzzle.New(current.ClueSummary())
	if err != nil {
		panic(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()
	if sc := clues.CountSolutions(ctx); sc != puzzle.UniqueSolution {
		fmt.Fprintf(w, "Verify failed: clue board has %s.\n", sc)
		return
	}
	sol, err := clues.Solution(ctx)
	if err != nil {
		fmt.Fprintf(w, "Verify failed: %v\n", err)
		return
	}
	for i, v := range sol.Values {
		if v != current.Solution[i] {
			fmt.Fprintf(w, "Verify failed: square %d solves to %d, stored %d.\n",
				i+1, v, current.Solution[i])
			return
		}
	}
	fmt.Fprintf(w, "Verified: unique solution matches the stored solution.\n")
}

func listHandler(w io.Writer, r *request) {
	fmt.Fprintf(w, "Difficulty profiles (clue counts over the whole canvas):\n")
	for _, d := range puzzle.KnownDifficulties() {
		dp, err := puzzle.LookupDifficulty(string(d))
		if err != nil {
			panic(err)
		}
		fmt.Fprintf(w, "    %8s %d-%d clues, carve target %d\n",
			dp.Difficulty, dp.MinClues, dp.MaxClues, dp.Target)
	}
}

func storedHandler(w io.Writer, r *request) {
	if err := storageSetup(); err != nil {
		fmt.Fprintf(w, "No storage available: %v\n", err)
		return
	}
	records := storage.ListPuzzles()
	if len(records) == 0 {
		fmt.Fprintf(w, "No stored puzzles.\n")
		return
	}
	sort.Sort(storage.ByDifficulty(records))
	fmt.Fprintf(w, "Stored puzzles, easiest first:\n")
	for _, pr := range records {
		fmt.Fprintf(w, "    %s %8s %3d clues\n", pr.PuzzleId, pr.Difficulty, pr.ClueCount)
	}
}

func saveHandler(w io.Writer, r *request) {
	if current == nil {
		fmt.Fprintf(w, "No puzzle to save.\n")
		return
	}
	if err := storageSetup(); err != nil {
		fmt.Fprintf(w, "No storage available: %v\n", err)
		return
	}
	id, err := storage.SavePuzzle(current)
	if err != nil {
		panic(err)
	}
	fmt.Fprintf(w, "Saved puzzle %s.\n", id)
}

func loadHandler(w io.Writer, r *request) {
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires a puzzle id", r.command), w, r)
		return
	}
	if err := storageSetup(); err != nil {
		fmt.Fprintf(w, "No storage available: %v\n", err)
		return
	}
	pr, ok := storage.LoadPuzzle(strings.ToUpper(r.args[0]))
	if !ok {
		fmt.Fprintf(w, "No stored puzzle %q.\n", r.args[0])
		return
	}
	current = pr.Puzzle()
	fmt.Fprintf(w, "Loaded a stored %s puzzle with %d clues.\n", pr.Difficulty, pr.ClueCount)
	showHandler(w, r)
}

func seedHandler(w io.Writer, r *request) {
	if len(r.args) > 0 {
		n, err := strconv.ParseUint(r.args[0], 10, 64)
		if err != nil {
			usageHandler(fmt.Sprintf("%s argument (%s) must be a number", r.command, r.args[0]), w, r)
			return
		}
		masterSeed = n
	}
	if masterSeed == 0 {
		fmt.Fprintf(w, "Seed is fresh for every run\n")
	} else {
		fmt.Fprintf(w, "Seed is %d\n", masterSeed)
	}
}

func workersHandler(w io.Writer, r *request) {
	if len(r.args) > 0 {
		n, err := strconv.Atoi(r.args[0])
		if err != nil || n < 1 {
			usageHandler(fmt.Sprintf("%s argument (%s) must be a positive number", r.command, r.args[0]), w, r)
			return
		}
		workerCount = n
	}
	fmt.Fprintf(w, "Workers are %d\n", workerCount)
}

func deadlineHandler(w io.Writer, r *request) {
	if len(r.args) > 0 {
		d, err := time.ParseDuration(r.args[0])
		if err != nil || d <= 0 {
			usageHandler(fmt.Sprintf("%s argument (%s) must be a positive duration", r.command, r.args[0]), w, r)
			return
		}
		deadline = d
	}
	fmt.Fprintf(w, "Deadline is %v\n", deadline)
}

func markdownHandler(w io.Writer, r *request) {
	if len(r.args) > 0 {
		switch r.args[0] {
		case "on":
			useMarkdown = true
		case "off":
			useMarkdown = false
		default:
			usageHandler(fmt.Sprintf("argument to %s must be 'on' or 'off'", r.command), w, r)
			return
		}
	}
	if useMarkdown {
		fmt.Fprintf(w, "Markdown is on\n")
	} else {
		fmt.Fprintf(w, "Markdown is off\n")
	}
}

func helpHandler(w io.Writer, r *request) {
	usageHandler("", w, r)
}

func usageHandler(msg string, w io.Writer, r *request) {
	if msg != "" {
		fmt.Fprintf(w, "Error: %s\n", msg)
	}
	fmt.Fprintf(w, "Usage:\n")
	for _, ci := range dispatchInfo {
		fmt.Fprintf(w, "    %8s %-11s\t%s\n", ci.command, ci.argInfo, ci.description)
	}
	fmt.Fprintf(w, "  and 'quit' or EOF to exit.\n")
}

func errorHandler(err interface{}, w io.Writer, r *request) {
	fmt.Fprintf(w, "Panic executing %q: %v\n", r.inline, err)
	log.Printf("Server error executing %q: %v\n", r.inline, err)
}

// writeBoard renders a board summary in the session's format.
func writeBoard(w io.Writer, summary *puzzle.Summary) {
	b, err := puzzle.New(summary)
	if err != nil {
		panic(err)
	}
	if useMarkdown {
		fmt.Fprintf(w, "%s", b.ValuesMarkdown(false))
	} else {
		fmt.Fprintf(w, "%s", b.ValuesString(false))
	}
}

/*

storage connection, established on first use

*/

var storageReady = false

// storageSetup: connect to storage the first time a command
// needs it, so the generator commands work without any services.
func storageSetup() error {
	if storageReady {
		return nil
	}
	cacheId, databaseId, err := storage.Connect()
	if err != nil {
		return err
	}
	log.Printf("Connected to cache at %q", cacheId)
	log.Printf("Connected to database at %q", databaseId)
	storageReady = true
	return nil
}

func storageClose() {
	if storageReady {
		storage.Close()
		storageReady = false
	}
}

/*

coordinate shutdown across goroutines and top-level listener

*/

type shutdownCause int

const (
	unknownShutdown = iota
	runtimeFailureShutdown
	startupFailureShutdown
	storageFailureShutdown
	caughtSignalShutdown
	listenerFailureShutdown
)

// for testing, allow alternate forms of shutdown
var alternateShutdown func(reason shutdownCause)

// shutdown: process exit with logging.
func shutdown(reason shutdownCause) {
	storageClose()

	// for testing: run alternateShutdown instead, if defined
	if alternateShutdown != nil {
		alternateShutdown(reason)
		panic(reason) // shouldn't get here
	}

	// log reason for shutdown and exit
	switch reason {
	case unknownShutdown:
		log.Fatal("Exiting: normal shutdown.")
	case startupFailureShutdown:
		log.Fatal("Exiting: initialization failure.")
	case runtimeFailureShutdown:
		log.Fatal("Exiting: runtime failure.")
	case caughtSignalShutdown:
		log.Fatal("Exiting: caught signal.")
	case listenerFailureShutdown:
		log.Fatal("Exiting: command listener failed.")
	case storageFailureShutdown:
		log.Fatal("Exiting: storage failure.")
	default:
		log.Fatal("Exiting: unknown cause.")
	}
}

// shutdownOnSignal: catch signals and exit.
func shutdownOnSignal() {
	// based on example in os.signal godoc
	c := make(chan os.Signal, 1)
	signal.Notify(c) // die on all signals

	go func() {
		s := <-c
		log.Printf("Received OS-level signal: %v", s)
		shutdown(caughtSignalShutdown)
	}()
}
