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
	"fmt"
	"strconv"
)

/*

Print forms of board values

*/

var (
	valueStrings   = []string{" ", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	nonValueString = "?"
	bigValueString = "!"
)

func vstr(i int) string {
	if i < 0 {
		return nonValueString
	}
	if i < len(valueStrings) {
		return valueStrings[i]
	}
	return bigValueString
}

/*

Pretty-printed boards in strings, for debugging.

*/

// String gives a pretty-printed view of a board.
func (b *Board) String() string {
	return b.ValuesString(true) + b.ErrorsString()
}

// ValuesString: return a pretty-printed canvas of the values.
// If showBindings is specified, single-value squares, bound
// squares, and 2-choice squares also show their contents.
// Positions outside every grid render as blanks.
func (b *Board) ValuesString(showBindings bool) (result string) {
	if b == nil {
		return
	}
	// first put out the header
	result += " "
	for i := 0; i < CanvasSize; i++ {
		if i%TileSize != 0 {
			result += " "
		} else {
			result += "|"
		}
		result += fmt.Sprintf("%2d ", i+1)
	}
	result += "\n"
	// next are the rows, including the separator at the top of
	// each tile row.  The grid origins are all multiples of the
	// tile size, so every grid's tile boundaries land on canvas
	// tile boundaries.
	for ri, rowhdr := 0, 'a'; ri < CanvasSize; ri, rowhdr = ri+1, rowhdr+1 {
		if ri%TileSize == 0 {
			result += " "
			for i := 0; i < CanvasSize; i++ {
				if _, ok := SquareAt(ri, i); ok {
					result += "+---"
				} else {
					result += "    "
				}
			}
			result += "\n"
		}
		result += string(rowhdr)
		for i := 0; i < CanvasSize; i++ {
			si, ok := SquareAt(ri, i)
			if !ok {
				result += "    "
				continue
			}
			s := b.squares[si]
			if i%TileSize != 0 {
				result += " "
			} else {
				result += "|"
			}
			if s.aval != 0 {
				result += fmt.Sprintf(" %s ", vstr(s.aval))
			} else if showBindings {
				if len(s.pvals) == 1 {
					result += fmt.Sprintf("=%s ", vstr(s.pvals[0]))
				} else if s.bval != 0 {
					result += fmt.Sprintf("+%s ", vstr(s.bval))
				} else if len(s.pvals) == 2 {
					result += fmt.Sprintf("%s,%s", vstr(s.pvals[0]), vstr(s.pvals[1]))
				} else {
					result += fmt.Sprintf(" _ ")
				}
			} else {
				result += fmt.Sprintf(" _ ")
			}
		}
		result += "\n"
	}
	return
}

func (b *Board) ErrorsString() (result string) {
	if b != nil {
		if elen := len(b.errors); elen > 0 {
			if elen > 1 {
				result += fmt.Sprintf("Errors (%d):\n", elen)
				for i, err := range b.errors {
					result += fmt.Sprintf("  #%d: %v\n", i+1, err)
				}
			} else {
				result += fmt.Sprintf("Error: %v\n", b.errors[0])
			}
		}
	}
	return
}

/*

Markdown-formatted tables, for documentation

*/

// ValuesMarkdown returns a markdown-format table for a board as
// a sring.  Specifying showBindings produces the same variant as
// for ValuesString.
func (b *Board) ValuesMarkdown(showBindings bool) (result string) {
	if b == nil {
		return
	}
	// first put out the header
	result += "|     |"
	for i, header := 0, 1; i < CanvasSize; i, header = i+1, header+1 {
		result += "  " + strconv.Itoa(header) + "  |"
	}
	result += "\n"
	// next comes the header separator line
	result += "|"
	for i, header := 0, ":---:"; i < CanvasSize+1; i++ {
		result += header + "|"
	}
	result += "\n"
	// next comes the content of the canvas,
	// with each line prefixed by a letter.
	for ri, rowhdr := 0, 'a'; ri < CanvasSize; ri, rowhdr = ri+1, rowhdr+1 {
		result += "|**" + string(rowhdr) + "**"
		for i := 0; i < CanvasSize; i++ {
			if i == 0 {
				result += "| "
			} else {
				result += " | "
			}
			si, ok := SquareAt(ri, i)
			if !ok {
				result += "   "
				continue
			}
			s := b.squares[si]
			if s.aval != 0 {
				result += fmt.Sprintf(" %s ", vstr(s.aval))
			} else if showBindings {
				if len(s.pvals) == 1 {
					result += fmt.Sprintf("=%s ", vstr(s.pvals[0]))
				} else if s.bval != 0 {
					result += fmt.Sprintf("+%s ", vstr(s.bval))
				} else if len(s.pvals) == 2 {
					result += fmt.Sprintf("%s,%s", vstr(s.pvals[0]), vstr(s.pvals[1]))
				} else {
					result += fmt.Sprintf("   ")
				}
			} else {
				result += "   "
			}
		}
		result += " |\n"
	}
	return
}

func (b *Board) ErrorsMarkdown() (result string) {
	if b != nil {
		if elen := len(b.errors); elen > 0 {
			if elen > 1 {
				result += fmt.Sprintf("Errors (%d):\n", elen)
				for i, err := range b.errors {
					result += fmt.Sprintf("    %d. %v\n", i+1, err)
				}
			} else {
				result += fmt.Sprintf("Error: %v\n", b.errors[0])
			}
		}
	}
	return
}
