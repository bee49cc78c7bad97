package puzzle

/*

Samurai Geometry

The samurai canvas is a 21x21 lattice of positions holding five
overlapping 9x9 grids: top-left, top-right, center, bottom-left,
and bottom-right.  The center grid shares each of its corner
tiles with the facing corner of one of the outer grids, so 36 of
the 369 active squares sit in two grids at once.  Positions
covered by no grid are inactive; they carry no squares and no
constraints.

There is exactly one geometry in this module, so its mapping is
computed once at startup and shared, read-only, by every board.

*/

import (
	"fmt"
)

// Dimensions of the samurai canvas.  These are fixed by the
// puzzle form and used throughout the module.
const (
	SamuraiGeometryName = "samurai"

	CanvasSize  = 21  // rows and columns on the canvas
	GridSize    = 9   // rows and columns in each grid
	TileSize    = 3   // rows and columns in each tile
	GridCount   = 5   // grids on the canvas
	SquareCount = 369 // active squares on the canvas
	GroupCount  = 135 // rows, columns, and tiles over all grids

	groupsPerGrid = 3 * GridSize
)

// The five grids, in reading order of their top-left corners.
// The overlapping squares of the center grid are shared with the
// facing corners of the four outer grids.
var (
	gridNames   = [GridCount]string{"TL", "TR", "C", "BL", "BR"}
	gridOrigins = [GridCount][2]int{{0, 0}, {0, 12}, {6, 6}, {12, 0}, {12, 12}}
)

// A group descriptor identifies a group and enumerates the
// indices of its squares.
type groupDescriptor struct {
	index   int
	id      GroupID
	indices intset
}

// A samuraiMapping holds the precomputed topology of the canvas:
// the descriptors of all the groups, a mapping from each square
// index to the groups that contain it, and the translations
// between square indices and canvas positions.
type samuraiMapping struct {
	geometry string
	scount   int
	gcount   int
	gdescs   []groupDescriptor // 1-based group indexing
	ixmap    [][]int           // square index -> containing group indexes, ascending
	grids    [][]int           // square index -> covering grid numbers, ascending
	posmap   []int             // square index -> canvas position (row*CanvasSize + col)
	sqmap    []int             // canvas position -> square index, 0 if inactive
}

// the one samurai mapping, shared by all boards
var samuraiMap = computeSamuraiMapping()

// coveringGrids returns the numbers of the grids that cover a
// canvas position, in ascending order.
func coveringGrids(row, col int) []int {
	var gs []int
	for g := 0; g < GridCount; g++ {
		gr, gc := row-gridOrigins[g][0], col-gridOrigins[g][1]
		if gr >= 0 && gr < GridSize && gc >= 0 && gc < GridSize {
			gs = append(gs, g)
		}
	}
	return gs
}

func computeSamuraiMapping() *samuraiMapping {
	sm := &samuraiMapping{
		geometry: SamuraiGeometryName,
		sqmap:    make([]int, CanvasSize*CanvasSize),
	}

	// Pass 1: walk the canvas in reading order, numbering the
	// active positions.  This fixes the square indexing that the
	// rest of the module relies on.
	grids := [][]int{nil}  // 1-based square indexing
	posmap := []int{0}     // 1-based square indexing
	for pos := 0; pos < CanvasSize*CanvasSize; pos++ {
		gs := coveringGrids(pos/CanvasSize, pos%CanvasSize)
		if len(gs) == 0 {
			continue
		}
		grids = append(grids, gs)
		posmap = append(posmap, pos)
		sm.sqmap[pos] = len(posmap) - 1
	}
	sm.scount = len(posmap) - 1
	sm.gcount = GridCount * groupsPerGrid
	sm.grids = grids
	sm.posmap = posmap

	// Pass 2: build the groups grid by grid.  Each square's
	// ixmap entry has a three-slot block per covering grid, in
	// grid order, holding its row, column, and tile group
	// indexes.  With ascending group numbering per grid this
	// keeps every ixmap entry sorted.
	gs := make([]groupDescriptor, sm.gcount+1) // 1-based indexing
	im := make([][]int, sm.scount+1)           // 1-based indexing
	for i := 1; i <= sm.scount; i++ {
		im[i] = make([]int, 3*len(grids[i]))
	}
	slot := func(si, g int) int {
		for b, bg := range grids[si] {
			if bg == g {
				return 3 * b
			}
		}
		panic(fmt.Errorf("Square %d is not in grid %s", si, gridNames[g]))
	}
	for g := 0; g < GridCount; g++ {
		orow, ocol := gridOrigins[g][0], gridOrigins[g][1]
		at := func(r, c int) int {
			return sm.sqmap[(orow+r)*CanvasSize+(ocol+c)]
		}
		for i := 0; i < GridSize; i++ {
			// row i + 1
			rgi := g*groupsPerGrid + i + 1 // 1-based indexes
			row := make(intset, GridSize)
			for ri := 0; ri < GridSize; ri++ {
				si := at(i, ri)
				row[ri] = si
				im[si][slot(si, g)] = rgi
			}
			gs[rgi] = groupDescriptor{rgi, GroupID{gridNames[g], GtypeRow, i + 1}, row}
			// column i + 1
			cgi := g*groupsPerGrid + GridSize + i + 1
			col := make(intset, GridSize)
			for ci := 0; ci < GridSize; ci++ {
				si := at(ci, i)
				col[ci] = si
				im[si][slot(si, g)+1] = cgi
			}
			gs[cgi] = groupDescriptor{cgi, GroupID{gridNames[g], GtypeCol, i + 1}, col}
			// tile i + 1
			tgi := g*groupsPerGrid + 2*GridSize + i + 1
			tile := make(intset, GridSize)
			baserow, basecol := TileSize*(i/TileSize), TileSize*(i%TileSize)
			for tri := 0; tri < TileSize; tri++ {
				for tci := 0; tci < TileSize; tci++ {
					si := at(baserow+tri, basecol+tci)
					tile[tri*TileSize+tci] = si
					im[si][slot(si, g)+2] = tgi
				}
			}
			gs[tgi] = groupDescriptor{tgi, GroupID{gridNames[g], GtypeTile, i + 1}, tile}
		}
	}
	sm.gdescs = gs
	sm.ixmap = im
	return sm
}

/*

Position lookups

*/

// SquareAt returns the index of the active square at the given
// canvas row and column (0-based reading order), and whether the
// position holds a square at all.
func SquareAt(row, col int) (int, bool) {
	if row < 0 || row >= CanvasSize || col < 0 || col >= CanvasSize {
		return 0, false
	}
	si := samuraiMap.sqmap[row*CanvasSize+col]
	return si, si != 0
}

// SquarePosition returns the canvas row and column (0-based) of
// the square with the given index.
func SquarePosition(index int) (row, col int) {
	if index < 1 || index > SquareCount {
		panic(fmt.Errorf("Square index %d out of range", index))
	}
	pos := samuraiMap.posmap[index]
	return pos / CanvasSize, pos % CanvasSize
}

// SquareGrids returns the names of the grids that contain the
// square with the given index: one name for most squares, two
// for squares in a shared tile.
func SquareGrids(index int) []string {
	if index < 1 || index > SquareCount {
		panic(fmt.Errorf("Square index %d out of range", index))
	}
	names := make([]string, len(samuraiMap.grids[index]))
	for i, g := range samuraiMap.grids[index] {
		names[i] = gridNames[g]
	}
	return names
}

// SquareGroups returns the IDs of the groups that constrain the
// square with the given index, in group index order.
func SquareGroups(index int) []GroupID {
	if index < 1 || index > SquareCount {
		panic(fmt.Errorf("Square index %d out of range", index))
	}
	ids := make([]GroupID, len(samuraiMap.ixmap[index]))
	for i, gi := range samuraiMap.ixmap[index] {
		ids[i] = samuraiMap.gdescs[gi].id
	}
	return ids
}
