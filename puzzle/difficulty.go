package puzzle

/*

Difficulty profiles

*/

import "strings"

// A Difficulty names how deeply a puzzle has been carved.  Fewer
// clues means more of the solution must be deduced, hence a
// harder puzzle.
type Difficulty string

// The known difficulties, in increasing order of difficulty.
const (
	EasyDifficulty   Difficulty = "easy"
	MediumDifficulty Difficulty = "medium"
	HardDifficulty   Difficulty = "hard"
	EvilDifficulty   Difficulty = "evil"
)

// A DifficultyProfile gives the clue-count band for a
// difficulty.  Carving aims for Target and the result is
// accepted anywhere in [MinClues, MaxClues].  Counts are over
// the whole canvas, all five grids together.
type DifficultyProfile struct {
	Difficulty Difficulty `json:"difficulty"`
	MinClues   int        `json:"minClues"`
	MaxClues   int        `json:"maxClues"`
	Target     int        `json:"target"`
}

// The profiles live in a list rather than a map: there are only
// four, and the list preserves their natural order.
var difficultyProfiles = []*DifficultyProfile{
	{EasyDifficulty, 150, 190, 170},
	{MediumDifficulty, 120, 150, 140},
	{HardDifficulty, 95, 125, 110},
	{EvilDifficulty, 65, 100, 80},
}

// LookupDifficulty finds the profile for a difficulty name,
// ignoring case.  Unknown names return an Error.
func LookupDifficulty(name string) (*DifficultyProfile, error) {
	folded := strings.ToLower(name)
	for _, dp := range difficultyProfiles {
		if string(dp.Difficulty) == folded {
			return dp, nil
		}
	}
	return nil, Error{
		Scope:     ArgumentScope,
		Structure: AttributeValueStructure,
		Condition: UnknownDifficultyCondition,
		Attribute: DifficultyAttribute,
		Values:    ErrorData{name},
	}
}

// KnownDifficulties returns the difficulty names in increasing
// order of difficulty.
func KnownDifficulties() []Difficulty {
	ds := make([]Difficulty, len(difficultyProfiles))
	for i, dp := range difficultyProfiles {
		ds[i] = dp.Difficulty
	}
	return ds
}

// Contains reports whether a clue count lies in the profile's
// band.
func (dp *DifficultyProfile) Contains(clueCount int) bool {
	return clueCount >= dp.MinClues && clueCount <= dp.MaxClues
}

// Classify reports whether a clue count lies in the band of the
// named difficulty.  Unknown difficulties contain nothing.
func Classify(clueCount int, difficulty Difficulty) bool {
	dp, err := LookupDifficulty(string(difficulty))
	if err != nil {
		return false
	}
	return dp.Contains(clueCount)
}
