package board

import (
	"errors"
	"fmt"
)

// MaxTotalSeeds is the largest number of seeds a board may hold. Scores are
// signed bytes, so every margin has to fit in an int8.
const MaxTotalSeeds = 127

var (
	ErrInvalidRules  = errors.New("invalid rules")
	ErrPitOutOfRange = errors.New("pit index out of range")
	ErrEmptyPit      = errors.New("pit is empty")
	ErrGameOver      = errors.New("game is over")
)

// Rules are fixed for the lifetime of a search.
type Rules struct {
	Pits  int `json:"pits" yaml:"pits"`
	Seeds int `json:"seeds" yaml:"seeds"`
	// Stealing enables the capture of the mirror pit when the last seed lands
	// in an empty pit on the mover's side.
	Stealing bool `json:"stealing" yaml:"stealing"`
	// CountRemaining credits seeds left in a side's pits to that side once the
	// game is over. When false, only the stores count.
	CountRemaining bool `json:"count_remaining" yaml:"count_remaining"`
}

func (r Rules) TotalSeeds() int {
	return 2 * r.Pits * r.Seeds
}

func (r Rules) Validate() error {
	if r.Pits < 1 {
		return fmt.Errorf("%w: need at least one pit, got %d", ErrInvalidRules, r.Pits)
	}
	if r.Seeds < 0 {
		return fmt.Errorf("%w: negative seed count %d", ErrInvalidRules, r.Seeds)
	}
	if r.TotalSeeds() > MaxTotalSeeds {
		return fmt.Errorf("%w: %d pits with %d seeds holds %d seeds, more than %d",
			ErrInvalidRules, r.Pits, r.Seeds, r.TotalSeeds(), MaxTotalSeeds)
	}
	return nil
}

func (r Rules) String() string {
	return fmt.Sprintf("pits=%d seeds=%d stealing=%v count-remaining=%v",
		r.Pits, r.Seeds, r.Stealing, r.CountRemaining)
}
