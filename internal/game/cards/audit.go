package cards

import (
	"errors"
	"fmt"
)

var ErrConservation = errors.New("card conservation violated")

// Audit checks that zones together hold exactly want cards and that no
// instance id appears twice.
func Audit(want int, zones ...[]Card) error {
	seen := make(map[string]struct{}, want)
	n := 0
	for _, z := range zones {
		for _, c := range z {
			if c.ID == "" {
				return fmt.Errorf("%w: card %s has no id", ErrConservation, c)
			}
			if _, dup := seen[c.ID]; dup {
				return fmt.Errorf("%w: duplicate card %s (%s)", ErrConservation, c, c.ID)
			}
			seen[c.ID] = struct{}{}
			n++
		}
	}
	if n != want {
		return fmt.Errorf("%w: have %d cards, want %d", ErrConservation, n, want)
	}
	return nil
}
