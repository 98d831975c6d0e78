package player

import (
	"fmt"
	"strings"
	"time"
)

// Player is one tracked BGMafia character. Name is the display name lifted
// from the in-game leaderboards and is not guaranteed unique; ProfileID is the
// numeric id from the player's profile URL on the game site and is the
// stronger identity signal once known.
type Player struct {
	ID        string
	Name      string
	ProfileID string
	CreatedAt time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}

// NormalizeName is the single normalization rule applied wherever player
// identity is compared by name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
