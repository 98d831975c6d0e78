package weeklyranking

import (
	"fmt"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
)

// WeeklyRanking is one player's captured absolute values and computed gains
// for one week. At most one row exists per (player, weekStart, weekEnd).
type WeeklyRanking struct {
	ID           string
	PlayerID     string
	WeekStart    time.Time
	WeekEnd      time.Time
	RankPosition *int
	Values       dailystat.Counters
	Gains        dailystat.Counters
}

func (w WeeklyRanking) Validate() error {
	if w.PlayerID == "" {
		return fmt.Errorf("weekly ranking player id is required")
	}
	if w.WeekStart.IsZero() || w.WeekEnd.IsZero() {
		return fmt.Errorf("weekly ranking period is required")
	}
	if w.WeekEnd.Before(w.WeekStart) {
		return fmt.Errorf("weekly ranking end date precedes start date")
	}

	return nil
}
