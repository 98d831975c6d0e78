package dailystat

import (
	"fmt"
	"strings"
	"time"
)

// StatType names one of the five leaderboard counters published by the game.
type StatType string

const (
	StatStrength     StatType = "strength"
	StatIntelligence StatType = "intelligence"
	StatSex          StatType = "sex"
	StatVictories    StatType = "victories"
	StatExperience   StatType = "experience"
)

// AllStatTypes lists the counters in the order the game site shows them.
var AllStatTypes = []StatType{
	StatStrength,
	StatIntelligence,
	StatSex,
	StatVictories,
	StatExperience,
}

func ParseStatType(v string) (StatType, error) {
	candidate := StatType(strings.ToLower(strings.TrimSpace(v)))
	for _, stat := range AllStatTypes {
		if candidate == stat {
			return stat, nil
		}
	}

	return "", fmt.Errorf("unknown stat type: %s", v)
}

// Known in-game day events. day_type is free-form in storage; these are the
// values the game has used so far.
var KnownDayTypes = []string{
	"Нормален ден",
	"Ден на опита",
	"Ден на интелекта",
	"Ден на силата",
	"Ден на контрабандата",
	"Ден на фабриканта",
	"Ден на сексапила",
	"Ден на побой",
}

// Counters holds the five per-day counters. Each one is independently
// populated as different stat uploads arrive for the same date.
type Counters struct {
	Strength     int64
	Intelligence int64
	Sex          int64
	Victories    int64
	Experience   int64
}

func (c Counters) Value(stat StatType) int64 {
	switch stat {
	case StatStrength:
		return c.Strength
	case StatIntelligence:
		return c.Intelligence
	case StatSex:
		return c.Sex
	case StatVictories:
		return c.Victories
	case StatExperience:
		return c.Experience
	default:
		return 0
	}
}

func (c *Counters) Set(stat StatType, value int64) {
	switch stat {
	case StatStrength:
		c.Strength = value
	case StatIntelligence:
		c.Intelligence = value
	case StatSex:
		c.Sex = value
	case StatVictories:
		c.Victories = value
	case StatExperience:
		c.Experience = value
	}
}

// Add returns the field-by-field sum of both counter sets.
func (c Counters) Add(other Counters) Counters {
	return Counters{
		Strength:     c.Strength + other.Strength,
		Intelligence: c.Intelligence + other.Intelligence,
		Sex:          c.Sex + other.Sex,
		Victories:    c.Victories + other.Victories,
		Experience:   c.Experience + other.Experience,
	}
}

func (c Counters) Total() int64 {
	return c.Strength + c.Intelligence + c.Sex + c.Victories + c.Experience
}

// DailyStat is one player's counters for one calendar date. At most one row
// exists per (player, date) pair.
type DailyStat struct {
	ID       string
	PlayerID string
	Date     time.Time
	Counters Counters
	DayType  string
}

func (d DailyStat) Validate() error {
	if d.PlayerID == "" {
		return fmt.Errorf("daily stat player id is required")
	}
	if d.Date.IsZero() {
		return fmt.Errorf("daily stat date is required")
	}

	return nil
}

// NormalizeDate truncates to midnight UTC so (player, date) keys compare
// regardless of the wall clock the value arrived with.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
