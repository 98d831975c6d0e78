package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
)

type playerTableModel struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	ProfileID sql.NullString `db:"profile_id"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type playerInsertModel struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	ProfileID sql.NullString `db:"profile_id"`
	CreatedAt time.Time      `db:"created_at"`
}

type dailyStatTableModel struct {
	ID           string         `db:"id"`
	PlayerID     string         `db:"player_id"`
	Date         time.Time      `db:"date"`
	Strength     int64          `db:"strength"`
	Intelligence int64          `db:"intelligence"`
	Sex          int64          `db:"sex"`
	Victories    int64          `db:"victories"`
	Experience   int64          `db:"experience"`
	DayType      sql.NullString `db:"day_type"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type dailyStatInsertModel struct {
	PlayerID     string         `db:"player_id"`
	Date         time.Time      `db:"date"`
	Strength     int64          `db:"strength"`
	Intelligence int64          `db:"intelligence"`
	Sex          int64          `db:"sex"`
	Victories    int64          `db:"victories"`
	Experience   int64          `db:"experience"`
	DayType      sql.NullString `db:"day_type"`
}

type weeklyRankingTableModel struct {
	ID               string        `db:"id"`
	PlayerID         string        `db:"player_id"`
	WeekStart        time.Time     `db:"week_start_date"`
	WeekEnd          time.Time     `db:"week_end_date"`
	RankPosition     sql.NullInt64 `db:"rank_position"`
	Strength         int64         `db:"strength"`
	Intelligence     int64         `db:"intelligence"`
	Sex              int64         `db:"sex"`
	Victories        int64         `db:"victories"`
	Experience       int64         `db:"experience"`
	StrengthGain     int64         `db:"strength_gain"`
	IntelligenceGain int64         `db:"intelligence_gain"`
	SexGain          int64         `db:"sex_gain"`
	VictoriesGain    int64         `db:"victories_gain"`
	ExperienceGain   int64         `db:"experience_gain"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

type weeklyRankingInsertModel struct {
	PlayerID         string        `db:"player_id"`
	WeekStart        time.Time     `db:"week_start_date"`
	WeekEnd          time.Time     `db:"week_end_date"`
	RankPosition     sql.NullInt64 `db:"rank_position"`
	Strength         int64         `db:"strength"`
	Intelligence     int64         `db:"intelligence"`
	Sex              int64         `db:"sex"`
	Victories        int64         `db:"victories"`
	Experience       int64         `db:"experience"`
	StrengthGain     int64         `db:"strength_gain"`
	IntelligenceGain int64         `db:"intelligence_gain"`
	SexGain          int64         `db:"sex_gain"`
	VictoriesGain    int64         `db:"victories_gain"`
	ExperienceGain   int64         `db:"experience_gain"`
}

// statColumn maps a stat type to its column; all writes of per-stat columns
// go through here so the stat never reaches SQL as raw text.
func statColumn(stat dailystat.StatType) (string, error) {
	switch stat {
	case dailystat.StatStrength:
		return "strength", nil
	case dailystat.StatIntelligence:
		return "intelligence", nil
	case dailystat.StatSex:
		return "sex", nil
	case dailystat.StatVictories:
		return "victories", nil
	case dailystat.StatExperience:
		return "experience", nil
	default:
		return "", fmt.Errorf("unknown stat type: %s", stat)
	}
}
