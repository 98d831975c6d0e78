package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/player"
	qb "github.com/vkolarov/bgmafia-tracker/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"id",
	"name",
	"profile_id",
	"created_at",
	"updated_at",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, id string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player by id: %w", err)
	}

	return mapPlayer(row), true, nil
}

func (r *PlayerRepository) GetByProfileID(ctx context.Context, profileID string) (player.Player, bool, error) {
	if profileID == "" {
		return player.Player{}, false, nil
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Eq("profile_id", profileID)).
		OrderBy("created_at", "id").
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player by profile id query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player by profile id: %w", err)
	}

	return mapPlayer(row), true, nil
}

func (r *PlayerRepository) ListByName(ctx context.Context, name string) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Expr("LOWER(TRIM(name)) = ?", player.NormalizeName(name))).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by name query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by name: %w", err)
	}

	return mapPlayers(rows), nil
}

func (r *PlayerRepository) ListAll(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	return mapPlayers(rows), nil
}

func (r *PlayerRepository) Create(ctx context.Context, item player.Player) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validate player: %w", err)
	}

	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	insertModel := playerInsertModel{
		ID:        item.ID,
		Name:      item.Name,
		ProfileID: nullString(item.ProfileID),
		CreatedAt: createdAt,
	}

	query, args, err := qb.InsertModel("players", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) SetProfileID(ctx context.Context, id, profileID string) error {
	query, args, err := qb.Update("players").
		Set("profile_id", nullString(profileID)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player profile id query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update player profile id: %w", err)
	}
	return nil
}

func (r *PlayerRepository) Rename(ctx context.Context, id, name string) error {
	query, args, err := qb.Update("players").
		Set("name", name).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build rename player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("rename player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) Delete(ctx context.Context, id string) error {
	query, args, err := qb.DeleteFrom("players").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}

func mapPlayer(row playerTableModel) player.Player {
	return player.Player{
		ID:        row.ID,
		Name:      row.Name,
		ProfileID: stringOrEmpty(row.ProfileID),
		CreatedAt: row.CreatedAt,
	}
}

func mapPlayers(rows []playerTableModel) []player.Player {
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPlayer(row))
	}
	return out
}
