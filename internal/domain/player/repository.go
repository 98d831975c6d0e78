package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Player, bool, error)
	GetByProfileID(ctx context.Context, profileID string) (Player, bool, error)
	// ListByName returns players whose normalized name matches, oldest first.
	ListByName(ctx context.Context, name string) ([]Player, error)
	ListAll(ctx context.Context) ([]Player, error)
	Create(ctx context.Context, item Player) error
	SetProfileID(ctx context.Context, id, profileID string) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}
