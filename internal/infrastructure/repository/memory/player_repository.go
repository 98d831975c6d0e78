package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
	seq     map[string]int
	nextSeq int
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{
		players: make(map[string]player.Player),
		seq:     make(map[string]int),
	}
}

func (r *PlayerRepository) GetByID(_ context.Context, id string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	return p, ok, nil
}

func (r *PlayerRepository) GetByProfileID(_ context.Context, profileID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if profileID == "" {
		return player.Player{}, false, nil
	}

	var (
		found    player.Player
		foundSeq int
		ok       bool
	)
	for id, p := range r.players {
		if p.ProfileID != profileID {
			continue
		}
		if !ok || r.seq[id] < foundSeq {
			found = p
			foundSeq = r.seq[id]
			ok = true
		}
	}
	return found, ok, nil
}

func (r *PlayerRepository) ListByName(_ context.Context, name string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := player.NormalizeName(name)
	out := make([]player.Player, 0)
	for _, p := range r.players {
		if player.NormalizeName(p.Name) == key {
			out = append(out, p)
		}
	}
	r.sortBySeq(out)
	return out, nil
}

func (r *PlayerRepository) ListAll(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	r.sortBySeq(out)
	return out, nil
}

func (r *PlayerRepository) Create(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players[item.ID] = item
	r.nextSeq++
	r.seq[item.ID] = r.nextSeq
	return nil
}

func (r *PlayerRepository) SetProfileID(_ context.Context, id, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return nil
	}
	p.ProfileID = profileID
	r.players[id] = p
	return nil
}

func (r *PlayerRepository) Rename(_ context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return nil
	}
	p.Name = name
	r.players[id] = p
	return nil
}

func (r *PlayerRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.players, id)
	delete(r.seq, id)
	return nil
}

// sortBySeq orders by insertion so "oldest first" survives equal timestamps.
func (r *PlayerRepository) sortBySeq(items []player.Player) {
	sort.SliceStable(items, func(i, j int) bool {
		return r.seq[items[i].ID] < r.seq[items[j].ID]
	})
}
