package favorites

import (
	"context"
	"sync"

	"github.com/spacesedan/paperboy/internal/models"
)

// Memory is a process-local Persistence. Nothing survives a restart.
type Memory struct {
	mu    sync.Mutex
	order []string
	byID  map[string]models.Favorite
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]models.Favorite)}
}

func (m *Memory) Insert(ctx context.Context, fav models.Favorite) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[fav.ID]; ok {
		return nil
	}
	m.byID[fav.ID] = fav
	m.order = append(m.order, fav.ID)
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return nil
	}
	delete(m.byID, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) All(ctx context.Context) ([]models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Favorite, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}
