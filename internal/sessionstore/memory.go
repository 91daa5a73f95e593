package sessionstore

import (
	"context"
	"strings"
	"sync"
)

// Memory is the in-process fallback used when no REDIS_URL is configured.
// Records do not survive a restart.
type Memory struct {
	mu     sync.RWMutex
	byGame map[string]Record
	byCode map[string]string
}

func NewMemory() *Memory {
	return &Memory{byGame: make(map[string]Record), byCode: make(map[string]string)}
}

func (m *Memory) Save(ctx context.Context, rec Record) error {
	if err := normalize(&rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byGame[rec.GameID] = rec
	if rec.Code != "" {
		m.byCode[strings.ToUpper(rec.Code)] = rec.GameID
	}
	return nil
}

func (m *Memory) Load(ctx context.Context, gameID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byGame[strings.TrimSpace(gameID)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) LoadByCode(ctx context.Context, code string) (*Record, error) {
	m.mu.RLock()
	gameID, ok := m.byCode[strings.ToUpper(strings.TrimSpace(code))]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return m.Load(ctx, gameID)
}

func (m *Memory) Delete(ctx context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byGame[gameID]
	if !ok {
		return nil
	}
	delete(m.byGame, gameID)
	if rec.Code != "" {
		delete(m.byCode, strings.ToUpper(rec.Code))
	}
	return nil
}

func (m *Memory) Close() error { return nil }
