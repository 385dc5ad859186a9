package store

import "context"

// NopCounterStore always misses. It is used when no Redis address is
// configured, so every count is read from the database.
type NopCounterStore struct{}

func (NopCounterStore) Get(context.Context, CounterKey) (int64, bool, error) { return 0, false, nil }
func (NopCounterStore) Version(context.Context, CounterKey) (int64, error)   { return 0, nil }
func (NopCounterStore) CondIncr(context.Context, CounterKey) error           { return nil }
func (NopCounterStore) CondDecr(context.Context, CounterKey) error           { return nil }
func (NopCounterStore) Delete(context.Context, CounterKey) error             { return nil }
func (NopCounterStore) RecordAccess(context.Context, CounterKey) error       { return nil }
func (NopCounterStore) ResetHotKeyScores(context.Context) error              { return nil }
func (NopCounterStore) Close() error                                         { return nil }

func (NopCounterStore) Fill(context.Context, CounterKey, int64, int64) (bool, error) {
	return false, nil
}

func (NopCounterStore) GetTopHotKeys(context.Context, int64) ([]CounterKey, error) {
	return nil, nil
}

var _ CounterStore = NopCounterStore{}
