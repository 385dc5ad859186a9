package testutil

import (
	"context"
	"sync"
)

// Emission is one room event captured by Recorder.
type Emission struct {
	Room    string
	Event   string
	Payload any
}

// Recorder is a realtime.Broadcaster that keeps every emission. When Err is
// set every emit fails with it after being recorded.
type Recorder struct {
	mu        sync.Mutex
	emissions []Emission
	Err       error
}

func (r *Recorder) EmitToRoom(_ context.Context, room, event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emissions = append(r.emissions, Emission{Room: room, Event: event, Payload: payload})
	return r.Err
}

// Emissions returns a copy of everything recorded so far.
func (r *Recorder) Emissions() []Emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emission(nil), r.emissions...)
}

// Rooms returns the rooms that received event.
func (r *Recorder) Rooms(event string) []string {
	var rooms []string
	for _, e := range r.Emissions() {
		if e.Event == event {
			rooms = append(rooms, e.Room)
		}
	}
	return rooms
}

// Reset forgets all emissions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.emissions = nil
	r.mu.Unlock()
}
