package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// NoteWriter persists the team note.
type NoteWriter interface {
	UpsertNote(ctx context.Context, teamID, text, author string) error
}

type pendingNote struct {
	text   string
	author string
	timer  *time.Timer
}

// NoteDebouncer delays note writes so that typing produces one write per pause.
type NoteDebouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	writer  NoteWriter
	pending map[string]*pendingNote
}

func NewNoteDebouncer(writer NoteWriter, delay time.Duration) *NoteDebouncer {
	if delay <= 0 {
		delay = time.Second
	}
	return &NoteDebouncer{
		delay:   delay,
		writer:  writer,
		pending: make(map[string]*pendingNote),
	}
}

// Schedule replaces the pending note of the team and restarts its timer.
func (d *NoteDebouncer) Schedule(teamID, author, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[teamID]; ok {
		prev.timer.Stop()
	}
	note := &pendingNote{text: text, author: author}
	note.timer = time.AfterFunc(d.delay, func() { d.fire(teamID, note) })
	d.pending[teamID] = note
}

// Pending returns the note text not yet written for the team.
func (d *NoteDebouncer) Pending(teamID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	note, ok := d.pending[teamID]
	if !ok {
		return "", false
	}
	return note.text, true
}

func (d *NoteDebouncer) fire(teamID string, note *pendingNote) {
	d.mu.Lock()
	if d.pending[teamID] != note {
		d.mu.Unlock()
		return
	}
	delete(d.pending, teamID)
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.writer.UpsertNote(ctx, teamID, note.text, note.author); err != nil {
		log.Error().Err(err).Str("team_id", teamID).Msg("notes: failed to save note")
	}
}

// Flush writes every pending note now. Used on shutdown.
func (d *NoteDebouncer) Flush(ctx context.Context) error {
	d.mu.Lock()
	notes := d.pending
	d.pending = make(map[string]*pendingNote)
	d.mu.Unlock()

	var firstErr error
	for teamID, note := range notes {
		note.timer.Stop()
		if err := d.writer.UpsertNote(ctx, teamID, note.text, note.author); err != nil {
			log.Error().Err(err).Str("team_id", teamID).Msg("notes: failed to flush note")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
