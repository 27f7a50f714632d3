// Package session holds the state of one open editing session: a layout,
// its undo history and whether it has unsaved changes.
//
// A session is bound to a layout name in a [store.Store]. Every edit goes
// through [Session.Execute] so that it lands on the history and marks the
// session dirty; [Session.Save] writes it back and clears the flag.
//
//	sess, err := session.Open(ctx, st, "crypt", command.DefaultHistoryLimit)
//	if err != nil {
//	    return err
//	}
//	sess.Execute(command.NewAddCell(sess.Layout(), dungeon.NewCell(7), "Root/Wing1"))
//	sess.Undo()
//	if sess.Dirty() {
//	    err = sess.Save(ctx, st)
//	}
//
// Sessions are not safe for concurrent use.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/command"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
	"github.com/matzehuels/dungeonbuilder/pkg/store"
)

// Session is one editing session on a named layout.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	layout  *dungeon.Layout
	history *command.History
	dirty   bool
}

// New starts a session on an empty layout. The session is dirty until saved,
// since nothing has been stored under name yet.
func New(name string, historyLimit int) (*Session, error) {
	if err := errs.ValidateLayoutName(name); err != nil {
		return nil, err
	}
	s := newSession(name, dungeon.New(), historyLimit)
	s.dirty = true
	return s, nil
}

// Open loads name from st and starts a clean session on it.
func Open(ctx context.Context, st store.Store, name string, historyLimit int) (*Session, error) {
	l, err := store.LoadLayout(ctx, st, name)
	if err != nil {
		return nil, err
	}
	return newSession(name, l, historyLimit), nil
}

// OpenOrNew is Open, falling back to New when name is not stored yet.
func OpenOrNew(ctx context.Context, st store.Store, name string, historyLimit int) (*Session, error) {
	s, err := Open(ctx, st, name, historyLimit)
	if errs.Is(err, errs.ErrCodeLayoutNotFound) {
		return New(name, historyLimit)
	}
	return s, err
}

func newSession(name string, l *dungeon.Layout, historyLimit int) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
		layout:    l,
		history:   command.NewHistory(historyLimit),
	}
}

// Layout returns the layout being edited.
func (s *Session) Layout() *dungeon.Layout { return s.layout }

// History returns the session's undo history.
func (s *Session) History() *command.History { return s.history }

// Dirty reports whether there are changes not yet saved.
func (s *Session) Dirty() bool { return s.dirty }

// Execute runs cmd through the history.
func (s *Session) Execute(cmd command.Command) {
	s.history.Execute(cmd)
	s.dirty = true
}

// Undo reverts the most recent command. It returns false when there is
// nothing to undo.
func (s *Session) Undo() bool {
	if !s.history.Undo() {
		return false
	}
	s.dirty = true
	return true
}

// Redo re-applies the most recently undone command.
func (s *Session) Redo() bool {
	if !s.history.Redo() {
		return false
	}
	s.dirty = true
	return true
}

// Save writes the layout to st under the session name. History is kept, so
// edits can still be undone after a save.
func (s *Session) Save(ctx context.Context, st store.Store) error {
	if err := store.SaveLayout(ctx, st, s.Name, s.layout); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Reload discards unsaved changes and the history, re-reading the layout
// from st.
func (s *Session) Reload(ctx context.Context, st store.Store) error {
	l, err := store.LoadLayout(ctx, st, s.Name)
	if err != nil {
		return err
	}
	s.layout = l
	s.history.Clear()
	s.dirty = false
	return nil
}
