// Package command implements reversible edits of a dungeon Layout and the
// linear undo/redo history that sequences them.
//
// Every command captures the state it needs to reverse itself when it is
// constructed or first executed. Commands never return errors: applied to a
// stale or removed object they degrade to no-ops. The [History] is the only
// intended caller and guarantees that Execute and Undo strictly alternate.
package command

import (
	"github.com/matzehuels/dungeonbuilder/pkg/observability"
)

// Command is a reversible mutation.
type Command interface {
	// Execute applies the change. It is also called to redo.
	Execute()

	// Undo reverts the most recent Execute.
	Undo()

	// Name is a short human-readable label, e.g. "move cell".
	Name() string
}

// DefaultHistoryLimit is the undo depth used by editor sessions.
const DefaultHistoryLimit = 50

// History is a linear undo/redo stack owned by one editing session.
// Executing a new command after an undo discards the redo branch.
type History struct {
	undo  []Command
	redo  []Command
	limit int
}

// NewHistory creates an empty history. When limit is positive the oldest
// entries are dropped once the undo stack grows past it.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Execute runs cmd, records it for undo and clears the redo stack.
func (h *History) Execute(cmd Command) {
	cmd.Execute()
	h.Record(cmd)
}

// Record pushes a command that has already been applied, as if it had gone
// through Execute.
func (h *History) Record(cmd Command) {
	if h.limit > 0 && len(h.undo) >= h.limit {
		h.undo = h.undo[len(h.undo)-h.limit+1:]
	}
	h.undo = append(h.undo, cmd)
	h.redo = nil
	observability.History().OnExecute(cmd.Name(), len(h.undo))
}

// Undo reverts the most recent command. It returns false when there is
// nothing to undo.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	cmd.Undo()
	h.redo = append(h.redo, cmd)
	observability.History().OnUndo(cmd.Name())
	return true
}

// Redo re-executes the most recently undone command. It returns false when
// there is nothing to redo.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	cmd.Execute()
	h.undo = append(h.undo, cmd)
	observability.History().OnRedo(cmd.Name())
	return true
}

// CanUndo reports whether Undo would do anything.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoLen returns the depth of the undo stack.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns the depth of the redo stack.
func (h *History) RedoLen() int { return len(h.redo) }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// UndoNames lists undoable command names, most recent first.
func (h *History) UndoNames() []string { return names(h.undo) }

// RedoNames lists redoable command names, most recent first.
func (h *History) RedoNames() []string { return names(h.redo) }

func names(stack []Command) []string {
	out := make([]string, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, stack[i].Name())
	}
	return out
}

// Batch groups commands so they execute and undo as one history entry.
type Batch struct {
	name     string
	commands []Command
}

// NewBatch creates a batch. Commands execute in order and undo in reverse.
func NewBatch(name string, commands ...Command) *Batch {
	return &Batch{name: name, commands: commands}
}

func (b *Batch) Execute() {
	for _, c := range b.commands {
		c.Execute()
	}
}

func (b *Batch) Undo() {
	for i := len(b.commands) - 1; i >= 0; i-- {
		b.commands[i].Undo()
	}
}

func (b *Batch) Name() string { return b.name }

// Len returns the number of grouped commands.
func (b *Batch) Len() int { return len(b.commands) }
