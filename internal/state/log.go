package state

// Log is the ordered record of actions plus the cursor separating the active
// prefix [0, cursor) from the redo tail [cursor, len).
//
// A Log is owned by a single event loop and is not safe for concurrent use.
type Log struct {
	actions []Action
	cursor  int
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append discards the redo tail, places a at the cursor and returns the new
// cursor.
func (l *Log) Append(a Action) int {
	l.actions = append(l.actions[:l.cursor], a)
	l.cursor++
	return l.cursor
}

// Insert places a at the cursor while keeping the redo tail after it, and
// returns the new cursor.
func (l *Log) Insert(a Action) int {
	l.actions = append(l.actions, Action{})
	copy(l.actions[l.cursor+1:], l.actions[l.cursor:])
	l.actions[l.cursor] = a
	l.cursor++
	return l.cursor
}

// Undo moves the cursor back by one. It returns false at the start of the log.
func (l *Log) Undo() bool {
	if l.cursor == 0 {
		return false
	}
	l.cursor--
	return true
}

// Redo moves the cursor forward by one. It returns false when there is no
// redo tail.
func (l *Log) Redo() bool {
	if l.cursor == len(l.actions) {
		return false
	}
	l.cursor++
	return true
}

// Active returns a copy of the active prefix.
func (l *Log) Active() []Action {
	out := make([]Action, l.cursor)
	copy(out, l.actions[:l.cursor])
	return out
}

// All returns a copy of every stored action including the redo tail.
func (l *Log) All() []Action {
	out := make([]Action, len(l.actions))
	copy(out, l.actions)
	return out
}

// Reset replaces the log content with actions, all of them active.
func (l *Log) Reset(actions []Action) {
	l.actions = make([]Action, len(actions))
	copy(l.actions, actions)
	l.cursor = len(l.actions)
}

func (l *Log) Len() int    { return len(l.actions) }
func (l *Log) Cursor() int { return l.cursor }

// CanUndo and CanRedo report whether the matching operation would change the
// cursor.
func (l *Log) CanUndo() bool { return l.cursor > 0 }
func (l *Log) CanRedo() bool { return l.cursor < len(l.actions) }
