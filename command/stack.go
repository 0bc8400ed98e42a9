// Package command is the editor's linear undo history and the reversible
// edits that go on it.
package command

// Command is one reversible edit. Redo applies the after state, Undo the
// before state.
type Command interface {
	Redo()
	Undo()
	Text() string
}

// DefaultLimit is the number of commands kept when no limit is configured.
const DefaultLimit = 100

// Stack is a linear history with a cursor. Commands below the cursor are
// done, commands at or above it are undone.
type Stack struct {
	commands []Command
	index    int
	// clean is the index the document was last saved at, -1 once that
	// point has been pruned or evicted.
	clean int
	limit int

	OnIndexChanged func(index int)
	OnCleanChanged func(clean bool)
}

// NewStack returns an empty, clean stack. A limit of zero keeps every
// command.
func NewStack(limit int) *Stack {
	if limit < 0 {
		limit = 0
	}
	return &Stack{limit: limit}
}

// Push executes c and records it. Undone commands are discarded first and
// the oldest command is evicted when the limit is exceeded.
func (s *Stack) Push(c Command) {
	wasClean := s.IsClean()
	c.Redo()

	if s.index < len(s.commands) {
		s.commands = s.commands[:s.index]
		if s.clean > s.index {
			s.clean = -1
		}
	}
	s.commands = append(s.commands, c)
	s.index++
	s.evict()

	s.indexChanged()
	s.cleanChanged(wasClean)
}

func (s *Stack) evict() {
	if s.limit <= 0 || len(s.commands) <= s.limit {
		return
	}
	n := len(s.commands) - s.limit
	if n > s.index {
		n = s.index
	}
	// drop oldest
	s.commands = s.commands[n:]
	s.index -= n
	if s.clean >= 0 {
		s.clean -= n
		if s.clean < 0 {
			s.clean = -1
		}
	}
}

// Undo reverts the command before the cursor. It is a no-op at the start.
func (s *Stack) Undo() bool {
	if s.index == 0 {
		return false
	}
	wasClean := s.IsClean()
	s.index--
	s.commands[s.index].Undo()
	s.indexChanged()
	s.cleanChanged(wasClean)
	return true
}

// Redo reapplies the command at the cursor. It is a no-op at the end.
func (s *Stack) Redo() bool {
	if s.index >= len(s.commands) {
		return false
	}
	wasClean := s.IsClean()
	s.commands[s.index].Redo()
	s.index++
	s.indexChanged()
	s.cleanChanged(wasClean)
	return true
}

func (s *Stack) CanUndo() bool { return s.index > 0 }
func (s *Stack) CanRedo() bool { return s.index < len(s.commands) }

// UndoText is the label of the command Undo would revert.
func (s *Stack) UndoText() string {
	if !s.CanUndo() {
		return ""
	}
	return s.commands[s.index-1].Text()
}

// RedoText is the label of the command Redo would apply.
func (s *Stack) RedoText() string {
	if !s.CanRedo() {
		return ""
	}
	return s.commands[s.index].Text()
}

func (s *Stack) Index() int { return s.index }
func (s *Stack) Count() int { return len(s.commands) }
func (s *Stack) Limit() int { return s.limit }

// SetLimit changes the capacity, evicting the oldest done commands if the
// stack is over the new limit.
func (s *Stack) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	s.limit = limit
	before := s.index
	s.evict()
	if s.index != before {
		s.indexChanged()
	}
}

// Clear drops every command and marks the stack clean.
func (s *Stack) Clear() {
	wasClean := s.IsClean()
	s.commands = nil
	s.index = 0
	s.clean = 0
	s.indexChanged()
	s.cleanChanged(wasClean)
}

// SetClean marks the current cursor as the saved state.
func (s *Stack) SetClean() {
	wasClean := s.IsClean()
	s.clean = s.index
	s.cleanChanged(wasClean)
}

func (s *Stack) IsClean() bool { return s.clean == s.index }

// Texts returns every label, oldest first.
func (s *Stack) Texts() []string {
	out := make([]string, len(s.commands))
	for i, c := range s.commands {
		out[i] = c.Text()
	}
	return out
}

func (s *Stack) indexChanged() {
	if s.OnIndexChanged != nil {
		s.OnIndexChanged(s.index)
	}
}

func (s *Stack) cleanChanged(was bool) {
	if now := s.IsClean(); now != was && s.OnCleanChanged != nil {
		s.OnCleanChanged(now)
	}
}
