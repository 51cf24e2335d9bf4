package engine

// Action is a named, non-printable engine command.
type Action uint8

const (
	ActionSpace Action = iota + 1
	ActionTab
	ActionBackspace
	ActionDelete
	ActionEnter
	ActionEsc
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionHome
	ActionEnd
	ActionPageUp
	ActionPageDown
	ActionShiftSpace
	ActionShiftLeft
	ActionShiftRight
)

var actionNames = map[Action]string{
	ActionSpace:      "Space",
	ActionTab:        "Tab",
	ActionBackspace:  "Backspace",
	ActionDelete:     "Delete",
	ActionEnter:      "Enter",
	ActionEsc:        "Esc",
	ActionUp:         "Up",
	ActionDown:       "Down",
	ActionLeft:       "Left",
	ActionRight:      "Right",
	ActionHome:       "Home",
	ActionEnd:        "End",
	ActionPageUp:     "PageUp",
	ActionPageDown:   "PageDown",
	ActionShiftSpace: "ShiftSpace",
	ActionShiftLeft:  "ShiftLeft",
	ActionShiftRight: "ShiftRight",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "Unknown"
}

// IsEdit reports whether the action deletes buffer content.
func (a Action) IsEdit() bool {
	return a == ActionBackspace || a == ActionDelete
}
