package calc

import "fmt"

// EventKind distinguishes the five input classes.
type EventKind int

const (
	// EventDigit is a press of 0-9.
	EventDigit EventKind = iota + 1
	// EventDecimal is a press of ".".
	EventDecimal
	// EventOperator is a press of + - * /.
	EventOperator
	// EventEquals is a press of "=".
	EventEquals
	// EventClear is a press of "C".
	EventClear
)

// Button labels for the non-digit, non-operator keys.
const (
	KeyDecimal = "."
	KeyEquals  = "="
	KeyClear   = "C"
)

// Keypad lists the buttons of the calculator row by row.
var Keypad = [][]string{
	{"7", "8", "9", OpDivide},
	{"4", "5", "6", OpMultiply},
	{"1", "2", "3", OpSubtract},
	{"0", KeyDecimal, OpAdd, KeyEquals},
	{KeyClear},
}

// String returns the kind name.
func (k EventKind) String() string {
	switch k {
	case EventDigit:
		return "digit"
	case EventDecimal:
		return "decimal"
	case EventOperator:
		return "operator"
	case EventEquals:
		return "equals"
	case EventClear:
		return "clear"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one button press.
// Symbol is the digit or operator for EventDigit and EventOperator and the
// button label otherwise.
type Event struct {
	Kind   EventKind
	Symbol string
}

// Digit creates a digit press.
func Digit(d string) Event { return Event{Kind: EventDigit, Symbol: d} }

// Decimal creates a decimal point press.
func Decimal() Event { return Event{Kind: EventDecimal, Symbol: KeyDecimal} }

// Operator creates an operator press.
func Operator(op string) Event { return Event{Kind: EventOperator, Symbol: op} }

// Equals creates an "=" press.
func Equals() Event { return Event{Kind: EventEquals, Symbol: KeyEquals} }

// Clear creates a "C" press.
func Clear() Event { return Event{Kind: EventClear, Symbol: KeyClear} }

// ParseEvent maps a canonical button label to its event.
// Aliases ("x", "enter", fullwidth digits) are resolved by the keymap in
// internal/config before reaching here.
func ParseEvent(label string) (Event, error) {
	switch {
	case isDigit(label):
		return Digit(label), nil
	case label == KeyDecimal:
		return Decimal(), nil
	case IsOperator(label):
		return Operator(label), nil
	case label == KeyEquals:
		return Equals(), nil
	case label == KeyClear:
		return Clear(), nil
	default:
		return Event{}, fmt.Errorf("unknown button %q", label)
	}
}

// Apply routes ev to its handler.
// Events of unknown kind leave s unchanged.
func (e *Engine) Apply(s State, ev Event) State {
	switch ev.Kind {
	case EventDigit:
		return e.HandleDigit(ev.Symbol, s)
	case EventDecimal:
		return e.HandleDecimal(s)
	case EventOperator:
		return e.HandleOperator(ev.Symbol, s)
	case EventEquals:
		return e.CalculateResult(s)
	case EventClear:
		return e.Clear(s)
	default:
		return s
	}
}

// ApplyAll applies events in order starting from s.
func (e *Engine) ApplyAll(s State, events ...Event) State {
	for _, ev := range events {
		s = e.Apply(s, ev)
	}
	return s
}
