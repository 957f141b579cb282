package logging

import (
	"log/slog"
	"strings"
)

// DefaultPlaceholder is replaced by the container name in policy templates.
const DefaultPlaceholder = "{ServiceName}"

// Action identifies a container operation.
type Action int

const (
	ActionAdd Action = iota
	ActionRemove
	ActionGet
	ActionAny
	// ActionCount is never logged.
	ActionCount
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionGet:
		return "get"
	case ActionAny:
		return "any"
	case ActionCount:
		return "count"
	default:
		return "unknown"
	}
}

// Outcome is the result dimension of a policy lookup.
type Outcome int

const (
	Success Outcome = iota
	Failure
)

// OutcomeOf maps an operation result onto an Outcome.
func OutcomeOf(ok bool) Outcome {
	if ok {
		return Success
	}
	return Failure
}

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Message is a template plus the level it is emitted at.
type Message struct {
	Template string     `config:"template"`
	Level    slog.Level `config:"level"`
}

// ActionMessages holds both outcomes for one action.
type ActionMessages struct {
	Success Message `config:"success"`
	Failure Message `config:"failure"`
}

// Policy is the per-action, per-outcome message table a container consults
// before emitting a log event. Policy values are plain data and safe to copy.
type Policy struct {
	Add    ActionMessages `config:"add"`
	Remove ActionMessages `config:"remove"`
	Get    ActionMessages `config:"get"`
	Any    ActionMessages `config:"any"`

	IncludeName bool   `config:"includeName"`
	Placeholder string `config:"placeholder" validate:"required_if=IncludeName true"`
}

// DefaultPolicy returns a policy with every action/outcome pair populated.
func DefaultPolicy() Policy {
	return Policy{
		Add: ActionMessages{
			Success: Message{Template: DefaultPlaceholder + " was create", Level: slog.LevelInfo},
			Failure: Message{Template: DefaultPlaceholder + " wasn't create", Level: slog.LevelError},
		},
		Remove: ActionMessages{
			Success: Message{Template: DefaultPlaceholder + " was remove", Level: slog.LevelWarn},
			Failure: Message{Template: DefaultPlaceholder + " wasn't remove", Level: slog.LevelError},
		},
		Get: ActionMessages{
			Success: Message{Template: DefaultPlaceholder + " was obtain", Level: slog.LevelInfo},
			Failure: Message{Template: DefaultPlaceholder + " wasn't obtain", Level: slog.LevelError},
		},
		Any: ActionMessages{
			Success: Message{Template: DefaultPlaceholder + " is registered", Level: slog.LevelInfo},
			Failure: Message{Template: DefaultPlaceholder + " isn't registered", Level: slog.LevelError},
		},
		IncludeName: true,
		Placeholder: DefaultPlaceholder,
	}
}

// Resolve looks up the message for an action and outcome. It reports false for
// actions that carry no message (ActionCount and unknown values).
func (p Policy) Resolve(a Action, o Outcome) (Message, bool) {
	var am ActionMessages
	switch a {
	case ActionAdd:
		am = p.Add
	case ActionRemove:
		am = p.Remove
	case ActionGet:
		am = p.Get
	case ActionAny:
		am = p.Any
	default:
		return Message{}, false
	}
	if o == Success {
		return am.Success, true
	}
	return am.Failure, true
}

// Format substitutes name for the placeholder when IncludeName is set.
func (p Policy) Format(template, name string) string {
	if !p.IncludeName || p.Placeholder == "" {
		return template
	}
	return strings.ReplaceAll(template, p.Placeholder, name)
}
