// Package script reads YAML action scripts and replays them against an edit
// session. A script names a starting text, an optional starting selection
// and a list of actions:
//
//	text: "hello"
//	selection: {start: 5, end: 5}
//	actions:
//	  - insert: " world"
//	  - move: left_word
//	  - click: {offset: 3, shift: true}
//	  - backspace
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/textstate/internal/edit"
	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/session"
	"github.com/zjrosen/textstate/internal/text"
)

var (
	// ErrUnknownAction is returned for action names the parser does not know.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidMovement is returned for movement names that do not parse.
	ErrInvalidMovement = errors.New("invalid movement")
)

// Script is a parsed action script.
type Script struct {
	Text      string         `yaml:"text"`
	Selection *SelectionSpec `yaml:"selection,omitempty"`
	Actions   []Step         `yaml:"actions"`
}

// SelectionSpec is the starting selection. Start is the anchor.
type SelectionSpec struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Step is one scripted action.
type Step struct {
	Action edit.Action
	Line   int
}

// Parse decodes a script from YAML.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug(log.CatScript, "loaded script", "path", path, "actions", len(s.Actions))
	return s, nil
}

// Session creates a session holding the script's starting text and selection.
func (s *Script) Session(opts ...session.Option) (*session.Session, error) {
	sess := session.New(s.Text, opts...)
	if s.Selection != nil {
		if err := sess.SetSelection(text.NewSelection(s.Selection.Start, s.Selection.End)); err != nil {
			sess.Close()
			return nil, fmt.Errorf("starting selection: %w", err)
		}
	}
	return sess, nil
}

// ActionList returns the scripted actions in order.
func (s *Script) ActionList() []edit.Action {
	actions := make([]edit.Action, len(s.Actions))
	for i, step := range s.Actions {
		actions[i] = step.Action
	}
	return actions
}

// Run applies every scripted action to sess and reports the outcome.
func (s *Script) Run(ctx context.Context, sess *session.Session) (*Result, error) {
	res := &Result{Initial: sess.Snapshot().Text}
	for _, step := range s.Actions {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("line %d: %w", step.Line, err)
		}
		snap := sess.Apply(ctx, step.Action)
		res.Steps = append(res.Steps, snap)
		if len(snap.Rejected) > 0 {
			log.Debug(log.CatScript, "caret rejected during replay", "line", step.Line, "offsets", snap.Rejected)
		}
	}
	res.Final = sess.Snapshot()
	return res, nil
}

// UnmarshalYAML accepts either a bare action name or a single-key mapping
// from action name to argument.
func (st *Step) UnmarshalYAML(node *yaml.Node) error {
	st.Line = node.Line

	switch node.Kind {
	case yaml.ScalarNode:
		a, err := bareAction(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		st.Action = a
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: action must have exactly one key", node.Line)
		}
		a, err := argAction(node.Content[0].Value, node.Content[1])
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		st.Action = a
		return nil
	default:
		return fmt.Errorf("line %d: action must be a name or a mapping", node.Line)
	}
}

func bareAction(name string) (edit.Action, error) {
	switch name {
	case "backspace":
		return edit.Backspace{}, nil
	case "delete":
		return edit.Delete{}, nil
	case "select_all":
		return edit.SelectAll{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}

type clickArgs struct {
	Offset int  `yaml:"offset"`
	Shift  bool `yaml:"shift"`
}

func argAction(name string, arg *yaml.Node) (edit.Action, error) {
	switch name {
	case "insert", "paste":
		var s string
		if err := arg.Decode(&s); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if name == "paste" {
			return edit.Paste{Text: s}, nil
		}
		return edit.Insert{Text: s}, nil

	case "move", "modify", "jump_backspace", "jump_delete":
		m, err := text.ParseMovement(arg.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", name, ErrInvalidMovement, err)
		}
		switch name {
		case "move":
			return edit.Move{Movement: m}, nil
		case "modify":
			return edit.ModifySelection{Movement: m}, nil
		case "jump_backspace":
			return edit.JumpBackspace{Movement: m}, nil
		default:
			return edit.JumpDelete{Movement: m}, nil
		}

	case "click":
		var c clickArgs
		if arg.Kind == yaml.ScalarNode {
			if err := arg.Decode(&c.Offset); err != nil {
				return nil, fmt.Errorf("click: %w", err)
			}
		} else if err := arg.Decode(&c); err != nil {
			return nil, fmt.Errorf("click: %w", err)
		}
		var mods edit.Modifiers
		if c.Shift {
			mods |= edit.ModShift
		}
		return edit.Click{Offset: c.Offset, Mods: mods}, nil

	case "drag":
		var offset int
		if err := arg.Decode(&offset); err != nil {
			return nil, fmt.Errorf("drag: %w", err)
		}
		return edit.Drag{Offset: offset}, nil

	default:
		if _, err := bareAction(name); err == nil {
			return nil, fmt.Errorf("%s takes no argument", name)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}
