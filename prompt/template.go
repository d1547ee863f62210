package prompt

import (
	"fmt"
	"sort"

	"github.com/kbukum/openbatch/errors"
	"github.com/kbukum/openbatch/util"
)

// SourceKind discriminates the prompt source variants.
type SourceKind string

const (
	SourceTemplate SourceKind = "template"
	SourceReusable SourceKind = "reusable_prompt"
)

// Source is a prompt a template instance can be bound to. It is implemented
// only by Template and ReusablePrompt.
type Source interface {
	Kind() SourceKind
	sealed()
}

// Template is an ordered list of messages whose contents may reference
// {name} placeholders. A Template is immutable once built.
type Template struct {
	name     string
	messages []Message
}

// NewTemplate builds a template from msgs. The slice is copied.
func NewTemplate(msgs ...Message) Template {
	return Template{messages: append([]Message(nil), msgs...)}
}

// NewNamedTemplate is NewTemplate with a name used in logs and errors.
func NewNamedTemplate(name string, msgs ...Message) Template {
	t := NewTemplate(msgs...)
	t.name = name
	return t
}

// Kind implements Source.
func (Template) Kind() SourceKind { return SourceTemplate }
func (Template) sealed()          {}

// Name returns the template name, possibly empty.
func (t Template) Name() string { return t.name }

// Messages returns a copy of the template messages.
func (t Template) Messages() []Message {
	return append([]Message(nil), t.messages...)
}

// Len returns the number of messages.
func (t Template) Len() int { return len(t.messages) }

// Validate checks the template has at least one message and only known roles.
func (t Template) Validate() error {
	if len(t.messages) == 0 {
		return errors.InvalidInput("messages", "template has no messages")
	}
	for i, m := range t.messages {
		if err := m.Validate(); err != nil {
			return errors.InvalidInput("messages", fmt.Sprintf("message %d: %v", i, err))
		}
	}
	return nil
}

// Placeholders returns every placeholder referenced by any message, in
// first-use order.
func (t Template) Placeholders() []string {
	var names []string
	for _, m := range t.messages {
		names = append(names, Placeholders(m.Content)...)
	}
	return util.Unique(names)
}

// Formatted is a rendered template.
type Formatted struct {
	Messages []Message
	// Unused lists mapping keys no message referenced, sorted.
	Unused []string
}

// Format renders every message against values, preserving order and roles.
// Missing placeholders across all messages are reported together.
func (t Template) Format(values map[string]string) (Formatted, error) {
	out := make([]Message, len(t.messages))
	used := make(map[string]struct{})
	var missing []string

	for i, m := range t.messages {
		for _, name := range Placeholders(m.Content) {
			used[name] = struct{}{}
			if _, ok := values[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			continue
		}
		r, err := Render(m.Content, values)
		if err != nil {
			return Formatted{}, err
		}
		out[i] = Message{Role: m.Role, Content: r.Text}
	}
	if len(missing) > 0 {
		return Formatted{}, errors.MissingPlaceholder(missing)
	}
	return Formatted{Messages: out, Unused: unused(values, used)}, nil
}

// ReusablePrompt references a prompt stored by the remote service. Variables
// is the set of input variables the stored prompt expects.
type ReusablePrompt struct {
	ID        string   `json:"id" yaml:"id"`
	Version   string   `json:"version,omitempty" yaml:"version,omitempty"`
	Variables []string `json:"-" yaml:"variables,omitempty"`
}

// Kind implements Source.
func (ReusablePrompt) Kind() SourceKind { return SourceReusable }
func (ReusablePrompt) sealed()          {}

// Binding is a ReusablePrompt bound to concrete variable values. It is the
// object placed in a request body's "prompt" slot.
type Binding struct {
	ID        string            `json:"id"`
	Version   string            `json:"version,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
	Unused    []string          `json:"-"`
}

// Bind checks values covers every declared variable and returns the binding.
// Keys not declared in Variables are reported as unused and left out of the
// binding. With no declared variables every key is passed through.
func (p ReusablePrompt) Bind(values map[string]string) (Binding, error) {
	if p.ID == "" {
		return Binding{}, errors.MissingField("prompt.id")
	}
	b := Binding{ID: p.ID, Version: p.Version}
	if len(p.Variables) == 0 {
		if len(values) > 0 {
			b.Variables = make(map[string]string, len(values))
			for k, v := range values {
				b.Variables[k] = v
			}
		}
		return b, nil
	}

	var missing []string
	declared := make(map[string]struct{}, len(p.Variables))
	b.Variables = make(map[string]string, len(p.Variables))
	for _, name := range p.Variables {
		declared[name] = struct{}{}
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		b.Variables[name] = v
	}
	if len(missing) > 0 {
		return Binding{}, errors.MissingPlaceholder(missing)
	}
	for k := range values {
		if _, ok := declared[k]; !ok {
			b.Unused = append(b.Unused, k)
		}
	}
	sort.Strings(b.Unused)
	return b, nil
}
