package batch

import (
	"github.com/kbukum/openbatch/prompt"
)

// InstanceKind discriminates the input instance variants.
type InstanceKind string

const (
	InstanceTemplate  InstanceKind = "template"
	InstanceEmbedding InstanceKind = "embedding"
	InstanceMessages  InstanceKind = "messages"
)

// Instance is the per-item data combined with a common request to build one
// batch entry. It is implemented by TemplateInstance, EmbeddingInstance and
// MessagesInstance only.
type Instance interface {
	Kind() InstanceKind
	// InstanceID is the identifier custom ids are derived from.
	InstanceID() string
	// RequestCustomID is the caller-supplied custom id, or "".
	RequestCustomID() string
	// RequestOptions are the per-item overrides of the common request.
	RequestOptions() map[string]any
	sealed()
}

// TemplateInstance fills the placeholders of a prompt template, or the
// variables of a reusable prompt.
type TemplateInstance struct {
	ID       string            `json:"id" yaml:"id"`
	Values   map[string]string `json:"prompt_value_mapping" yaml:"values"`
	CustomID string            `json:"custom_id,omitempty" yaml:"custom_id,omitempty"`
	Options  map[string]any    `json:"instance_request_options,omitempty" yaml:"options,omitempty"`
}

func (TemplateInstance) Kind() InstanceKind               { return InstanceTemplate }
func (i TemplateInstance) InstanceID() string             { return i.ID }
func (i TemplateInstance) RequestCustomID() string        { return i.CustomID }
func (i TemplateInstance) RequestOptions() map[string]any { return i.Options }
func (TemplateInstance) sealed()                          {}

// EmbeddingInstance carries the raw texts of one embeddings request.
type EmbeddingInstance struct {
	ID       string         `json:"id" yaml:"id"`
	Inputs   []string       `json:"input" yaml:"input"`
	CustomID string         `json:"custom_id,omitempty" yaml:"custom_id,omitempty"`
	Options  map[string]any `json:"instance_request_options,omitempty" yaml:"options,omitempty"`
}

func (EmbeddingInstance) Kind() InstanceKind               { return InstanceEmbedding }
func (i EmbeddingInstance) InstanceID() string             { return i.ID }
func (i EmbeddingInstance) RequestCustomID() string        { return i.CustomID }
func (i EmbeddingInstance) RequestOptions() map[string]any { return i.Options }
func (EmbeddingInstance) sealed()                          {}

// MessagesInstance carries a ready conversation that is sent verbatim.
type MessagesInstance struct {
	ID       string           `json:"id" yaml:"id"`
	Messages []prompt.Message `json:"messages" yaml:"messages"`
	CustomID string           `json:"custom_id,omitempty" yaml:"custom_id,omitempty"`
	Options  map[string]any   `json:"instance_request_options,omitempty" yaml:"options,omitempty"`
}

func (MessagesInstance) Kind() InstanceKind               { return InstanceMessages }
func (i MessagesInstance) InstanceID() string             { return i.ID }
func (i MessagesInstance) RequestCustomID() string        { return i.CustomID }
func (i MessagesInstance) RequestOptions() map[string]any { return i.Options }
func (MessagesInstance) sealed()                          {}

// deref turns pointer instances into their value form so switches only need
// to handle one shape.
func deref(inst Instance) Instance {
	switch p := inst.(type) {
	case *TemplateInstance:
		if p != nil {
			return *p
		}
	case *EmbeddingInstance:
		if p != nil {
			return *p
		}
	case *MessagesInstance:
		if p != nil {
			return *p
		}
	default:
		return inst
	}
	return nil
}
