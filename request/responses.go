package request

import (
	"github.com/kbukum/openbatch/prompt"
	"github.com/kbukum/openbatch/util"
	"github.com/kbukum/openbatch/validation"
)

// Output data a responses request may ask to include.
var includables = []string{
	"code_interpreter_call.outputs",
	"computer_call_output.output.image_url",
	"file_search_call.results",
	"message.input_image.image_url",
	"message.output_text.logprobs",
	"reasoning.encrypted_content",
}

// ResponsesRequest is a /v1/responses request body.
type ResponsesRequest struct {
	ModelID string `json:"model"`
	// Input is either a string or a []prompt.Message.
	Input  any             `json:"input,omitempty"`
	Prompt *prompt.Binding `json:"prompt,omitempty"`

	GenerationOptions

	Conversation       string           `json:"conversation,omitempty"`
	Include            []string         `json:"include,omitempty"`
	Instructions       string           `json:"instructions,omitempty"`
	MaxOutputTokens    *int             `json:"max_output_tokens,omitempty"`
	MaxToolCalls       *int             `json:"max_tool_calls,omitempty"`
	PreviousResponseID string           `json:"previous_response_id,omitempty"`
	Reasoning          *ReasoningConfig `json:"reasoning,omitempty"`
	Text               *TextConfig      `json:"text,omitempty"`
	Truncation         string           `json:"truncation,omitempty"`
}

// ReasoningConfig configures reasoning models.
type ReasoningConfig struct {
	Effort  string `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// TextConfig configures the text output of a response.
type TextConfig struct {
	Format    *TextFormat `json:"format,omitempty"`
	Verbosity string      `json:"verbosity,omitempty"`
}

// TextFormat is the output format of a response. For json_schema the name
// and schema are inlined.
type TextFormat struct {
	Type        string         `json:"type"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty"`
	Strict      bool           `json:"strict,omitempty"`
}

// NewResponses returns a responses request for model.
func NewResponses(model string) *ResponsesRequest {
	if model == "" {
		model = DefaultModel
	}
	return &ResponsesRequest{ModelID: model}
}

func (*ResponsesRequest) Kind() Kind         { return KindResponses }
func (*ResponsesRequest) Endpoint() Endpoint { return EndpointResponses }
func (r *ResponsesRequest) Model() string    { return r.ModelID }
func (*ResponsesRequest) sealed()            {}

// SetInputMessages sets the input to a conversation.
func (r *ResponsesRequest) SetInputMessages(msgs []prompt.Message) {
	r.Input = append([]prompt.Message(nil), msgs...)
}

// SetInputText sets the input to a single text.
func (r *ResponsesRequest) SetInputText(text string) { r.Input = text }

// SetPrompt references a stored prompt.
func (r *ResponsesRequest) SetPrompt(b prompt.Binding) { r.Prompt = &b }

// SetOutputSchema requests structured output conforming to s.
func (r *ResponsesRequest) SetOutputSchema(s OutputSchema) {
	if r.Text == nil {
		r.Text = &TextConfig{}
	}
	r.Text.Format = &TextFormat{
		Type:        "json_schema",
		Name:        s.Name,
		Description: s.Description,
		Schema:      s.Schema,
		Strict:      s.Strict,
	}
}

// SetOutputType derives a strict schema from v and attaches it.
func (r *ResponsesRequest) SetOutputType(v any) error {
	s, err := SchemaFor(v)
	if err != nil {
		return err
	}
	r.SetOutputSchema(s)
	return nil
}

func (r *ResponsesRequest) ValidateFields() error {
	v := validation.New()
	v.Required("model", r.ModelID)
	r.GenerationOptions.check(v)
	v.Positive("max_output_tokens", r.MaxOutputTokens).
		Positive("max_tool_calls", r.MaxToolCalls).
		OneOf("truncation", r.Truncation, []string{"auto", "disabled"})
	if r.Reasoning != nil {
		v.OneOf("reasoning.effort", r.Reasoning.Effort, reasoningEfforts).
			OneOf("reasoning.summary", r.Reasoning.Summary, []string{"auto", "concise", "detailed"})
	}
	for _, inc := range r.Include {
		v.Custom(util.Contains(includables, inc), "include", "unsupported value "+inc)
	}
	if t := r.Text; t != nil {
		v.OneOf("text.verbosity", t.Verbosity, verbosities)
		if t.Format != nil {
			v.OneOf("text.format.type", t.Format.Type, []string{"text", "json_object", "json_schema"})
			if t.Format.Type == "json_schema" {
				v.Required("text.format.name", t.Format.Name)
			}
		}
	}
	if r.Prompt != nil {
		v.Required("prompt.id", r.Prompt.ID)
	}
	if msgs, ok := r.Input.([]prompt.Message); ok {
		checkMessages(v, "input", msgs)
	}
	return v.Err()
}

func (r *ResponsesRequest) Validate() error {
	if err := r.ValidateFields(); err != nil {
		return err
	}
	return validation.New().
		Custom(!isEmptyInput(r.Input) || r.Prompt != nil, "input", "input or prompt is required for "+string(EndpointResponses)).
		Err()
}

func (r *ResponsesRequest) Clone() Request {
	c := *r
	if msgs, ok := r.Input.([]prompt.Message); ok {
		c.Input = append([]prompt.Message(nil), msgs...)
	}
	if r.Prompt != nil {
		p := *r.Prompt
		c.Prompt = &p
	}
	c.GenerationOptions = r.GenerationOptions.clone()
	c.Include = append([]string(nil), r.Include...)
	c.MaxOutputTokens = util.Clone(r.MaxOutputTokens)
	c.MaxToolCalls = util.Clone(r.MaxToolCalls)
	c.Reasoning = util.Clone(r.Reasoning)
	if r.Text != nil {
		t := *r.Text
		t.Format = util.Clone(r.Text.Format)
		c.Text = &t
	}
	return &c
}
