package request

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/kbukum/openbatch/util"
	"github.com/kbukum/openbatch/validation"
)

// EmbeddingsRequest is a /v1/embeddings request body.
type EmbeddingsRequest struct {
	ModelID string `json:"model"`
	// Input is either a string or a []string.
	Input          any    `json:"input,omitempty"`
	Dimensions     *int   `json:"dimensions,omitempty"`
	EncodingFormat string `json:"encoding_format,omitempty"`
	User           string `json:"user,omitempty"`
}

// NewEmbeddings returns an embeddings request for model.
func NewEmbeddings(model string) *EmbeddingsRequest {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &EmbeddingsRequest{ModelID: model}
}

func (*EmbeddingsRequest) Kind() Kind         { return KindEmbeddings }
func (*EmbeddingsRequest) Endpoint() Endpoint { return EndpointEmbeddings }
func (r *EmbeddingsRequest) Model() string    { return r.ModelID }
func (*EmbeddingsRequest) sealed()            {}

// SetInput sets the texts to embed. A single text is sent as a string.
func (r *EmbeddingsRequest) SetInput(inputs []string) {
	if len(inputs) == 1 {
		r.Input = inputs[0]
		return
	}
	r.Input = append([]string(nil), inputs...)
}

func (r *EmbeddingsRequest) ValidateFields() error {
	return validation.New().
		Required("model", r.ModelID).
		IntMin("dimensions", r.Dimensions, 1).
		OneOf("encoding_format", r.EncodingFormat, []string{
			string(openai.EmbeddingEncodingFormatFloat),
			string(openai.EmbeddingEncodingFormatBase64),
		}).
		Err()
}

func (r *EmbeddingsRequest) Validate() error {
	if err := r.ValidateFields(); err != nil {
		return err
	}
	return validation.New().
		Custom(!isEmptyInput(r.Input), "input", "is required for "+string(EndpointEmbeddings)).
		Err()
}

func (r *EmbeddingsRequest) Clone() Request {
	c := *r
	if in, ok := r.Input.([]string); ok {
		c.Input = append([]string(nil), in...)
	}
	c.Dimensions = util.Clone(r.Dimensions)
	return &c
}
