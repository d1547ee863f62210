package batch

import (
	"fmt"
	"strings"

	"github.com/kbukum/openbatch/errors"
	"github.com/kbukum/openbatch/prompt"
	"github.com/kbukum/openbatch/request"
)

// Assembled is the body built for one instance.
type Assembled struct {
	Endpoint request.Endpoint
	Body     request.Request
	// Warnings are non-fatal findings, such as mapping keys no placeholder used.
	Warnings []string
}

// Assembler builds request bodies from a common request, an optional prompt
// source and per-item instances. It holds no mutable state and may be shared.
type Assembler struct {
	common request.Request
	source prompt.Source
}

// NewAssembler returns an assembler for common. source is required for
// template instances and ignored otherwise; it may be nil.
func NewAssembler(common request.Request, source prompt.Source) (*Assembler, error) {
	if common == nil {
		return nil, errors.MissingField("request")
	}
	switch s := source.(type) {
	case *prompt.Template:
		if s == nil {
			source = nil
			break
		}
		source = *s
	case *prompt.ReusablePrompt:
		if s == nil {
			source = nil
			break
		}
		source = *s
	}
	switch s := source.(type) {
	case prompt.Template:
		if err := s.Validate(); err != nil {
			return nil, err
		}
	case prompt.ReusablePrompt:
		if s.ID == "" {
			return nil, errors.MissingField("prompt.id")
		}
	}
	return &Assembler{common: common, source: source}, nil
}

// Endpoint returns the endpoint every assembled body targets.
func (a *Assembler) Endpoint() request.Endpoint { return a.common.Endpoint() }

// Assemble merges the instance options over a copy of the common request,
// injects the instance content and validates the result once.
func (a *Assembler) Assemble(inst Instance) (Assembled, error) {
	inst = deref(inst)
	if inst == nil {
		return Assembled{}, errors.MissingField("instance")
	}
	if err := a.compatible(inst); err != nil {
		return Assembled{}, err
	}

	body, err := request.Merge(a.common, inst.RequestOptions())
	if err != nil {
		return Assembled{}, err
	}

	var warnings []string
	switch in := inst.(type) {
	case TemplateInstance:
		warnings, err = a.injectTemplate(body, in)
	case EmbeddingInstance:
		body.(*request.EmbeddingsRequest).SetInput(in.Inputs)
	case MessagesInstance:
		injectMessages(body, in.Messages)
	}
	if err != nil {
		return Assembled{}, err
	}

	if err := body.Validate(); err != nil {
		return Assembled{}, err
	}
	return Assembled{Endpoint: body.Endpoint(), Body: body, Warnings: warnings}, nil
}

// compatible rejects every (request kind, instance kind, source kind)
// combination that cannot produce a body.
func (a *Assembler) compatible(inst Instance) error {
	endpoint := string(a.common.Endpoint())
	kind := string(inst.Kind())
	reqKind := a.common.Kind()

	switch inst.(type) {
	case TemplateInstance:
		switch src := a.source.(type) {
		case nil:
			return errors.IncompatibleInstance(endpoint, kind, "no prompt template or reusable prompt configured")
		case prompt.Template:
			if reqKind == request.KindEmbeddings {
				return errors.IncompatibleInstance(endpoint, kind, "embeddings take raw text input")
			}
		case prompt.ReusablePrompt:
			if reqKind != request.KindResponses {
				return errors.IncompatibleInstance(endpoint, kind,
					fmt.Sprintf("reusable prompt %q requires %s", src.ID, request.EndpointResponses))
			}
		}
	case EmbeddingInstance:
		if reqKind != request.KindEmbeddings {
			return errors.IncompatibleInstance(endpoint, kind, "embedding inputs require "+string(request.EndpointEmbeddings))
		}
	case MessagesInstance:
		if reqKind == request.KindEmbeddings {
			return errors.IncompatibleInstance(endpoint, kind, "embeddings take raw text input")
		}
	default:
		return errors.IncompatibleInstance(endpoint, kind, "unsupported instance type")
	}
	return nil
}

func (a *Assembler) injectTemplate(body request.Request, in TemplateInstance) ([]string, error) {
	switch src := a.source.(type) {
	case prompt.Template:
		out, err := src.Format(in.Values)
		if err != nil {
			return nil, err
		}
		injectMessages(body, out.Messages)
		return unusedWarning(in.ID, out.Unused), nil
	case prompt.ReusablePrompt:
		binding, err := src.Bind(in.Values)
		if err != nil {
			return nil, err
		}
		body.(*request.ResponsesRequest).SetPrompt(binding)
		return unusedWarning(in.ID, binding.Unused), nil
	}
	return nil, errors.Internal(fmt.Errorf("unhandled prompt source %T", a.source))
}

func injectMessages(body request.Request, msgs []prompt.Message) {
	switch b := body.(type) {
	case *request.ChatCompletionsRequest:
		b.SetMessages(msgs)
	case *request.ResponsesRequest:
		b.SetInputMessages(msgs)
	}
}

func unusedWarning(instanceID string, unused []string) []string {
	if len(unused) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("instance '%s': unused placeholder value(s): %s", instanceID, strings.Join(unused, ", "))}
}
