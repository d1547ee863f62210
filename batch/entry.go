package batch

import (
	"github.com/kbukum/openbatch/errors"
	"github.com/kbukum/openbatch/request"
)

// Entry is one line of a batch file.
type Entry struct {
	CustomID string           `json:"custom_id"`
	Method   string           `json:"method"`
	URL      request.Endpoint `json:"url"`
	Body     request.Request  `json:"body"`
}

// NewEntry wraps body in an entry addressed to its endpoint.
func NewEntry(customID string, body request.Request) Entry {
	e := Entry{CustomID: customID, Method: request.Method, Body: body}
	if body != nil {
		e.URL = body.Endpoint()
	}
	return e
}

// checkEnvelope validates everything but the body content.
func (e Entry) checkEnvelope() error {
	switch {
	case e.CustomID == "":
		return errors.MissingField("custom_id")
	case e.Method != request.Method:
		return errors.InvalidField("method", e.Method, "must be "+request.Method)
	case !e.URL.Known():
		return errors.InvalidField("url", string(e.URL), "unknown batch endpoint")
	case e.Body == nil:
		return errors.MissingField("body")
	case e.Body.Endpoint() != e.URL:
		return errors.InvalidField("url", string(e.URL), "body targets "+string(e.Body.Endpoint()))
	}
	return nil
}

// Validate checks the envelope and the body.
func (e Entry) Validate() error {
	if err := e.checkEnvelope(); err != nil {
		return err
	}
	return e.Body.Validate()
}
