package verify

import (
	"slices"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kbukum/openbatch/request"
)

var (
	requiredFields = []string{"custom_id", "method", "url", "body"}
	validEndpoints = func() string {
		eps := request.KnownEndpoints()
		names := make([]string, len(eps))
		for i, e := range eps {
			names[i] = string(e)
		}
		return strings.Join(names, ", ")
	}()
)

// scan holds the state of one run across lines.
type scan struct {
	opts      Options
	res       *Result
	firstSeen map[string]int
	endpoints map[string]struct{}
}

func newScan(opts Options, res *Result) *scan {
	return &scan{
		opts:      opts,
		res:       res,
		firstSeen: make(map[string]int),
		endpoints: make(map[string]struct{}),
	}
}

// line runs every per-line check on one non-blank line. Findings are recorded
// and scanning always continues.
func (s *scan) line(n int, data []byte) {
	s.res.Stats.TotalRequests++

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		s.res.addError("Line %d: invalid JSON (%s)", n, jsonReason(err))
		return
	}
	entry, ok := v.(map[string]any)
	if !ok {
		s.res.addError("Line %d: entry must be a JSON object", n)
		return
	}

	if !s.requiredFields(n, entry) {
		return
	}
	s.customID(n, entry["custom_id"])
	s.method(n, entry["method"])
	url, known := s.url(n, entry["url"])
	s.body(n, entry["body"], url, known)
}

func (s *scan) requiredFields(n int, entry map[string]any) bool {
	ok := true
	for _, f := range requiredFields {
		if entry[f] == nil {
			s.res.addError("Line %d: missing required field '%s'", n, f)
			ok = false
		}
	}
	return ok
}

func (s *scan) customID(n int, v any) {
	id, ok := v.(string)
	if !ok || id == "" {
		s.res.addError("Line %d: invalid custom_id (must be a non-empty string)", n)
		return
	}
	first, dup := s.firstSeen[id]
	if !dup {
		s.firstSeen[id] = n
		return
	}
	if s.opts.CheckCustomIDUniqueness {
		s.res.addError("Line %d: duplicate custom_id '%s' (first seen on line %d)", n, id, first)
	}
}

func (s *scan) method(n int, v any) {
	if m, ok := v.(string); !ok || m != request.Method {
		s.res.addError("Line %d: invalid method '%v' (must be '%s')", n, v, request.Method)
	}
}

func (s *scan) url(n int, v any) (request.Endpoint, bool) {
	u, _ := v.(string)
	ep := request.Endpoint(u)
	if !ep.Known() {
		s.res.addError("Line %d: invalid endpoint '%v' (valid: %s)", n, v, validEndpoints)
		return ep, false
	}
	s.endpoints[u] = struct{}{}
	return ep, true
}

// body checks the fields each endpoint cannot work without. Full semantic
// validation happens when entries are built.
func (s *scan) body(n int, v any, ep request.Endpoint, known bool) {
	body, ok := v.(map[string]any)
	if !ok {
		s.res.addError("Line %d: 'body' must be a JSON object", n)
		return
	}
	if body["model"] == nil {
		s.res.addError("Line %d: missing required field 'model' in body", n)
	}
	if !known {
		return
	}

	switch ep {
	case request.EndpointChatCompletions:
		if body["messages"] == nil {
			s.res.addError("Line %d: missing required field 'messages' in body", n)
		} else if _, ok := body["messages"].([]any); !ok {
			s.res.addError("Line %d: 'messages' must be an array", n)
		}
	case request.EndpointResponses:
		if body["input"] == nil && body["prompt"] == nil {
			s.res.addError("Line %d: missing required field 'input' or 'prompt' in body", n)
		}
	case request.EndpointEmbeddings:
		if body["input"] == nil {
			s.res.addError("Line %d: missing required field 'input' in body", n)
		}
	}
}

// finish records the file-wide findings once every line has been read.
func (s *scan) finish() {
	st := &s.res.Stats
	st.UniqueCustomIDs = len(s.firstSeen)
	st.EndpointsUsed = make([]string, 0, len(s.endpoints))
	for ep := range s.endpoints {
		st.EndpointsUsed = append(st.EndpointsUsed, ep)
	}
	slices.Sort(st.EndpointsUsed)

	if s.opts.CheckRequestCount && int64(st.TotalRequests) > s.opts.Limits.MaxRequests {
		s.res.addError("Request count (%d) exceeds limit (%d)", st.TotalRequests, s.opts.Limits.MaxRequests)
	}
	if len(st.EndpointsUsed) > 1 {
		msg := "Multiple endpoints in one file: %s"
		list := strings.Join(st.EndpointsUsed, ", ")
		if s.opts.AllowMixedEndpoints {
			s.res.addWarning(msg, list)
		} else {
			s.res.addError(msg+" (one endpoint per file required)", list)
		}
	}
}

// jsonReason trims the decoder error to its first line.
func jsonReason(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
