package batch

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/openbatch/errors"
	"github.com/kbukum/openbatch/logger"
	"github.com/kbukum/openbatch/observability"
	"github.com/kbukum/openbatch/prompt"
	"github.com/kbukum/openbatch/request"
)

// Stats describes the destination as known to a session.
type Stats struct {
	// Entries is the number of lines in the file: those written by this
	// session plus, with WithScanExisting, the pre-existing ones.
	Entries int64 `json:"entries"`
	// Written is the number of lines written by this session.
	Written int64 `json:"written"`
	// Bytes follows the same scope as Entries.
	Bytes           int64              `json:"bytes"`
	UniqueCustomIDs int                `json:"unique_custom_ids"`
	Endpoints       []request.Endpoint `json:"endpoints"`
}

// Writer is a session that appends batch entries to one JSONL file. It owns
// the file until Close; a second Open on the same path fails meanwhile.
// A Writer is not safe for concurrent use.
type Writer struct {
	path string
	opts options
	log  *logger.Logger

	file *os.File
	buf  *bufio.Writer

	seen      map[string]struct{}
	endpoint  request.Endpoint
	endpoints map[request.Endpoint]struct{}
	entries   int64
	written   int64
	bytes     int64
	warnings  []string

	op     *observability.OperationContext
	span   trace.Span
	closed bool
}

// Open starts a writer session on path. Parent directories are created and
// the file is opened for appending.
func Open(path string, opts ...Option) (*Writer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("batch")
	}
	if o.metrics == nil {
		o.metrics = observability.DefaultMetrics()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.FileIO("resolve", path, err)
	}
	if err := locks.acquire(abs); err != nil {
		return nil, err
	}

	w := &Writer{
		path:      abs,
		opts:      o,
		log:       o.log.WithFields(logger.Fields(logger.FieldPath, abs)),
		seen:      make(map[string]struct{}),
		endpoints: make(map[request.Endpoint]struct{}),
	}
	if err := w.open(); err != nil {
		locks.release(abs)
		return nil, err
	}

	w.op = observability.NewOperationContext("batch", "write", abs)
	_, w.span = w.op.StartSpanForOperation(o.ctx, observability.SpanBatchWriter)
	o.metrics.RecordSessionOpen(o.ctx)
	w.log.Info("batch writer opened", logger.Fields(
		"strict", o.strict,
		"scan_existing", o.scanExisting,
		"existing_entries", w.entries,
	))
	return w, nil
}

func (w *Writer) open() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return errors.FileIO("create directory", filepath.Dir(w.path), err)
	}

	needsNewline := false
	info, err := os.Stat(w.path)
	switch {
	case err == nil && info.Size() > 0:
		if needsNewline, err = missingFinalNewline(w.path, info.Size()); err != nil {
			return err
		}
		if w.opts.scanExisting {
			if err := w.scanExisting(); err != nil {
				return err
			}
		} else {
			w.log.Warn("appending to existing batch file; uniqueness and limits cover this session only",
				logger.Fields("size", info.Size()))
		}
	case err != nil && !os.IsNotExist(err):
		return errors.FileIO("stat", w.path, err)
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.FileIO("open", w.path, err)
	}
	w.file = f
	w.buf = bufio.NewWriter(f)

	if needsNewline {
		if err := w.flushLine([]byte("\n")); err != nil {
			_ = f.Close()
			return err
		}
		if w.opts.scanExisting {
			w.bytes++
		}
	}
	return nil
}

func missingFinalNewline(path string, size int64) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.FileIO("open", path, err)
	}
	defer f.Close()
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return false, errors.FileIO("read", path, err)
	}
	return last[0] != '\n', nil
}

// existingEntry is the part of a line scanExisting needs.
type existingEntry struct {
	CustomID string           `json:"custom_id"`
	URL      request.Endpoint `json:"url"`
}

// scanExisting loads the state of the pre-existing destination.
func (w *Writer) scanExisting() error {
	f, err := os.Open(w.path)
	if err != nil {
		return errors.FileIO("open", w.path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			w.bytes += int64(len(line))
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				if perr := w.loadLine(lineNo, trimmed); perr != nil {
					return perr
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.FileIO("read", w.path, err)
		}
	}
	w.log.Debug("loaded existing batch file", logger.Fields(
		"entries", w.entries,
		"bytes", w.bytes,
		"unique_custom_ids", len(w.seen),
	))
	return nil
}

func (w *Writer) loadLine(lineNo int, line []byte) error {
	var e existingEntry
	if err := request.Decode(line, &e); err != nil || e.CustomID == "" {
		return errors.InvalidInput("path", "existing file is not a batch file").
			WithDetails(map[string]any{"path": w.path, "line": lineNo}).
			WithCause(err)
	}
	w.entries++
	if _, dup := w.seen[e.CustomID]; dup {
		w.log.Warn("existing batch file repeats a custom_id", logger.Fields(
			logger.FieldCustomID, e.CustomID, logger.FieldLine, lineNo))
	}
	w.seen[e.CustomID] = struct{}{}
	if w.endpoint == "" {
		w.endpoint = e.URL
	}
	w.endpoints[e.URL] = struct{}{}
	return nil
}

// Path returns the absolute destination path.
func (w *Writer) Path() string { return w.path }

// Add validates and writes entries in order. Entries before a failing one
// stay written.
func (w *Writer) Add(entries ...Entry) error {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return w.reject(err)
		}
		if err := w.commit(e); err != nil {
			return err
		}
	}
	return nil
}

// AddRequest writes body under customID.
func (w *Writer) AddRequest(customID string, body request.Request) error {
	return w.Add(NewEntry(customID, body))
}

// AddInstances assembles and writes each instance in turn. Each line is
// flushed before the next instance is assembled.
func (w *Writer) AddInstances(asm *Assembler, instances ...Instance) error {
	if asm == nil {
		return errors.MissingField("assembler")
	}
	for _, inst := range instances {
		id, err := w.customID(inst)
		if err != nil {
			return w.reject(err)
		}
		out, err := asm.Assemble(inst)
		if err != nil {
			return w.reject(err)
		}
		for _, warning := range out.Warnings {
			w.log.Warn(warning, logger.Fields(logger.FieldCustomID, id))
		}
		if err := w.commit(Entry{CustomID: id, Method: request.Method, URL: out.Endpoint, Body: out.Body}); err != nil {
			return err
		}
		w.warnings = append(w.warnings, out.Warnings...)
	}
	return nil
}

// AddTemplated renders src for each instance into copies of common.
func (w *Writer) AddTemplated(src prompt.Source, common request.Request, instances ...TemplateInstance) error {
	asm, err := NewAssembler(common, src)
	if err != nil {
		return err
	}
	list := make([]Instance, len(instances))
	for i := range instances {
		list[i] = instances[i]
	}
	return w.AddInstances(asm, list...)
}

// AddEmbeddings writes one embeddings request per instance.
func (w *Writer) AddEmbeddings(common *request.EmbeddingsRequest, instances ...EmbeddingInstance) error {
	if common == nil {
		return errors.MissingField("request")
	}
	asm, err := NewAssembler(common, nil)
	if err != nil {
		return err
	}
	list := make([]Instance, len(instances))
	for i := range instances {
		list[i] = instances[i]
	}
	return w.AddInstances(asm, list...)
}

// AddMessages writes each instance's conversation into a copy of common.
func (w *Writer) AddMessages(common request.Request, instances ...MessagesInstance) error {
	asm, err := NewAssembler(common, nil)
	if err != nil {
		return err
	}
	list := make([]Instance, len(instances))
	for i := range instances {
		list[i] = instances[i]
	}
	return w.AddInstances(asm, list...)
}

func (w *Writer) customID(inst Instance) (string, error) {
	inst = deref(inst)
	if inst == nil {
		return "", errors.MissingField("instance")
	}
	if id := inst.RequestCustomID(); id != "" {
		return id, nil
	}
	if inst.InstanceID() == "" {
		return "", errors.MissingField("id")
	}
	return w.opts.customIDs(inst.InstanceID()), nil
}

// commit encodes e and appends it as one line, after checking uniqueness,
// endpoint and limits against the session state.
func (w *Writer) commit(e Entry) error {
	if w.closed {
		return errors.FileIO("write", w.path, os.ErrClosed)
	}
	if _, dup := w.seen[e.CustomID]; dup {
		return w.reject(errors.DuplicateCustomID(e.CustomID))
	}
	if w.endpoint != "" && e.URL != w.endpoint && !w.opts.allowMixed {
		return w.reject(errors.MixedEndpoints(string(w.endpoint), string(e.URL)))
	}

	line, err := w.encode(e)
	if err != nil {
		return w.reject(err)
	}
	if w.opts.strict {
		if next := w.entries + 1; next > w.opts.limits.MaxRequests {
			return w.reject(errors.LimitExceeded("request_count", next, w.opts.limits.MaxRequests))
		}
		if next := w.bytes + int64(len(line)); next > w.opts.limits.MaxFileBytes {
			return w.reject(errors.LimitExceeded("file_size", next, w.opts.limits.MaxFileBytes))
		}
	}

	if err := w.flushLine(line); err != nil {
		return err
	}

	w.seen[e.CustomID] = struct{}{}
	if w.endpoint == "" {
		w.endpoint = e.URL
	}
	w.endpoints[e.URL] = struct{}{}
	w.entries++
	w.written++
	w.bytes += int64(len(line))
	w.opts.metrics.RecordEntryWritten(w.opts.ctx, string(e.URL), len(line))
	w.log.Debug("entry written", logger.Fields(
		logger.FieldCustomID, e.CustomID,
		logger.FieldEndpoint, string(e.URL),
		logger.FieldLine, w.entries,
	))
	return nil
}

func (w *Writer) encode(e Entry) ([]byte, error) {
	data, err := request.Encode(e)
	if err != nil {
		return nil, errors.Internal(err).WithDetail(logger.FieldCustomID, e.CustomID)
	}
	if w.opts.ensureASCII {
		data = escapeNonASCII(data)
	}
	return append(data, '\n'), nil
}

func (w *Writer) flushLine(line []byte) error {
	if _, err := w.buf.Write(line); err != nil {
		return errors.FileIO("write", w.path, err)
	}
	if err := w.buf.Flush(); err != nil {
		return errors.FileIO("write", w.path, err)
	}
	return nil
}

func (w *Writer) reject(err error) error {
	code := string(errors.ErrCodeInternal)
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	w.opts.metrics.RecordEntryRejected(w.opts.ctx, code)
	w.log.Debug("entry rejected", logger.ErrorFields("add", err))
	return err
}

// Stats returns the current counters.
func (w *Writer) Stats() Stats {
	eps := make([]request.Endpoint, 0, len(w.endpoints))
	for ep := range w.endpoints {
		eps = append(eps, ep)
	}
	slices.Sort(eps)
	return Stats{
		Entries:         w.entries,
		Written:         w.written,
		Bytes:           w.bytes,
		UniqueCustomIDs: len(w.seen),
		Endpoints:       eps,
	}
}

// Warnings returns the non-fatal findings collected while assembling.
func (w *Writer) Warnings() []string {
	return append([]string(nil), w.warnings...)
}

// Close flushes and syncs the file and releases the destination. It is safe
// to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer locks.release(w.path)

	var err error
	if ferr := w.buf.Flush(); ferr != nil {
		err = errors.FileIO("write", w.path, ferr)
	}
	if serr := w.file.Sync(); serr != nil && err == nil {
		err = errors.FileIO("sync", w.path, serr)
	}
	if cerr := w.file.Close(); cerr != nil && err == nil {
		err = errors.FileIO("close", w.path, cerr)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	w.span.SetAttributes(attribute.Int64("batch.entries.written", w.written))
	w.op.EndOperation(w.span, status, err)
	w.opts.metrics.RecordSessionClose(w.opts.ctx)
	w.log.Info("batch writer closed", logger.Fields(
		"written", w.written,
		"entries", w.entries,
		"bytes", w.bytes,
		logger.FieldDuration, w.op.Duration().Milliseconds(),
	))
	return err
}
