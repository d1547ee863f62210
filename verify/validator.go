package verify

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/openbatch/errors"
	"github.com/kbukum/openbatch/logger"
	"github.com/kbukum/openbatch/observability"
)

// Validator audits batch files line by line. It never modifies the file and
// shares no state with writers; every invariant is re-derived from the bytes.
// A Validator holds no per-run state and may be used concurrently.
type Validator struct {
	opts    Options
	log     *logger.Logger
	metrics *observability.Metrics
}

// New returns a validator with DefaultOptions adjusted by opts.
func New(opts ...Option) *Validator {
	v := &Validator{opts: DefaultOptions()}
	for _, opt := range opts {
		opt(v)
	}
	if v.log == nil {
		v.log = logger.Get("verify")
	}
	if v.metrics == nil {
		v.metrics = observability.DefaultMetrics()
	}
	return v
}

// Options returns the check settings in effect.
func (v *Validator) Options() Options { return v.opts }

// ValidateFile validates the file at path.
func (v *Validator) ValidateFile(path string) (*Result, error) {
	return v.ValidateFileContext(context.Background(), path)
}

// ValidateFileContext is ValidateFile with a parent context for the trace
// span. The run itself is not cancellable.
//
// An error is returned only when the file cannot be opened or read; content
// problems are reported in the Result.
func (v *Validator) ValidateFileContext(ctx context.Context, path string) (*Result, error) {
	op := observability.NewOperationContext("verify", "validate_file", path)
	ctx, span := op.StartSpanForOperation(ctx, observability.SpanVerifyFile)

	res, err := v.validateFile(ctx, path)
	status := "valid"
	switch {
	case err != nil:
		status = "error"
	case !res.Valid:
		status = "invalid"
	}
	op.EndOperation(span, status, err)
	return res, err
}

func (v *Validator) validateFile(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("batch file", path).WithCause(err)
		}
		return nil, errors.FileIO("stat", path, err)
	}
	if info.IsDir() {
		return nil, errors.InvalidInput("path", path+" is a directory")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.FileIO("open", path, err)
	}
	defer f.Close()

	var pre []string
	if ext := filepath.Ext(path); ext != ".jsonl" {
		pre = append(pre, "File extension is '"+ext+"', expected '.jsonl'")
	}
	return v.run(ctx, path, f, info.Size(), pre)
}

// ValidateReader validates the batch content read from r. size is the byte
// length used for the size check; pass a negative size to use the number of
// bytes read.
func (v *Validator) ValidateReader(r io.Reader, size int64) (*Result, error) {
	return v.run(context.Background(), "", r, size, nil)
}

func (v *Validator) run(ctx context.Context, path string, r io.Reader, size int64, warnings []string) (*Result, error) {
	start := time.Now()
	res := &Result{Valid: true, Errors: []string{}, Warnings: warnings}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}

	if size >= 0 {
		v.checkSize(res, size)
	}

	s := newScan(v.opts, res)
	br := bufio.NewReader(r)
	var read int64
	for n := 1; ; n++ {
		line, err := br.ReadBytes('\n')
		read += int64(len(line))
		if len(line) > 0 {
			if trimmed := bytes.TrimSpace(line); len(trimmed) == 0 {
				res.addWarning("Line %d: empty line (ignored)", n)
			} else {
				s.line(n, trimmed)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			v.log.WithContext(ctx).Error("reading batch file failed", logger.ErrorFields("validate", err))
			observability.SetSpanError(ctx, err)
			return nil, errors.FileIO("read", path, err)
		}
	}

	if size < 0 {
		v.checkSize(res, read)
	}
	s.finish()

	elapsed := time.Since(start)
	observability.SetSpanAttribute(ctx, observability.AttrTotalRequests, res.Stats.TotalRequests)
	observability.SetSpanAttribute(ctx, observability.AttrValid, res.Valid)
	v.metrics.RecordValidation(ctx, res.Valid, len(res.Errors), len(res.Warnings), elapsed)
	v.log.WithContext(ctx).Info("batch file validated", logger.Fields(
		logger.FieldPath, path,
		"valid", res.Valid,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
		"total_requests", res.Stats.TotalRequests,
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return res, nil
}

// checkSize records the file size statistic and, when enabled, the size
// limit finding.
func (v *Validator) checkSize(res *Result, size int64) {
	res.Stats.FileSizeMB = roundMB(size)
	if v.opts.CheckFileSize && size > v.opts.Limits.MaxFileBytes {
		res.addError("File size (%.2f MB) exceeds limit (%s MB)", float64(size)/mib, formatMB(v.opts.Limits.MaxFileBytes))
	}
}
