// Package verify audits batch API input files before upload.
//
// The Validator reads a JSONL file one line at a time and runs, per line, the
// JSON, required field, method, url and body shape checks, followed by the
// file-wide custom_id uniqueness, size, request count and mixed endpoint
// checks. Findings are collected, never raised: one Result lists every
// problem in the file. Only a file that cannot be opened or read produces an
// error.
//
//	res, err := verify.New(verify.WithAllowMixedEndpoints(true)).ValidateFile("batch.jsonl")
//	if err != nil {
//	    return err
//	}
//	if !res.Valid {
//	    fmt.Println(res)
//	}
//
// Quick and ValidateBatchFile cover the common cases.
package verify
