package verify

// ValidateBatchFile validates path with the default checks. strict toggles the
// file size and request count limits; opts are applied afterwards.
func ValidateBatchFile(path string, strict bool, opts ...Option) (*Result, error) {
	all := append([]Option{WithCheckFileSize(strict), WithCheckRequestCount(strict)}, opts...)
	return New(all...).ValidateFile(path)
}

// Quick reports whether path is a valid batch file under the default strict
// checks. Read failures count as invalid.
func Quick(path string) bool {
	res, err := ValidateBatchFile(path, true)
	return err == nil && res.Valid
}
