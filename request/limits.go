package request

// Default per-file ceilings of the batch API.
const (
	DefaultMaxFileBytes int64 = 200 << 20
	DefaultMaxRequests  int64 = 50_000
)

// Limits are the per-file ceilings enforced by strict writers and checked by
// the validator.
type Limits struct {
	MaxFileBytes int64 `json:"max_file_bytes" yaml:"max_file_bytes" mapstructure:"max_file_bytes" validate:"gt=0"`
	MaxRequests  int64 `json:"max_requests" yaml:"max_requests" mapstructure:"max_requests" validate:"gt=0"`
}

// DefaultLimits returns the batch API limits.
func DefaultLimits() Limits {
	return Limits{MaxFileBytes: DefaultMaxFileBytes, MaxRequests: DefaultMaxRequests}
}

// MaxFileMB returns MaxFileBytes in whole mebibytes.
func (l Limits) MaxFileMB() int64 { return l.MaxFileBytes >> 20 }
