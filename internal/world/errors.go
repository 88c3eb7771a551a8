package world

import "github.com/brackenfall/heightworld/internal/ioerr"

// ErrIoMissing and ErrIoMalformed classify asset loader failures per
// spec.md section 7. They alias the shared ioerr sentinels so every
// subsystem's loader can be tested with the same errors.Is check.
var (
	ErrIoMissing   = ioerr.Missing
	ErrIoMalformed = ioerr.Malformed
)

// DeepHeight is the sentinel height.height_at returns for an out-of-range
// query (spec.md 4.1, 9 "Open Questions"). It is deliberately far below any
// plausible terrain so callers that forget to range-check notice quickly.
const DeepHeight = -100
