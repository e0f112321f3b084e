package reformulation

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoExternalVariables is returned by Scan when no exactly constraint
// could be reformulated.
var ErrNoExternalVariables = errors.New("no external variables discovered")

// ScanMismatch reports a Boolean family whose index structure does not
// match its declared reference set. Such a family contributes no entries.
type ScanMismatch struct {
	Family string
	Set    string
	Reason string
}

func (e ScanMismatch) Error() string {
	return fmt.Sprintf("family %s cannot be reformulated over %s: %s", e.Family, e.Set, e.Reason)
}

// IsScanMismatch reports whether err is, or wraps, a ScanMismatch.
func IsScanMismatch(err error) bool {
	_, ok := errors.Cause(err).(ScanMismatch)
	return ok
}

// BoundViolation reports an external variable vector that does not fit
// the reformulation map.
type BoundViolation struct {
	Position int
	Value    int
	Lower    int
	Upper    int
}

func (e BoundViolation) Error() string {
	return fmt.Sprintf("external variable x[%d]=%d outside [%d, %d]", e.Position, e.Value, e.Lower, e.Upper)
}
