package mcpprobe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoTarget indicates a descriptor with neither a command nor a URL. No
// connection attempt is made for such descriptors.
var ErrNoTarget = errors.New("mcpprobe: missing command or url")

// unavailableFailure is the aggregated error reported when a probe fails
// without any candidate recording a message. The resolver guarantees a
// non-empty candidate list, so in practice this only guards against bugs.
const unavailableFailure = "Unavailable"

// methodUnavailableMarkers are matched case-insensitively against error text
// to recognize "this server does not implement that method" responses, which
// servers phrase in many ways. Each marker must stay specific to the method
// itself: a bare "not found" would also swallow 404s and expired-session
// errors, which are real failures.
var methodUnavailableMarkers = []string{
	"method not found",
	"-32601",
	"not implemented",
	"unknown method",
	"unsupported",
	"unimplemented",
	"does not support",
}

// isMethodUnavailable reports whether err looks like a server-side
// method-not-supported response rather than a transport or timeout failure.
func isMethodUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range methodUnavailableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// phaseFailure renders a phase error for the aggregated failure message,
// replacing the generic context errors with a phase-specific timeout note.
func phaseFailure(phase string, budget time.Duration, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s timed out after %s", phase, budget)
	}
	return err.Error()
}
