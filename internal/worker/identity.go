package worker

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// NewClaimantID derives a unique identity for a flow instance from the
// host, process, and a random suffix. Uniqueness per live instance is what
// makes ownership checks on outcome reports trustworthy.
func NewClaimantID() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		host = "unknown-host"
	}
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%d-%s", host, os.Getpid(), suffix)
}
