package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrSetupCancelled is returned by Setup when a later Setup or Teardown
	// on the same controller superseded it.
	ErrSetupCancelled = errors.New("setup superseded")

	ErrNotReady = errors.New("no player ready")
)

// AssetUnplayableError means the asset loaded but cannot be played. The
// session stays in Loading without a player; it is not retried.
type AssetUnplayableError struct {
	URL    string
	Reason string
}

func (e *AssetUnplayableError) Error() string {
	return fmt.Sprintf("asset %s is not playable: %s", e.URL, e.Reason)
}
