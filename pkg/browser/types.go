package browser

import (
	"time"

	"github.com/entrhq/quickopen/pkg/overlay"
	"github.com/entrhq/quickopen/pkg/position"
)

// HostOptions configures the browser the overlay runs in.
type HostOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64

	// UserDataDir keeps cookies and logins between runs when set
	UserDataDir string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// MountConfig is what each mounted overlay is built from.
type MountConfig struct {
	Store         *position.Store
	Dispatcher    overlay.Dispatcher
	Geometry      overlay.Geometry
	WaitTimeout   time.Duration
	FlashDuration time.Duration
}

// Default values for the browser host
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	// DefaultRefreshInterval bounds how often the live document re-reads
	// the page after mutations.
	DefaultRefreshInterval = 100 * time.Millisecond
)

// Names the injected script calls back into.
const (
	eventBinding   = "__quickopenEvent"
	mutatedBinding = "__quickopenMutated"
	renderFunction = "__quickopenRender"
)
