package scene

import (
	"log/slog"

	"github.com/aretw0/arbor/pkg/ports"
)

// Context is handed to element factories.
type Context struct {
	Resources ports.ResourceProvider
	Logger    *slog.Logger
}
