package sheets

import (
	"context"

	"portfolio/internal/core"
)

// Ports for outbound export adapters.
type (
	// EntryWriter appends one product entry to an external sheet and
	// returns an adapter-specific row reference.
	EntryWriter interface {
		Append(ctx context.Context, e core.Entry) (rowRef string, err error)
	}
)
