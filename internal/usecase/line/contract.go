package line

import (
	"context"

	domline "github.com/kailas-cloud/aaisp/internal/domain/line"
)

// Fetcher retrieves every line on the account from the CHAOS API.
type Fetcher interface {
	Info(ctx context.Context) ([]domline.Line, error)
}

// Cache persists the last fetched lines in memory.
type Cache interface {
	Replace(lines []domline.Line)
	Get(id int) (domline.Line, bool)
	IDs() []int
	All() []domline.Line
	Len() int
}
