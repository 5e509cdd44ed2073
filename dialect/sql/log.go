package sql

import (
	"context"
	"fmt"
	"log/slog"
)

// LevelTrace is the slog level statements are traced at. It sits below
// slog.LevelDebug, so tracing is off unless a handler enables it.
const LevelTrace = slog.Level(-8)

// DefaultTraceName is the label of traced statements without a name.
const DefaultTraceName = "QUERY"

// TraceSQL logs q with all values inlined as "<name>: <sql>", at
// LevelTrace. The statement is only rendered when the level is enabled.
func TraceSQL(ctx context.Context, logger *slog.Logger, q QueryPart, name string) {
	if logger == nil {
		logger = slog.Default()
	}
	if !logger.Enabled(ctx, LevelTrace) {
		return
	}
	if name == "" {
		name = DefaultTraceName
	}
	var text string
	if s, ok := q.(fmt.Stringer); ok {
		text = s.String()
	} else {
		text = Inlined(q)
	}
	logger.Log(ctx, LevelTrace, name+": "+text)
}
