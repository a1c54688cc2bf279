package repository

import (
	"context"
	"fmt"
	"time"
)

// dateTimeLayout matches MySQL's DATETIME literal and sorts lexicographically,
// so the same strings compare correctly in SQLite TEXT columns.
const dateTimeLayout = "2006-01-02 15:04:05"

var parseLayouts = []string{
	dateTimeLayout,
	"2006-01-02 15:04:05.999999",
	time.RFC3339Nano,
}

func formatDateTime(value time.Time, loc *time.Location) string {
	return value.In(loc).Format(dateTimeLayout)
}

func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse datetime %q", value)
}

func nullableString(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
