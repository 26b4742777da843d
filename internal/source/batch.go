package source

import "context"

// ForEachBatch walks items in fixed-size groups, invoking fn for every
// group and waiting for it to finish before starting the next. Adapters
// that must self-throttle (one REST call per symbol against a strict rate
// limit) use this to keep "one concurrent call per adapter" true while
// still fanning out sub-requests inside a group.
func ForEachBatch(ctx context.Context, items []string, size int, fn func(ctx context.Context, batch []string) error) error {
	if size <= 0 {
		size = len(items)
	}
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		if err := fn(ctx, items[start:end]); err != nil {
			return err
		}
	}
	return nil
}
