// Package resource bounds the work a graph does outside its write lock.
//
// Three resources are managed:
//
//   - Search slots: a weighted semaphore limiting parallel read-only
//     searches in batch lookups (FindAll)
//   - Memory: bytes held by snapshot encode and decode buffers
//   - IO: a token bucket throttling snapshot reads and writes
//
// # Search Slots
//
//	rc := resource.NewController(resource.Config{MaxConcurrentSearches: 8})
//	if err := rc.AcquireSearch(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseSearch()
//
// # Memory
//
// AcquireMemory blocks until the bytes fit; TryAcquireMemory fails fast with
// ErrMemoryLimitExceeded. A request above the limit is clamped so a single
// large snapshot can still proceed on its own:
//
//	n, err := rc.AcquireMemory(ctx, int64(len(buf)))
//	if err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(n)
//
// # IO
//
//	if err := rc.AcquireIO(ctx, len(data)); err != nil {
//	    return err
//	}
//
// All methods are safe for concurrent use, and a nil *Controller imposes no
// limits.
package resource
