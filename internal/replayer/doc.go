// Package replayer defines the contract every per-API replay backend implements
// and the registry/factory pair that maps a tracer id to a backend variant.
//
// Backends are driven synchronously by a single goroutine. Initialize, Replay and
// Deinitialize block until done and have no timeout; an implementation that can
// hang blocks the whole replay, so implementations must bound their own waits.
package replayer
