// internal/core/ports/connectivity.go
package ports

// ConnectivityMonitor reports reachability of the remote authority and
// notifies subscribers about transitions.
type ConnectivityMonitor interface {
	// Online returns the last observed reachability state.
	Online() bool
	// Subscribe returns a channel receiving the new state on every
	// transition, plus a cancel function releasing the subscription.
	Subscribe() (<-chan bool, func())
}
