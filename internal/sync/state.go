package sync

// State tracks where the synchronizer is in its lifecycle.
//
//	Uninitialized → Loading → {Connected, OfflinePublic, Degraded}
//
// Connected degrades to Degraded when a remote call fails after a session
// exists; login from any state triggers a fresh load; logout always lands in
// OfflinePublic, never an empty view.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateConnected     State = "connected"
	StateOfflinePublic State = "offline-public"
	StateDegraded      State = "offline-degraded"
)
