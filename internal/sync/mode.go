package sync

// Mode is the passive UI indicator of which data source is authoritative.
// It drives a banner and nothing else; it must not block operations.
type Mode string

const (
	ModeConnected Mode = "connected"
	ModeDemo      Mode = "demo"
)

// SelectMode is the view-mode policy: demo whenever no session exists, or
// whenever the last remote call failed for an otherwise-authenticated
// session.
func SelectMode(loggedIn, remoteHealthy bool) Mode {
	if !loggedIn || !remoteHealthy {
		return ModeDemo
	}
	return ModeConnected
}
