package types

// WatchedFolder is a user-granted directory that is polled for new ROM files.
// The path is reopened on every scan; it may have become unreadable since the
// grant and every scan must tolerate that.
type WatchedFolder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// AddFolderResult reports the outcome of a folder grant. Cancellation by the
// user is a normal outcome, not an error.
type AddFolderResult struct {
	Ok      bool   `json:"ok"`
	Aborted bool   `json:"aborted,omitempty"`
	Name    string `json:"name,omitempty"`
	Error   string `json:"error,omitempty"`
}
