package domain

// Instance describes this server installation. The ID is generated once
// on first boot and persisted in settings so clients can recognize the
// same server across address changes.
type Instance struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LocalURL  string `json:"localUrl,omitempty"`
	RemoteURL string `json:"remoteUrl,omitempty"`
	Version   string `json:"version"`
	SetupDone bool   `json:"setupDone"`
}
