package api

// API limits and constants.
const (
	// MaxAvatarUploadSize is the maximum allowed size for avatar uploads (10 MB).
	MaxAvatarUploadSize = 10 << 20
)

// Cache-Control header values.
const (
	CacheOneDay  = "public, max-age=86400"
	CacheNoStore = "no-cache"
)
