package providers

import "time"

// shutdownTimeout bounds how long a graceful HTTP shutdown may take before
// in-flight requests are dropped.
const shutdownTimeout = 30 * time.Second
