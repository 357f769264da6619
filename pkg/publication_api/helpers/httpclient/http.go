package httpclient

import (
	"net/http"
	"time"
)

// HTTPClient is the shared client for outbound calls. The 30 s timeout is
// deliberately generous: it bounds a single third-party call, not the whole
// notification fan-out.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}
