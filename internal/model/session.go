package model

import "time"

// Session is the per-browser state: the last uploaded holdings table.
// It expires with the session TTL and is never persisted anywhere else.
type Session struct {
	Filename   string
	Portfolio  Portfolio
	UploadedAt time.Time
}
