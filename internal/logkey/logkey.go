// Package logkey holds the attribute names used in structured logs.
package logkey

const (
	TraceID = "trace_id"
	Error   = "error"
	UserID  = "user_id"
	Method  = "method"
	Path    = "path"
	Status  = "status"
	Latency = "latency"
)
