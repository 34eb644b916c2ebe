package paylane

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Params is the request payload of an operation. Values follow the JSON data
// model: scalars, slices and nested maps. The client never inspects it.
type Params map[string]any

// Response is the decoded JSON object returned by the API. Only the
// "success" key has meaning to the client; every other key is passed through.
type Response map[string]any

// Success reports whether the response carries a truthy "success" field.
func (r Response) Success() bool {
	if r == nil {
		return false
	}
	v, ok := r["success"]
	if !ok {
		return false
	}
	return truthy(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// CallRecord describes one completed call, successful or not.
type CallRecord struct {
	ID         uuid.UUID
	Operation  string
	Method     string
	Path       string
	StatusCode int
	Success    bool
	Err        error
	StartedAt  time.Time
	Duration   time.Duration
}

// CallObserver is notified after every call. Implementations must not block
// for long: the caller waits for ObserveCall to return.
type CallObserver interface {
	ObserveCall(ctx context.Context, rec CallRecord)
}
