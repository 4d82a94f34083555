package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

var requestDataKey ctxKey

// RequestData is the session identity threaded through request contexts.
// Handlers and services branch only on "present" vs "absent" plus the
// Guest flag; everything else about the auth provider stays opaque.
type RequestData struct {
	UserID uuid.UUID
	Email  string
	Guest  bool
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}
