package middleware

import (
	"context"
	"net/http"

	"github.com/jaekwang-park/taskboard-api/internal/model"
)

type contextKey string

const callerKey contextKey = "caller"

func SetCaller(ctx context.Context, caller model.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom returns the identity the guard verified for this request.
func CallerFrom(ctx context.Context) (model.Caller, bool) {
	c, ok := ctx.Value(callerKey).(model.Caller)
	return c, ok
}

func GetCaller(r *http.Request) model.Caller {
	c, _ := CallerFrom(r.Context())
	return c
}
