package middlewares

import (
	"context"
	"net/http"

	"github.com/ray-remotestate/toomburg/sessions"
)

func contextWithSession(r *http.Request, sess *sessions.Session) context.Context {
	return context.WithValue(r.Context(), sessionContextKey, sess)
}
