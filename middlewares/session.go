package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/toomburg/sessions"
	"github.com/ray-remotestate/toomburg/utils"
)

type ContextKey string

const (
	sessionContextKey ContextKey = "session"

	SessionCookieName = "toomburg_session"
)

// SessionManager ties the session store to the signed session cookie.
type SessionManager struct {
	store        sessions.Store
	secret       []byte
	now          sessions.Clock
	cookieSecure bool
}

func NewSessionManager(store sessions.Store, secret []byte, now sessions.Clock, cookieSecure bool) *SessionManager {
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		store:        store,
		secret:       secret,
		now:          now,
		cookieSecure: cookieSecure,
	}
}

// Load attaches the caller's live session, if any, to the request context.
func (m *SessionManager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := utils.ParseSessionToken(m.secret, cookie.Value, m.now())
		if err != nil {
			m.clearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.store.Get(r.Context(), id)
		if err != nil {
			if !errors.Is(err, sessions.ErrNotFound) {
				logrus.WithError(err).Error("failed to load session")
			}
			m.clearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the loaded session or nil.
func SessionFromContext(ctx context.Context) *sessions.Session {
	sess, _ := ctx.Value(sessionContextKey).(*sessions.Session)
	return sess
}

// Current returns the loaded session, or a new anonymous one that Persist will create.
func (m *SessionManager) Current(r *http.Request) *sessions.Session {
	if sess := SessionFromContext(r.Context()); sess != nil {
		return sess
	}
	return &sessions.Session{}
}

// Persist saves sess, creating it and setting the cookie when it is new or has expired meanwhile.
func (m *SessionManager) Persist(w http.ResponseWriter, r *http.Request, sess *sessions.Session) error {
	if sess.ID != "" {
		err := m.store.Save(r.Context(), sess)
		if !errors.Is(err, sessions.ErrNotFound) {
			return err
		}
		// expired mid-request: only the messages survive
		*sess = sessions.Session{Error: sess.Error, Success: sess.Success}
	}
	if err := m.store.Create(r.Context(), sess); err != nil {
		return err
	}
	return m.setCookie(w, sess)
}

// Start replaces the caller's session with sess. Anything staged in the old one is dropped.
func (m *SessionManager) Start(w http.ResponseWriter, r *http.Request, sess *sessions.Session) error {
	if old := SessionFromContext(r.Context()); old != nil {
		if err := m.store.Delete(r.Context(), old.ID); err != nil {
			return err
		}
	}
	sess.ID = ""
	return m.Persist(w, r, sess)
}

func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	m.clearCookie(w)
	if sess := SessionFromContext(r.Context()); sess != nil {
		return m.store.Delete(r.Context(), sess.ID)
	}
	return nil
}

func (m *SessionManager) setCookie(w http.ResponseWriter, sess *sessions.Session) error {
	token, err := utils.SignSessionToken(m.secret, sess.ID, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  sess.ExpiresAt,
	})
	return nil
}

func (m *SessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
