package server

import (
	"context"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/umputun/viteadmin/pkg/config"
	"github.com/umputun/viteadmin/pkg/domain"
)

// ctxKey is the type for context keys to avoid collisions
type ctxKey string

const callerKey ctxKey = "caller"

// authenticator checks basic auth credentials against configured users
type authenticator struct {
	users map[string]config.UserConfig
}

func newAuthenticator(users []config.UserConfig) *authenticator {
	res := &authenticator{users: make(map[string]config.UserConfig, len(users))}
	for _, u := range users {
		res.users[u.Login] = u
	}
	return res
}

// middleware resolves the caller from basic auth credentials and stores it in context.
// Requests without valid credentials continue as anonymous, handlers decide whether to reject them.
func (a *authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, passwd, ok := r.BasicAuth()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		caller, ok := a.check(login, passwd)
		if !ok {
			log.Printf("[WARN] failed login attempt for %q from %s", login, r.RemoteAddr)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
	})
}

// check returns the caller for valid credentials
func (a *authenticator) check(login, passwd string) (domain.Caller, bool) {
	u, ok := a.users[login]
	if !ok {
		return domain.Caller{}, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(passwd)); err != nil {
		return domain.Caller{}, false
	}

	extra := make([]domain.Capability, 0, len(u.Capabilities))
	for _, c := range u.Capabilities {
		extra = append(extra, domain.Capability(c))
	}
	return domain.NewCaller(u.Login, u.Role, extra...), true
}

// requireLogin rejects anonymous callers with a basic auth challenge
func (s *Server) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if callerFrom(r.Context()).Anonymous() {
			w.Header().Set("WWW-Authenticate", `Basic realm="viteadmin", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func withCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// callerFrom returns the caller stored in context, anonymous if none
func callerFrom(ctx context.Context) domain.Caller {
	caller, _ := ctx.Value(callerKey).(domain.Caller)
	return caller
}
