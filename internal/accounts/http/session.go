package http

import (
	"context"
	"errors"
	"net/http"

	"supermarket-inventory/internal/accounts"
	"supermarket-inventory/internal/httpserver"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	SessionName    = "inventory_session"
	sessionMaxAge  = 12 * 60 * 60
	accountIDKey   = "account_id"
	currentAccount = "current_account"
)

type AccountFinder interface {
	Get(ctx context.Context, id int64) (accounts.Account, error)
}

// Sessions installs the signed cookie store. It must run before RequireLogin
// and before the login and logout handlers.
func Sessions(secret []byte, secure bool) gin.HandlerFunc {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(SessionName, store)
}

// RequireLogin resolves the session's account and aborts with 401 when there
// is none. A session pointing at a deleted account is cleared.
func RequireLogin(finder AccountFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := session.Get(accountIDKey).(int64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpserver.ErrorResponse{Error: "login required"})
			return
		}

		account, err := finder.Get(c.Request.Context(), id)
		switch {
		case errors.Is(err, accounts.ErrNotFound):
			session.Clear()
			_ = session.Save()
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpserver.ErrorResponse{Error: "login required"})
			return
		case err != nil:
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, httpserver.ErrorResponse{Error: "failed to load session"})
			return
		}

		c.Set(currentAccount, account)
		c.Next()
	}
}

// CurrentAccount returns the account RequireLogin stored for this request.
func CurrentAccount(c *gin.Context) (accounts.Account, bool) {
	v, ok := c.Get(currentAccount)
	if !ok {
		return accounts.Account{}, false
	}
	account, ok := v.(accounts.Account)
	return account, ok
}

func startSession(c *gin.Context, id int64) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(accountIDKey, id)
	return session.Save()
}

func endSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
