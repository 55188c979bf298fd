package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"

	"github.com/pageza/nutriplan/backend/internal/types"
)

const (
	flashCookie = "nutriplan_flash"
	flashMaxAge = 60
)

// flashes carries one notification across a redirect in a signed cookie.
type flashes struct {
	codec  *securecookie.SecureCookie
	secure bool
}

func newFlashes(hashKey []byte, secure bool) *flashes {
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(flashMaxAge)
	return &flashes{codec: codec, secure: secure}
}

// set queues n for the next page render.
func (f *flashes) set(c *gin.Context, n *types.Notification) {
	if n == nil {
		return
	}
	value, err := f.codec.Encode(flashCookie, n)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, value, flashMaxAge, "/", "", f.secure, true)
}

// take returns the queued notification, if any, and clears it. Tampered or
// expired cookies are dropped.
func (f *flashes) take(c *gin.Context) *types.Notification {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", "", f.secure, true)

	var n types.Notification
	if err := f.codec.Decode(flashCookie, value, &n); err != nil {
		return nil
	}
	return &n
}
