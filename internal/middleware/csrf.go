package middleware

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFField is the form field carrying the token.
const CSRFField = "csrf_token"

// CSRF protects the page forms. Rejected requests get a 403 page.
func CSRF(authKey []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.FieldName(CSRFField),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("Forbidden - CSRF token invalid"))
		})),
	)

	return func(c *gin.Context) {
		passed := false
		protect(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
			return
		}
		c.Next()
	}
}

// CSRFTemplateField is the hidden input to embed in a form.
func CSRFTemplateField(c *gin.Context) template.HTML {
	return csrf.TemplateField(c.Request)
}

// CSRFToken is the raw token for the current request.
func CSRFToken(c *gin.Context) string {
	return csrf.Token(c.Request)
}
