package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/token"
)

// newAuthService wires the hosted OAuth flow for clients that cannot run
// the exchange themselves. The resulting identity still goes through
// loginHandler to land in our user table.
func newAuthService() *auth.Service {
	secret := opts.JWTSecret

	svc := auth.NewService(auth.Opts{
		SecretReader: token.SecretFunc(func(id string) (string, error) {
			return secret, nil
		}),
		TokenDuration:  24 * time.Hour,
		CookieDuration: 24 * time.Hour,
		Issuer:         "rbl-app",
		URL:            opts.BaseURL,
		DisableXSRF:    true, // API only
	})

	svc.AddProvider("facebook", os.Getenv("FACEBOOK_CLIENT_ID"), os.Getenv("FACEBOOK_CLIENT_SECRET"))

	return svc
}

// AuthRoutes exposes the provider login/logout endpoints.
func AuthRoutes() http.Handler {
	svc := newAuthService()
	routes, _ := svc.Handlers()
	return routes
}
