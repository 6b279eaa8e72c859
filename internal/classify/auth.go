// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// authIndicators is scanned in priority order; the first kind with any hit
// wins regardless of how many hits later kinds have.
var authIndicators = []struct {
	auth    types.Auth
	phrases []string
}{
	{types.AuthJWT, []string{"jwt", "json web token", "json web tokens", "bearer token", "token-based", "token based", "access token", "access tokens"}},
	{types.AuthSession, []string{"session", "sessions", "session-based", "cookie", "cookies"}},
	{types.AuthAPIKey, []string{"api key", "api keys", "api-key", "api-keys", "api_key", "apikey"}},
	{types.AuthOAuth2, []string{"oauth", "oauth2", "social login", "google login", "sign in with google", "sso", "single sign-on"}},
	{types.AuthNone, noAuthPhrases},
}

var noAuthPhrases = []string{
	"no auth", "no authentication", "without authentication",
	"without auth", "no login", "public api", "anonymous access",
}

var userConcepts = []string{
	"user", "users", "login", "log in", "register", "registration",
	"account", "accounts", "sign up", "signup", "sign-up",
}

// AuthResult is the auth decision and the evidence behind it.
type AuthResult struct {
	Choice types.Auth

	// Explicit is set when an auth keyword decided the choice.
	Explicit bool

	// UserConcept is set when users or accounts are mentioned.
	UserConcept bool

	// NoneRequested is set when the text asks for no authentication.
	NoneRequested bool

	Span types.Span
}

// Auth scans the auth indicator table in priority order. Without a hit, a
// user concept selects JWT; otherwise no auth.
func Auth(doc normalize.Document) AuthResult {
	res := AuthResult{Choice: types.AuthNone, Span: types.DocumentSpan}
	_, res.UserConcept = findAny(doc, userConcepts)
	_, res.NoneRequested = findAny(doc, noAuthPhrases)

	for _, ind := range authIndicators {
		if sp, ok := findAny(doc, ind.phrases); ok {
			res.Choice = ind.auth
			res.Explicit = true
			res.Span = sp
			return res
		}
	}
	if res.UserConcept {
		res.Choice = types.AuthJWT
	}
	return res
}
