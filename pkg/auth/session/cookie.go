package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gmihail/shop/pkg/config"
)

const (
	// AccessTokenCookie holds the raw access token.
	AccessTokenCookie = "sb-access-token"
	// SessionCookie holds the whole session as base64url JSON.
	SessionCookie = "sb-session"

	TokenTypeBearer = "bearer"
)

// User is the part of the signed-in user carried with a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is what a successful sign-in hands back and what the cookies persist.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is in seconds.
	ExpiresIn int64 `json:"expires_in"`
	ExpiresAt int64 `json:"expires_at,omitempty"`
	User      *User `json:"user,omitempty"`
	// Persistent sessions get an Expires attribute; others live as long as the browser session.
	Persistent bool `json:"-"`
}

// Store persists a Session across requests.
type Store interface {
	Save(w http.ResponseWriter, s Session)
	Load(r *http.Request) (Session, bool)
	Destroy(w http.ResponseWriter)
}

// CookieStore keeps sessions in HttpOnly, SameSite=Strict cookies.
type CookieStore struct {
	mode   string
	secure bool
	domain string
	now    func() time.Time
}

func NewCookieStore(cfg config.SessionConfig) *CookieStore {
	mode := cfg.CookieMode
	if mode == "" {
		mode = config.SessionCookieModeToken
	}
	return &CookieStore{
		mode:   mode,
		secure: cfg.CookieSecure,
		domain: cfg.CookieDomain,
		now:    time.Now,
	}
}

func (c *CookieStore) Save(w http.ResponseWriter, s Session) {
	if strings.TrimSpace(s.AccessToken) == "" {
		return
	}
	if s.TokenType == "" {
		s.TokenType = TokenTypeBearer
	}

	name, value := AccessTokenCookie, s.AccessToken
	if c.mode == config.SessionCookieModeJSON {
		encoded, err := encodeSession(s)
		if err != nil {
			return
		}
		name, value = SessionCookie, encoded
	}

	cookie := c.baseCookie(name, value)
	if s.Persistent && s.ExpiresIn > 0 {
		cookie.Expires = c.now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	http.SetCookie(w, cookie)
}

// Load rebuilds the session from the request cookies. The JSON cookie wins
// when both are present.
func (c *CookieStore) Load(r *http.Request) (Session, bool) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if s, err := decodeSession(cookie.Value); err == nil && s.AccessToken != "" {
			return s, true
		}
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return Session{AccessToken: strings.TrimSpace(cookie.Value), TokenType: TokenTypeBearer}, true
	}
	return Session{}, false
}

// Destroy expires both cookie formats.
func (c *CookieStore) Destroy(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, SessionCookie} {
		cookie := c.baseCookie(name, "")
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(w, cookie)
	}
}

func (c *CookieStore) baseCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func encodeSession(s Session) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeSession(value string) (Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}
