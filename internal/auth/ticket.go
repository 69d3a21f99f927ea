// Package auth manages the gateway's own browser sessions.
//
// THE TWO-CREDENTIAL SETUP:
// The backend issues a token pair (access + refresh) when someone logs in.
// The browser never sees that pair — it lives in this server's SQLite
// store. What the browser carries is a "ticket": a short signed JWT whose
// only claim of interest is the session ID, held in an HttpOnly cookie.
// On every request the middleware validates the ticket, loads the stored
// pair, and builds the session from it. Stealing the cookie therefore
// yields a reference to server-side state, not the backend credential
// itself, and logout can kill the session for real by deleting the row.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const ticketIssuer = "tubetip-web"

// TicketLifetime bounds how long a browser session lives without a fresh
// login. The backend refresh token usually expires sooner; this is the
// outer fence.
const TicketLifetime = 30 * 24 * time.Hour

// TicketService signs and validates session tickets.
type TicketService struct {
	secret []byte
}

// NewTicketService creates a TicketService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: TICKET_SECRET=$(openssl rand -hex 32)
func NewTicketService(secret string) (*TicketService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: ticket secret must be at least 16 characters")
	}
	return &TicketService{secret: []byte(secret)}, nil
}

type ticketClaims struct {
	jwt.RegisteredClaims
}

// Issue signs a ticket for the given gateway session ID (carried in the
// standard "sub" claim).
func (s *TicketService) Issue(sessionID string) (string, error) {
	now := time.Now()

	c := ticketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TicketLifetime)),
			Issuer:    ticketIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing ticket: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a ticket, returning the session ID.
//
// Pinning the algorithm list blocks algorithm-confusion tokens; requiring
// the issuer blocks tokens minted by some other app sharing the secret.
func (s *TicketService) Validate(ticket string) (string, error) {
	token, err := jwt.ParseWithClaims(
		ticket,
		&ticketClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(ticketIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: ticket expired")
		}
		return "", fmt.Errorf("auth: invalid ticket: %w", err)
	}

	c, ok := token.Claims.(*ticketClaims)
	if !ok || !token.Valid || c.Subject == "" {
		return "", fmt.Errorf("auth: invalid ticket claims")
	}
	return c.Subject, nil
}
