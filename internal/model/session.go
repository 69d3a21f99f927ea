package model

import "time"

// GatewaySession is this server's own record of one browser's session: the
// backend token pair it holds on that browser's behalf.
//
// The browser never sees these tokens. It carries only a signed ticket
// cookie containing the session ID; the tokens live in our SQLite store and
// are attached to backend calls server-side. Logging out deletes the row.
type GatewaySession struct {
	ID           string    `json:"id"            db:"id"`
	AccessToken  string    `json:"-"             db:"access_token"`
	RefreshToken string    `json:"-"             db:"refresh_token"`
	CreatedAt    time.Time `json:"createdAt"     db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"     db:"updated_at"`
}
