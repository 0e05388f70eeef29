package models

import "time"

// Session is the result of a successful login. It is passed around
// explicitly; nothing in this codebase keeps ambient session state.
type Session struct {
	Token     string    `json:"token"`
	User      UserInfo  `json:"user"`
	ExpiresAt time.Time `json:"-"`
}

type UserInfo struct {
	ID   int64  `json:"id"`
	UUID string `json:"uuid"`
	Name string `json:"name"`
}
