package command

import (
	"sync"
)

// Settings is the bot's mutable session state, shared by every concurrent
// message handler. The bot ID is set exactly once at connection time and the
// admin set only ever grows.
type Settings struct {
	mu            sync.Mutex
	botID         *uint64
	adminPassword string
	adminIDs      map[uint64]struct{}
}

// NewSettings creates session state. An empty password disables the auth
// command entirely.
func NewSettings(adminPassword string) *Settings {
	return &Settings{
		adminPassword: adminPassword,
		adminIDs:      make(map[uint64]struct{}),
	}
}

// SetBotID records the bot's own ID once the gateway reports ready. The
// first value sticks; later calls are ignored.
func (s *Settings) SetBotID(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.botID == nil {
		v := id
		s.botID = &v
	}
}

// BotID returns the bot's own ID, or nil before the connection handshake
func (s *Settings) BotID() *uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.botID
}

/*
Authorize attempts a password match for the given user. already reports
whether the user was an admin before the call, ok whether the password
matched this time. The membership check and the insertion happen under one
lock so concurrent attempts can't race; re-inserting an existing admin is a
no-op anyway.
*/
func (s *Settings) Authorize(userID uint64, password string) (already, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, already = s.adminIDs[userID]
	if s.adminPassword == "" || password != s.adminPassword {
		return already, false
	}
	s.adminIDs[userID] = struct{}{}
	return already, true
}

// IsAdmin reports whether the user has ever authorized successfully
func (s *Settings) IsAdmin(userID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.adminIDs[userID]
	return ok
}
