package rbl

// Status is a room's lifecycle state. Transitions only move forward:
// waiting -> playing -> finished.
type Status string

// The three room lifecycle states.
const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusPlaying, StatusFinished:
		return true
	}
	return false
}

// Role tags which seat a player occupies in a room.
type Role string

// The two seats in a room.
const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// RoleFor maps the host flag a client sends to a seat tag.
func RoleFor(isHost bool) Role {
	if isHost {
		return RoleHost
	}
	return RoleGuest
}

// Platform is the identity provider a user signed in with.
type Platform string

// Supported identity platforms. Mock exists for local play without OAuth.
const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformMock      Platform = "mock"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformFacebook, PlatformInstagram, PlatformMock:
		return true
	}
	return false
}
