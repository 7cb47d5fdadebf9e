package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

// SessionID identifies one isolated draw session.
type SessionID uuid.UUID

// RosterID identifies one normalized roster held in memory.
type RosterID uuid.UUID

// NewSessionID returns a random session ID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewRosterID returns a random roster ID.
func NewRosterID() RosterID { return RosterID(uuid.New()) }

func (id SessionID) String() string { return uuid.UUID(id).String() }

func (id RosterID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// IsNil reports whether the ID is the zero UUID.
func (id RosterID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseSessionID parses external input into a SessionID.
//
// Errors: CodeInvalidArgument when the value is empty, malformed or the nil UUID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

// ParseRosterID parses external input into a RosterID.
//
// Errors: CodeInvalidArgument when the value is empty, malformed or the nil UUID.
func ParseRosterID(s string) (RosterID, error) {
	u, err := parseUUID(s, "roster id")
	if err != nil {
		return RosterID{}, err
	}
	return RosterID(u), nil
}

func parseUUID(s, what string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidArgument, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidArgument, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidArgument, "invalid "+what)
	}
	return u, nil
}
