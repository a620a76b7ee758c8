package models

import "time"

// Visibility constants
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Attachment color constants
const (
	ColorGood    = "good"
	ColorWarning = "warning"
	ColorDanger  = "danger"
)

// Subcommand constants
const (
	SubcommandDeal   = "deal"
	SubcommandOpen   = "open"
	SubcommandVote   = "vote"
	SubcommandTally  = "tally"
	SubcommandReveal = "reveal"
	SubcommandReset  = "reset"
	SubcommandHelp   = "help"
)

// Domain types

// Key identifies a session. One round at most exists per key.
type Key struct {
	TeamID    string `json:"team_id"`
	ChannelID string `json:"channel_id"`
}

func (k Key) String() string {
	return k.TeamID + "/" + k.ChannelID
}

type Vote struct {
	UserID      string    `json:"user_id" cbor:"1,keyasint"`
	DisplayName string    `json:"display_name" cbor:"2,keyasint"`
	Value       int       `json:"value" cbor:"3,keyasint"`
	CastAt      time.Time `json:"cast_at" cbor:"4,keyasint"`
}

// Round is a single open voting session. Votes are keyed by user ID.
type Round struct {
	ID          string          `json:"id" cbor:"1,keyasint"`
	Key         Key             `json:"key" cbor:"2,keyasint"`
	Subject     string          `json:"subject,omitempty" cbor:"3,keyasint,omitempty"`
	ResponseURL string          `json:"-" cbor:"4,keyasint"`
	OpenedAt    time.Time       `json:"opened_at" cbor:"5,keyasint"`
	Votes       map[string]Vote `json:"votes" cbor:"6,keyasint"`
}

// Clone returns a copy that shares no mutable state with r.
func (r Round) Clone() Round {
	votes := make(map[string]Vote, len(r.Votes))
	for id, v := range r.Votes {
		votes[id] = v
	}
	r.Votes = votes
	return r
}

// Command types

// Command is a normalized slash-command or button interaction,
// already authenticated by the transport.
type Command struct {
	TeamID      string   `json:"team_id" validate:"required"`
	TeamDomain  string   `json:"team_domain"`
	ChannelID   string   `json:"channel_id" validate:"required"`
	ChannelName string   `json:"channel_name"`
	UserID      string   `json:"user_id" validate:"required"`
	UserName    string   `json:"user_name"`
	ResponseURL string   `json:"response_url" validate:"omitempty,url"`
	Subcommand  string   `json:"subcommand"`
	Args        []string `json:"args"`
}

func (c Command) Key() Key {
	return Key{TeamID: c.TeamID, ChannelID: c.ChannelID}
}

// DisplayName falls back to the user ID when the platform sent no name.
func (c Command) DisplayName() string {
	if c.UserName != "" {
		return c.UserName
	}
	return c.UserID
}

// Response types

type Action struct {
	Name  string `json:"name"`
	Text  string `json:"text"`
	Value string `json:"value"`
	Style string `json:"style,omitempty"`
}

type Attachment struct {
	Text      string   `json:"text"`
	Color     string   `json:"color,omitempty"`
	ImageURL  string   `json:"image_url,omitempty"`
	Thumbnail bool     `json:"thumbnail,omitempty"`
	Actions   []Action `json:"actions,omitempty"`
}

// Envelope is the transport-neutral response to a command.
type Envelope struct {
	Visibility  string       `json:"visibility"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

func (e Envelope) Public() bool {
	return e.Visibility == VisibilityPublic
}

// Notification is a best-effort message to the response sink captured
// when the round was opened.
type Notification struct {
	Sink string `json:"sink"`
	Text string `json:"text"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
