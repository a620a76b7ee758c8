// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package slack

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	slackgo "github.com/slack-go/slack"

	"github.com/danielhkuo/pokerbot/models"
)

// Response type constants
const (
	ResponseTypeInChannel = slackgo.ResponseTypeInChannel
	ResponseTypeEphemeral = slackgo.ResponseTypeEphemeral
)

// CallbackID tags the vote buttons so interactions can be routed back.
const CallbackID = "pokerbot_attachments"

const actionButton slackgo.ActionType = "button"

var (
	ErrMissingField   = errors.New("missing required field")
	ErrInvalidPayload = errors.New("invalid interactive payload")
	ErrNoAction       = errors.New("interactive payload has no action")
)

// Message is the JSON document returned to Slack or posted to a response URL.
type Message = slackgo.Msg

// Outbound

// Render converts an envelope to a Slack message. Public envelopes are
// posted in_channel, private ones are ephemeral.
func Render(e models.Envelope) Message {
	msg := Message{
		Text:         e.Text,
		ResponseType: ResponseTypeEphemeral,
	}
	if e.Public() {
		msg.ResponseType = ResponseTypeInChannel
	}

	for _, a := range e.Attachments {
		att := slackgo.Attachment{
			Text:       a.Text,
			Color:      a.Color,
			CallbackID: CallbackID,
			MarkdownIn: []string{"text"},
		}
		if a.ImageURL != "" {
			if a.Thumbnail {
				att.ThumbURL = a.ImageURL
			} else {
				att.ImageURL = a.ImageURL
			}
		}
		for _, act := range a.Actions {
			att.Actions = append(att.Actions, slackgo.AttachmentAction{
				Name:  act.Name,
				Text:  act.Text,
				Value: act.Value,
				Type:  actionButton,
				Style: act.Style,
			})
		}
		msg.Attachments = append(msg.Attachments, att)
	}
	return msg
}

// RenderNotification builds the delayed message posted to a response URL.
func RenderNotification(n models.Notification) Message {
	return Message{Text: n.Text, ResponseType: ResponseTypeInChannel}
}

// Inbound

// ParseRequest reads a slash command or, when the form carries a payload
// field, a button click. It returns the command and the verification
// token the request carried. The token is returned even when parsing
// fails so callers can authenticate first.
func ParseRequest(r *http.Request) (models.Command, string, error) {
	if err := r.ParseForm(); err != nil {
		return models.Command{}, "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if payload := r.PostForm.Get("payload"); payload != "" {
		var cb slackgo.InteractionCallback
		if err := json.Unmarshal([]byte(payload), &cb); err != nil {
			return models.Command{}, "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		cmd, err := FromInteraction(cb)
		return cmd, cb.Token, err
	}

	sc, err := slackgo.SlashCommandParse(r)
	if err != nil {
		return models.Command{}, "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	cmd, err := FromSlashCommand(sc)
	return cmd, sc.Token, err
}

// FromSlashCommand normalizes a slash command. The first word of the text
// is the subcommand, lowercased; the remaining words are its arguments.
func FromSlashCommand(sc slackgo.SlashCommand) (models.Command, error) {
	required := []struct{ field, value string }{
		{"team_id", sc.TeamID},
		{"channel_id", sc.ChannelID},
		{"user_id", sc.UserID},
	}
	for _, r := range required {
		if r.value == "" {
			return models.Command{}, fmt.Errorf("%w: %s", ErrMissingField, r.field)
		}
	}

	cmd := models.Command{
		TeamID:      sc.TeamID,
		TeamDomain:  sc.TeamDomain,
		ChannelID:   sc.ChannelID,
		ChannelName: sc.ChannelName,
		UserID:      sc.UserID,
		UserName:    sc.UserName,
		ResponseURL: sc.ResponseURL,
	}

	fields := strings.Fields(sc.Text)
	if len(fields) > 0 {
		cmd.Subcommand = strings.ToLower(fields[0])
		cmd.Args = fields[1:]
	}
	return cmd, nil
}

// FromInteraction normalizes a button click. The first attachment action
// becomes the subcommand (vote when unnamed) with its value as argument.
func FromInteraction(cb slackgo.InteractionCallback) (models.Command, error) {
	actions := cb.ActionCallback.AttachmentActions
	if len(actions) == 0 || actions[0] == nil {
		return models.Command{}, ErrNoAction
	}

	action := actions[0]
	subcommand := action.Name
	if subcommand == "" {
		subcommand = models.SubcommandVote
	}

	cmd := models.Command{
		TeamID:      cb.Team.ID,
		TeamDomain:  cb.Team.Domain,
		ChannelID:   cb.Channel.ID,
		ChannelName: cb.Channel.Name,
		UserID:      cb.User.ID,
		UserName:    cb.User.Name,
		ResponseURL: cb.ResponseURL,
		Subcommand:  subcommand,
	}
	if action.Value != "" {
		cmd.Args = []string{action.Value}
	}
	return cmd, nil
}
