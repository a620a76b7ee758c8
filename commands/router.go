// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/danielhkuo/pokerbot/models"
	"github.com/danielhkuo/pokerbot/poker"
)

// Slack shows at most five buttons per attachment.
const buttonsPerAttachment = 5

const (
	textHint          = "Type */pokerbot help* for pokerbot commands."
	textInvalid       = "Invalid command. Type */pokerbot help* for pokerbot commands."
	textNotStarted    = "The poker planning game hasn't started yet."
	textAlreadyOpen   = "Whoops! A game is already in progress.\nUse \"/pokerbot reveal\" to reveal votes & close the current game.\nUse \"/pokerbot reset\" to delete all data and start fresh."
	textNewRound      = "*A new round of planning poker has begun!*"
	textPlaceVote     = "Place your vote using the buttons below, or with `/pokerbot vote <number>`."
	textNoVotesYet    = "*No one has voted yet.*"
	textNoOneVoted    = "*No one voted! Start a new round to try again.*"
	textUnanimous     = ":confetti_ball: *Wow!* :confetti_ball:"
	textSplit         = ":thinking_face: *The votes are in!* The floor is open to discuss your choices."
	textNoArgument    = "Please give a vote value, e.g. `/pokerbot vote 5`."
	textTryAgain      = "Something went wrong, please try again."
	textHelp          = "Pokerbot helps you play Agile/Scrum poker planning.\n\n" +
		"Use the following commands:\n" +
		" `/pokerbot deal [subject]`: start the game, with an optional subject.\n" +
		" `/pokerbot vote <number>`: cast or change your vote.\n" +
		" `/pokerbot tally`: show who's voted so far.\n" +
		" `/pokerbot reveal`: unveil the votes and open the floor!\n" +
		" `/pokerbot reset`: throw away the current round."
)

// Router maps normalized commands onto the engine and renders the result.
type Router struct {
	engine *poker.Engine
	images map[int]string
	now    func() time.Time
}

// NewRouter builds a Router. images maps scale values to picture URLs and
// may be nil.
func NewRouter(engine *poker.Engine, images map[int]string) *Router {
	return &Router{engine: engine, images: images, now: time.Now}
}

// ImagesFromBaseURL maps every scale value to "<base>/<value>.png".
func ImagesFromBaseURL(base string, scale poker.Scale) map[int]string {
	if base == "" {
		return nil
	}
	base = strings.TrimRight(base, "/")
	return lo.SliceToMap(scale.Values(), func(v int) (int, string) {
		return v, fmt.Sprintf("%s/%d.png", base, v)
	})
}

// Dispatch runs one command. It never fails: every error becomes a message.
func (rt *Router) Dispatch(ctx context.Context, cmd models.Command) models.Envelope {
	switch cmd.Subcommand {
	case "":
		return private(textHint)
	case models.SubcommandDeal, models.SubcommandOpen:
		return rt.deal(ctx, cmd)
	case models.SubcommandVote:
		return rt.vote(ctx, cmd)
	case models.SubcommandTally:
		return rt.tally(ctx, cmd)
	case models.SubcommandReveal:
		return rt.reveal(ctx, cmd)
	case models.SubcommandReset:
		return rt.reset(ctx, cmd)
	case models.SubcommandHelp:
		return private(textHelp)
	default:
		return private(textInvalid)
	}
}

func (rt *Router) deal(ctx context.Context, cmd models.Command) models.Envelope {
	subject := strings.Join(cmd.Args, " ")

	_, err := rt.engine.OpenRound(ctx, cmd.Key(), subject, cmd.ResponseURL)
	if errors.Is(err, poker.ErrAlreadyOpen) {
		return private(textAlreadyOpen)
	}
	if err != nil {
		return failure(cmd, err)
	}

	text := textNewRound
	if subject != "" {
		text += "\n*This round's subject:* " + subject
	}
	return models.Envelope{
		Visibility:  models.VisibilityPublic,
		Text:        text,
		Attachments: rt.voteButtons(),
	}
}

func (rt *Router) voteButtons() []models.Attachment {
	values := rt.engine.Scale().Values()
	var attachments []models.Attachment
	for i, chunk := range lo.Chunk(values, buttonsPerAttachment) {
		att := models.Attachment{}
		if i == 0 {
			att.Text = textPlaceVote
		}
		for _, v := range chunk {
			action := models.Action{
				Name:  models.SubcommandVote,
				Text:  strconv.Itoa(v),
				Value: strconv.Itoa(v),
			}
			switch v {
			case values[0]:
				action.Style = "primary"
			case values[len(values)-1]:
				action.Style = "danger"
			}
			att.Actions = append(att.Actions, action)
		}
		attachments = append(attachments, att)
	}
	return attachments
}

func (rt *Router) vote(ctx context.Context, cmd models.Command) models.Envelope {
	var raw string
	if len(cmd.Args) > 0 {
		raw = cmd.Args[0]
	}

	res, err := rt.engine.CastVote(ctx, cmd.Key(), cmd.UserID, cmd.DisplayName(), raw)
	switch {
	case errors.Is(err, poker.ErrRoundNotStarted):
		return private(textNotStarted)
	case errors.Is(err, poker.ErrNoArgument):
		return private(textNoArgument)
	case errors.Is(err, poker.ErrNotANumber):
		return private(fmt.Sprintf("*%s* is not a number. Allowed values: %s.", raw, rt.engine.Scale()))
	case errors.Is(err, poker.ErrOutOfScale):
		return private(fmt.Sprintf("*%s* is not an allowed value. Allowed values: %s.", raw, rt.engine.Scale()))
	case err != nil:
		return failure(cmd, err)
	}

	if res.Replaced {
		return private(fmt.Sprintf("You changed your vote to *%d*.", res.Value))
	}
	return private(fmt.Sprintf("You voted *%d*.", res.Value))
}

func (rt *Router) tally(ctx context.Context, cmd models.Command) models.Envelope {
	res, err := rt.engine.Tally(ctx, cmd.Key())
	if errors.Is(err, poker.ErrRoundNotStarted) {
		return private(textNotStarted)
	}
	if err != nil {
		return failure(cmd, err)
	}

	if len(res.Names) == 0 {
		return public(textNoVotesYet)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Votes so far (round opened %s):\n", humanize.RelTime(res.OpenedAt, rt.now(), "ago", "from now"))
	for _, name := range res.Names {
		b.WriteString("- " + name + "\n")
	}
	return public(b.String())
}

func (rt *Router) reveal(ctx context.Context, cmd models.Command) models.Envelope {
	res, err := rt.engine.Reveal(ctx, cmd.Key())
	if errors.Is(err, poker.ErrRoundNotStarted) {
		return private(textNotStarted)
	}
	if err != nil {
		return failure(cmd, err)
	}

	subjectLine := ""
	if res.Subject != "" {
		subjectLine = "\n*Subject:* " + res.Subject
	}

	switch res.Outcome {
	case poker.OutcomeEmpty:
		return public(textNoOneVoted + subjectLine)

	case poker.OutcomeUnanimous:
		att := models.Attachment{
			Text:  fmt.Sprintf("Everyone selected the same number: *%d*", res.Value),
			Color: models.ColorGood,
		}
		if img, ok := rt.images[res.Value]; ok {
			att.ImageURL = img
		}
		return models.Envelope{
			Visibility:  models.VisibilityPublic,
			Text:        textUnanimous + subjectLine,
			Attachments: []models.Attachment{att},
		}

	default:
		attachments := lo.Map(res.Groups, func(g poker.Group, _ int) models.Attachment {
			att := models.Attachment{
				Text:  fmt.Sprintf("*%d* - %s", g.Value, strings.Join(g.Names, ", ")),
				Color: models.ColorWarning,
			}
			if img, ok := rt.images[g.Value]; ok {
				att.ImageURL = img
				att.Thumbnail = true
			}
			return att
		})
		return models.Envelope{
			Visibility:  models.VisibilityPublic,
			Text:        textSplit + subjectLine,
			Attachments: attachments,
		}
	}
}

func (rt *Router) reset(ctx context.Context, cmd models.Command) models.Envelope {
	if err := rt.engine.Reset(ctx, cmd.Key()); err != nil {
		return failure(cmd, err)
	}
	return public(fmt.Sprintf("Data cleared by %s. Use '/pokerbot deal' to start a new round.", cmd.DisplayName()))
}

func public(text string) models.Envelope {
	return models.Envelope{Visibility: models.VisibilityPublic, Text: text}
}

func private(text string) models.Envelope {
	return models.Envelope{Visibility: models.VisibilityPrivate, Text: text}
}

func failure(cmd models.Command, err error) models.Envelope {
	slog.Error("command failed",
		"subcommand", cmd.Subcommand,
		"team_id", cmd.TeamID,
		"channel_id", cmd.ChannelID,
		"user_id", cmd.UserID,
		"error", err,
	)
	return private(textTryAgain)
}
