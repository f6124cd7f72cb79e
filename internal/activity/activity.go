// Package activity determines whether the bot can read a channel and finds
// the channel's most recent meaningful message.
package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"archive_bot/internal/classify"
	"archive_bot/internal/model"
	"archive_bot/internal/slack"
)

// API is the subset of the Slack client the inspector needs.
type API interface {
	JoinChannel(ctx context.Context, channelID string) error
	History(ctx context.Context, channelID string, limit int) ([]model.Message, error)
}

// Result is what the inspector learned about one channel.
type Result struct {
	IsMember bool
	Last     *model.Message
}

// Inspector joins channels when it can and reads their recent history.
type Inspector struct {
	api            API
	ignorePrefixes []string
	lookback       int
	log            *slog.Logger
}

// New creates an Inspector scanning lookback messages per channel.
func New(api API, ignorePrefixes []string, lookback int, log *slog.Logger) *Inspector {
	return &Inspector{
		api:            api,
		ignorePrefixes: ignorePrefixes,
		lookback:       lookback,
		log:            log,
	}
}

// Inspect reports the bot's effective membership and the channel's latest
// relevant message. Failures other than an invalid token are logged and
// treated as missing data; only fatal errors are returned.
func (i *Inspector) Inspect(ctx context.Context, ch model.Channel) (Result, error) {
	if classify.IsIgnored(ch.Name, i.ignorePrefixes) {
		return Result{IsMember: ch.IsMember}, nil
	}

	isMember, err := i.maybeJoin(ctx, ch)
	if err != nil {
		return Result{}, err
	}
	if !isMember {
		return Result{IsMember: false}, nil
	}

	history, err := i.api.History(ctx, ch.ID, i.lookback)
	if err != nil {
		if slack.IsFatal(err) || ctx.Err() != nil {
			return Result{}, fmt.Errorf("history %s: %w", ch.ID, err)
		}
		if errors.Is(err, slack.ErrNotInChannel) {
			i.log.Info("not in channel", "channel_id", ch.ID, "channel_name", ch.Name)
		} else {
			i.log.Warn("fetch channel history", "call", "conversations.history",
				"channel_id", ch.ID, "channel_name", ch.Name, "error", err)
		}
		return Result{IsMember: true}, nil
	}

	return Result{IsMember: true, Last: LastRelevant(history)}, nil
}

// maybeJoin joins public channels the bot is not in yet and returns the
// resulting membership. A failed join leaves the reported membership.
func (i *Inspector) maybeJoin(ctx context.Context, ch model.Channel) (bool, error) {
	if ch.IsMember || ch.IsPrivate {
		return ch.IsMember, nil
	}

	i.log.Debug("joining channel", "channel_id", ch.ID, "channel_name", ch.Name)
	if err := i.api.JoinChannel(ctx, ch.ID); err != nil {
		if slack.IsFatal(err) || ctx.Err() != nil {
			return false, fmt.Errorf("join %s: %w", ch.ID, err)
		}
		i.log.Warn("join channel", "call", "conversations.join",
			"channel_id", ch.ID, "channel_name", ch.Name, "error", err)
		return ch.IsMember, nil
	}

	i.log.Info("joined channel", "channel_id", ch.ID, "channel_name", ch.Name)
	return true, nil
}

// LastRelevant picks the newest relevant message with a timestamp from a
// newest-first history. If there is none it falls back to the newest
// message of any kind, so a channel with only system events still shows
// when it was last touched. It returns nil for an empty history.
func LastRelevant(history []model.Message) *model.Message {
	for idx := range history {
		m := history[idx]
		if m.IsRelevant() && m.Timestamp != nil {
			return &m
		}
	}
	if len(history) == 0 {
		return nil
	}
	first := history[0]
	return &first
}
