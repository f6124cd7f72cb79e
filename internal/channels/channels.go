// Package channels enumerates every channel in the workspace.
package channels

import (
	"context"
	"fmt"
	"log/slog"

	"archive_bot/internal/model"
	"archive_bot/internal/slack"
)

// PageLister fetches one page of channels.
type PageLister interface {
	ListChannelsPage(ctx context.Context, cursor string, limit int) (slack.Page, error)
}

// Enumerator pages through conversations.list.
type Enumerator struct {
	lister   PageLister
	pageSize int
	log      *slog.Logger
}

// New creates an Enumerator requesting pageSize channels per page.
func New(lister PageLister, pageSize int, log *slog.Logger) *Enumerator {
	return &Enumerator{lister: lister, pageSize: pageSize, log: log}
}

// List returns every channel, following cursors until one comes back empty
// or repeats an earlier one.
//
// A failure on the first page is returned as an error: there is nothing to
// report on. A failure on a later page stops the enumeration and the
// channels gathered so far are returned with a nil error, so a partial
// listing still produces a partial report. An invalid token is always
// returned as an error.
//
// Channels are deduplicated by id. A repeated id keeps its first position
// and takes the fields of the last occurrence.
func (e *Enumerator) List(ctx context.Context) ([]model.Channel, error) {
	var (
		result []model.Channel
		index  = make(map[string]int)
		seen   = map[string]bool{"": true}
		cursor string
		pages  int
	)

	for {
		page, err := e.lister.ListChannelsPage(ctx, cursor, e.pageSize)
		if err != nil {
			if pages == 0 || slack.IsFatal(err) || ctx.Err() != nil {
				return nil, fmt.Errorf("list channels page %d: %w", pages+1, err)
			}
			e.log.Warn("list channels stopped early",
				"call", "conversations.list", "page", pages+1, "collected", len(result), "error", err)
			break
		}
		pages++

		for _, ch := range page.Channels {
			if i, ok := index[ch.ID]; ok {
				e.log.Debug("duplicate channel in listing", "channel_id", ch.ID, "channel_name", ch.Name)
				result[i] = ch
				continue
			}
			index[ch.ID] = len(result)
			result = append(result, ch)
		}

		if page.NextCursor == "" {
			break
		}
		if seen[page.NextCursor] {
			e.log.Warn("list channels stopped on repeated cursor",
				"call", "conversations.list", "page", pages, "collected", len(result), "cursor", page.NextCursor)
			break
		}
		seen[page.NextCursor] = true
		cursor = page.NextCursor
	}

	e.log.Debug("channels found", "count", len(result), "pages", pages)
	return result, nil
}
