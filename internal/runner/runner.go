// Package runner performs one audit: list channels, inspect them in
// parallel, classify, and post a single report.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"archive_bot/internal/activity"
	"archive_bot/internal/channels"
	"archive_bot/internal/classify"
	"archive_bot/internal/model"
	"archive_bot/internal/report"
	"archive_bot/internal/slack"
)

// API is the Slack surface a run needs.
type API interface {
	AuthTest(ctx context.Context) (slack.Identity, error)
	ListChannelsPage(ctx context.Context, cursor string, limit int) (slack.Page, error)
	JoinChannel(ctx context.Context, channelID string) error
	History(ctx context.Context, channelID string, limit int) ([]model.Message, error)
	PostMessage(ctx context.Context, channelID, text string) error
}

// Mirror receives a plain-text copy of a posted report.
type Mirror interface {
	SendReport(text string) int
}

// Options configures a run.
type Options struct {
	NotificationChannel     string
	SecondaryChannel        string
	MessageHeaders          []string
	SecondaryMessageHeaders []string
	Thresholds              classify.Thresholds
	HistoryLookback         int
	PageSize                int
	Concurrency             int
	DryRun                  bool
}

// Summary describes the outcome of a run.
type Summary struct {
	RunID      string
	BotUserID  string
	Channels   int
	Reportable int
	Posted     bool
	Mirrored   int
}

// Runner executes audit runs.
type Runner struct {
	api    API
	opts   Options
	mirror Mirror
	pick   report.Picker
	now    func() time.Time
	out    io.Writer
	log    *slog.Logger
}

// New creates a Runner using the random header picker and the wall clock.
func New(api API, opts Options, log *slog.Logger) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Runner{
		api:  api,
		opts: opts,
		pick: report.RandomPicker,
		now:  time.Now,
		out:  os.Stdout,
		log:  log,
	}
}

// SetMirror enables mirroring posted reports.
func (r *Runner) SetMirror(m Mirror) {
	r.mirror = m
}

// SetPicker overrides the header picker.
func (r *Runner) SetPicker(p report.Picker) {
	r.pick = p
}

// SetClock overrides the time source used for staleness.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// SetOutput sets where dry-run reports are written.
func (r *Runner) SetOutput(w io.Writer) {
	r.out = w
}

// Run performs one audit. It returns an error, and posts nothing, when the
// token is rejected, the first page of channels cannot be listed, or ctx is
// cancelled before the report is sent.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	log := r.log.With("run_id", sum.RunID)

	id, err := r.api.AuthTest(ctx)
	if err != nil {
		return sum, fmt.Errorf("auth test: %w", err)
	}
	sum.BotUserID = id.UserID
	log.Info("authenticated", "user_id", id.UserID, "team", id.Team)

	chans, err := channels.New(r.api, r.opts.PageSize, log).List(ctx)
	if err != nil {
		return sum, err
	}
	sum.Channels = len(chans)
	log.Info("listed channels", "count", len(chans))

	verdicts, err := r.inspectAll(ctx, chans, log)
	if err != nil {
		return sum, err
	}

	rep := report.New(verdicts, r.opts.MessageHeaders, r.pick)
	sum.Reportable = len(rep.Channels)
	if rep.Empty() {
		log.Info("nothing to report")
		return sum, nil
	}

	if r.opts.DryRun {
		_, _ = fmt.Fprint(r.out, rep.Slack())
		log.Info("dry run, report not posted", "reportable", sum.Reportable)
		return sum, nil
	}

	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("before posting: %w", err)
	}

	if err := r.api.PostMessage(ctx, r.opts.NotificationChannel, rep.Slack()); err != nil {
		log.Error("post report", "call", "chat.postMessage", "channel_id", r.opts.NotificationChannel, "error", err)
		if slack.IsFatal(err) {
			return sum, fmt.Errorf("post report: %w", err)
		}
		return sum, nil
	}
	sum.Posted = true
	log.Info("posted report", "channel_id", r.opts.NotificationChannel, "reportable", sum.Reportable)

	r.postSecondary(ctx, log)

	if r.mirror != nil {
		sum.Mirrored = r.mirror.SendReport(rep.Plain())
	}

	return sum, nil
}

// inspectAll inspects and classifies every channel with a bounded number of
// concurrent workers. Verdicts keep the enumeration order.
func (r *Runner) inspectAll(ctx context.Context, chans []model.Channel, log *slog.Logger) ([]model.ChannelVerdict, error) {
	insp := activity.New(r.api, r.opts.Thresholds.IgnorePrefixes, r.opts.HistoryLookback, log)
	now := r.now()
	verdicts := make([]model.ChannelVerdict, len(chans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, ch := range chans {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := insp.Inspect(gctx, ch)
			if err != nil {
				return err
			}
			verdicts[i] = classify.Classify(ch, res.IsMember, res.Last, r.opts.Thresholds, now)
			log.Debug("classified channel",
				"channel_id", ch.ID, "channel_name", ch.Name,
				"members", verdicts[i].EffectiveMemberCount,
				"stale", verdicts[i].IsStale, "small", verdicts[i].IsSmall, "ignored", verdicts[i].IsIgnored)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("inspect channels: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("inspect channels: %w", err)
	}
	return verdicts, nil
}

func (r *Runner) postSecondary(ctx context.Context, log *slog.Logger) {
	if r.opts.SecondaryChannel == "" {
		return
	}
	text := report.Secondary(r.opts.SecondaryMessageHeaders, r.opts.NotificationChannel, r.pick)
	if err := r.api.PostMessage(ctx, r.opts.SecondaryChannel, text); err != nil {
		log.Error("post secondary notice", "call", "chat.postMessage", "channel_id", r.opts.SecondaryChannel, "error", err)
		return
	}
	log.Info("posted secondary notice", "channel_id", r.opts.SecondaryChannel)
}
