// Package report renders channel verdicts into the notification text.
package report

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"archive_bot/internal/model"
)

const dateLayout = "Jan 02, 2006 UTC"

// Picker returns an index in [0, n). Tests pass a fixed one.
type Picker func(n int) int

// RandomPicker draws uniformly from the runtime's random source.
func RandomPicker(n int) int {
	return rand.IntN(n)
}

// Report is the set of reportable channels plus the chosen header.
type Report struct {
	Header   string
	Channels []model.ChannelVerdict
}

// New keeps the reportable verdicts in their given order and, if there are
// any, picks one header phrase.
func New(verdicts []model.ChannelVerdict, headers []string, pick Picker) Report {
	var r Report
	for _, v := range verdicts {
		if v.Reportable() {
			r.Channels = append(r.Channels, v)
		}
	}
	if len(r.Channels) > 0 && len(headers) > 0 {
		r.Header = headers[pick(len(headers))]
	}
	return r
}

// Build renders verdicts as Slack mrkdwn. The result is empty when no
// channel is reportable, and must not be posted.
func Build(verdicts []model.ChannelVerdict, headers []string, pick Picker) string {
	return New(verdicts, headers, pick).Slack()
}

// Empty reports whether there is nothing to send.
func (r Report) Empty() bool {
	return len(r.Channels) == 0
}

// Slack renders the report as mrkdwn with channel links and date tokens.
func (r Report) Slack() string {
	return r.render(slackStyle{})
}

// Plain renders the report without Slack markup.
func (r Report) Plain() string {
	return r.render(plainStyle{})
}

type style interface {
	channel(v model.ChannelVerdict) string
	count(n int, small bool) string
	date(ts model.Timestamp) string
	emphasize(s string) string
}

func (r Report) render(st style) string {
	if r.Empty() {
		return ""
	}
	var b strings.Builder
	if r.Header != "" {
		b.WriteString(r.Header)
		b.WriteString("\n")
	}
	for _, v := range r.Channels {
		fmt.Fprintf(&b, "• %s has %s members. %s\n",
			st.channel(v), st.count(v.EffectiveMemberCount, v.IsSmall), activityClause(v, st))
	}
	return b.String()
}

func activityClause(v model.ChannelVerdict, st style) string {
	switch {
	case v.IsPrivate && !v.HasData():
		return "The channel is private, so I can't read the latest message."
	case !v.HasData():
		return "No recent messages."
	case !v.LastMessageRelevant:
		s := fmt.Sprintf("The last event was on %s, but there are no recent messages.", st.date(v.LastTimestamp))
		if v.IsStale {
			return st.emphasize(s)
		}
		return s
	default:
		s := fmt.Sprintf("The last message was on %s.", st.date(v.LastTimestamp))
		if v.IsStale {
			return st.emphasize(s)
		}
		return s
	}
}

type slackStyle struct{}

func (slackStyle) channel(v model.ChannelVerdict) string { return "<#" + v.ID + ">" }

func (slackStyle) count(n int, small bool) string {
	if small {
		return fmt.Sprintf("*%d*", n)
	}
	return fmt.Sprintf("%d", n)
}

// date uses Slack's date token so clients show it in the reader's locale.
func (slackStyle) date(ts model.Timestamp) string {
	if ts == 0 {
		return "[unable to parse timestamp]"
	}
	return fmt.Sprintf("<!date^%d^{date_short}|%s>", ts, ts.Time().Format(dateLayout))
}

func (slackStyle) emphasize(s string) string { return "_" + s + "_" }

type plainStyle struct{}

func (plainStyle) channel(v model.ChannelVerdict) string { return "#" + v.Name }

func (plainStyle) count(n int, _ bool) string { return fmt.Sprintf("%d", n) }

func (plainStyle) date(ts model.Timestamp) string {
	if ts == 0 {
		return "[unable to parse timestamp]"
	}
	return ts.Time().Format(dateLayout)
}

func (plainStyle) emphasize(s string) string { return s }

// Secondary renders the short pointer posted to the secondary channel.
func Secondary(headers []string, primaryChannelID string, pick Picker) string {
	var header string
	if len(headers) > 0 {
		header = headers[pick(len(headers))] + " "
	}
	return fmt.Sprintf("%sSee <#%s> for details.", header, primaryChannelID)
}
