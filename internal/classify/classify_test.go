package classify

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"archive_bot/internal/model"
)

const twoWeeks = 14 * 24 * time.Hour

func msgAt(ts int64, subtype string) *model.Message {
	t := model.Timestamp(ts)
	return &model.Message{EventType: model.EventMessage, Subtype: subtype, Timestamp: &t}
}

func TestIsIgnored(t *testing.T) {
	prefixes := []string{"-", "ext-"}
	tests := []struct {
		name string
		want bool
	}{
		{name: "testing", want: false},
		{name: "-prefixed", want: true},
		{name: "ext-another", want: true},
		{name: "keep-me", want: false},
		{name: "--skip-me", want: true},
		{name: "Ext-upper", want: false},
		{name: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, IsIgnored(tt.name, prefixes)); diff != "" {
				t.Errorf("IsIgnored(%q) mismatch (-want +got):\n%s", tt.name, diff)
			}
		})
	}

	if IsIgnored("anything", []string{""}) {
		t.Error("empty prefix should not match")
	}
}

func TestIsStaleBoundary(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	threshold := int64(1_209_600)

	tests := []struct {
		name string
		ts   int64
		want bool
	}{
		{name: "one second past threshold", ts: now.Unix() - threshold - 1, want: true},
		{name: "exactly threshold", ts: now.Unix() - threshold, want: false},
		{name: "one second inside threshold", ts: now.Unix() - threshold + 1, want: false},
		{name: "no data", ts: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsStale(model.Timestamp(tt.ts), now, twoWeeks)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("IsStale mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	th := Thresholds{IgnorePrefixes: []string{"-", "ext-"}, StaleAfter: twoWeeks, SmallChannel: 3}
	twentyDaysAgo := now.Add(-20 * 24 * time.Hour).Unix()
	yesterday := now.Add(-24 * time.Hour).Unix()

	tests := []struct {
		name       string
		channel    model.Channel
		isMember   bool
		last       *model.Message
		want       model.ChannelVerdict
		reportable bool
	}{
		{
			name:     "member does not count itself",
			channel:  model.Channel{ID: "C1", Name: "five", MemberCount: 5},
			isMember: true,
			last:     msgAt(yesterday, ""),
			want: model.ChannelVerdict{
				ID: "C1", Name: "five", EffectiveMemberCount: 4,
				LastTimestamp: model.Timestamp(yesterday), LastMessageRelevant: true,
			},
		},
		{
			name:     "non member keeps reported count",
			channel:  model.Channel{ID: "C1", Name: "five", MemberCount: 5},
			isMember: false,
			want:     model.ChannelVerdict{ID: "C1", Name: "five", EffectiveMemberCount: 5},
		},
		{
			name:     "missing member count does not go negative",
			channel:  model.Channel{ID: "C9", Name: "nocount", MemberCount: 0, IsMember: true},
			isMember: true,
			want: model.ChannelVerdict{
				ID: "C9", Name: "nocount", EffectiveMemberCount: 0, IsSmall: true,
			},
			reportable: true,
		},
		{
			name:     "small with no data is reportable but not stale",
			channel:  model.Channel{ID: "C2", Name: "tiny", MemberCount: 2},
			isMember: false,
			want: model.ChannelVerdict{
				ID: "C2", Name: "tiny", EffectiveMemberCount: 2, IsSmall: true,
			},
			reportable: true,
		},
		{
			name:     "stale member channel",
			channel:  model.Channel{ID: "C3", Name: "old", MemberCount: 10, IsMember: true},
			isMember: true,
			last:     msgAt(twentyDaysAgo, ""),
			want: model.ChannelVerdict{
				ID: "C3", Name: "old", EffectiveMemberCount: 9,
				LastTimestamp: model.Timestamp(twentyDaysAgo), LastMessageRelevant: true, IsStale: true,
			},
			reportable: true,
		},
		{
			name:     "irrelevant fallback message",
			channel:  model.Channel{ID: "C4", Name: "joins", MemberCount: 10},
			isMember: true,
			last:     msgAt(twentyDaysAgo, "channel_join"),
			want: model.ChannelVerdict{
				ID: "C4", Name: "joins", EffectiveMemberCount: 9,
				LastTimestamp: model.Timestamp(twentyDaysAgo), IsStale: true,
			},
			reportable: true,
		},
		{
			name:     "ignored is never reportable",
			channel:  model.Channel{ID: "C5", Name: "-secret", MemberCount: 1},
			isMember: false,
			want: model.ChannelVerdict{
				ID: "C5", Name: "-secret", EffectiveMemberCount: 1, IsSmall: true, IsIgnored: true,
			},
		},
		{
			name:     "private without data",
			channel:  model.Channel{ID: "G6", Name: "hidden", MemberCount: 3, IsPrivate: true},
			isMember: false,
			want: model.ChannelVerdict{
				ID: "G6", Name: "hidden", EffectiveMemberCount: 3, IsSmall: true, IsPrivate: true,
			},
			reportable: true,
		},
		{
			name:     "message without timestamp is no data",
			channel:  model.Channel{ID: "C7", Name: "odd", MemberCount: 8},
			isMember: true,
			last:     &model.Message{EventType: model.EventMessage},
			want: model.ChannelVerdict{
				ID: "C7", Name: "odd", EffectiveMemberCount: 7, LastMessageRelevant: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.channel, tt.isMember, tt.last, th, now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.reportable, got.Reportable()); diff != "" {
				t.Errorf("Reportable() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
