// Package classify turns a channel and its latest activity into a verdict.
package classify

import (
	"strings"
	"time"

	"archive_bot/internal/model"
)

// Thresholds configures classification.
type Thresholds struct {
	IgnorePrefixes []string
	StaleAfter     time.Duration
	SmallChannel   int
}

// IsIgnored reports whether name starts with any of the prefixes.
// Matching is case-sensitive; empty prefixes never match.
func IsIgnored(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// IsStale reports whether a message at ts is older than staleAfter at now.
// A zero timestamp means no data and is never stale.
func IsStale(ts model.Timestamp, now time.Time, staleAfter time.Duration) bool {
	if ts <= 0 {
		return false
	}
	age := now.Unix() - int64(ts)
	return age > int64(staleAfter/time.Second)
}

// Classify builds the verdict for one channel. isMember is the membership
// after any join attempt; last is the message chosen by the activity scan,
// or nil when none was found.
func Classify(ch model.Channel, isMember bool, last *model.Message, th Thresholds, now time.Time) model.ChannelVerdict {
	members := ch.MemberCount
	if isMember {
		// The bot is not part of the community it is auditing.
		members = max(members-1, 0)
	}

	v := model.ChannelVerdict{
		ID:                   ch.ID,
		Name:                 ch.Name,
		EffectiveMemberCount: members,
		IsSmall:              members <= th.SmallChannel,
		IsIgnored:            IsIgnored(ch.Name, th.IgnorePrefixes),
		IsPrivate:            ch.IsPrivate,
	}
	if last != nil {
		v.LastTimestamp = last.TS()
		v.LastMessageRelevant = last.IsRelevant()
	}
	v.IsStale = IsStale(v.LastTimestamp, now, th.StaleAfter)
	return v
}
