// Package model defines the domain types used across the application.
package model

import "time"

// Channel is a workspace conversation as reported by the upstream API.
// ID is stable; the other fields are read fresh on every run.
type Channel struct {
	ID          string
	Name        string
	MemberCount int
	IsMember    bool
	IsPrivate   bool
	IsArchived  bool
}

// Timestamp is a count of whole seconds since the Unix epoch.
type Timestamp int64

// Time converts the timestamp to a UTC time.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// EventMessage is the event type of a plain chat message.
const EventMessage = "message"

// IgnoredSubtypes lists message subtypes that do not count as channel
// activity: bot membership, bot posts, deletions, system membership/topic/
// archive events, pins and posting permission changes.
var IgnoredSubtypes = map[string]struct{}{
	"bot_add":                     {},
	"bot_remove":                  {},
	"bot_message":                 {},
	"message_deleted":             {},
	"channel_join":                {},
	"channel_leave":               {},
	"channel_topic":               {},
	"channel_purpose":             {},
	"channel_name":                {},
	"channel_archive":             {},
	"channel_unarchive":           {},
	"group_join":                  {},
	"group_leave":                 {},
	"group_topic":                 {},
	"group_purpose":               {},
	"group_name":                  {},
	"group_archive":               {},
	"group_unarchive":             {},
	"pinned_item":                 {},
	"unpinned_item":               {},
	"channel_posting_permissions": {},
}

// Message is a single event from a channel's history.
type Message struct {
	EventType string
	Subtype   string
	Timestamp *Timestamp
	Text      string
}

// IsRelevant reports whether the message counts as real activity.
func (m Message) IsRelevant() bool {
	if m.EventType != EventMessage {
		return false
	}
	_, ignored := IgnoredSubtypes[m.Subtype]
	return !ignored
}

// TS returns the message timestamp, or 0 if it has none.
func (m Message) TS() Timestamp {
	if m.Timestamp == nil {
		return 0
	}
	return *m.Timestamp
}

// ChannelVerdict is the classification of one channel for one run.
type ChannelVerdict struct {
	ID                   string
	Name                 string
	LastTimestamp        Timestamp
	LastMessageRelevant  bool
	EffectiveMemberCount int
	IsStale              bool
	IsSmall              bool
	IsIgnored            bool
	IsPrivate            bool
}

// HasData reports whether any message was found for the channel.
func (v ChannelVerdict) HasData() bool {
	return v.LastTimestamp > 0
}

// Reportable reports whether the channel belongs in the report.
func (v ChannelVerdict) Reportable() bool {
	return (v.IsStale || v.IsSmall) && !v.IsIgnored
}
