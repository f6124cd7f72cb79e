package slack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"archive_bot/internal/model"
)

// ParseBool reads a loosely typed boolean. false, 0, "", "0", "false",
// "FALSE" and null are false; any other value is true. It never fails.
func ParseBool(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return true
		}
		switch s {
		case "", "0", "false", "FALSE":
			return false
		}
		return true
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return true
	}
	return f != 0
}

// Bool is a JSON boolean that accepts every encoding ParseBool does.
type Bool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bool) UnmarshalJSON(data []byte) error {
	*b = Bool(ParseBool(data))
	return nil
}

// ParseTimestamp reads a timestamp sent as a JSON number or as a string
// holding an integer or decimal number of seconds. The fractional part is
// dropped. An absent or null value yields nil without error.
func ParseTimestamp(raw []byte) (*model.Timestamp, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	malformed := &MalformedTimestampError{Raw: string(raw)}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, malformed
		}
		if i := strings.IndexByte(s, '.'); i >= 0 {
			s = s[:i]
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, malformed
		}
		ts := model.Timestamp(n)
		return &ts, nil
	case c == '-' || (c >= '0' && c <= '9'):
		s := string(raw)
		if !strings.ContainsAny(s, ".eE") {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, malformed
			}
			ts := model.Timestamp(n)
			return &ts, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, malformed
		}
		ts := model.Timestamp(int64(f))
		return &ts, nil
	}
	return nil, malformed
}

// Conversation object, trimmed to what the audit reads.
// https://api.slack.com/types/conversation
type rawChannel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NumMembers  int    `json:"num_members"`
	IsChannel   Bool   `json:"is_channel"`
	IsGroup     Bool   `json:"is_group"`
	IsGeneral   Bool   `json:"is_general"`
	IsMember    Bool   `json:"is_member"`
	IsPrivate   Bool   `json:"is_private"`
	IsArchived  Bool   `json:"is_archived"`
	IsShared    Bool   `json:"is_shared"`
	IsExtShared Bool   `json:"is_ext_shared"`
}

var errMissingID = errors.New("missing channel id")

func (c rawChannel) toModel() (model.Channel, error) {
	if c.ID == "" {
		return model.Channel{}, errMissingID
	}
	return model.Channel{
		ID:          c.ID,
		Name:        c.Name,
		MemberCount: c.NumMembers,
		IsMember:    bool(c.IsMember),
		IsPrivate:   bool(c.IsPrivate),
		IsArchived:  bool(c.IsArchived),
	}, nil
}

// Message event, trimmed.
// https://api.slack.com/events/message
type rawMessage struct {
	Type    string          `json:"type"`
	Subtype string          `json:"subtype"`
	User    string          `json:"user"`
	Text    string          `json:"text"`
	TS      json.RawMessage `json:"ts"`
}

func (m rawMessage) toModel() (model.Message, error) {
	ts, err := ParseTimestamp(m.TS)
	if err != nil {
		return model.Message{}, err
	}
	return model.Message{
		EventType: m.Type,
		Subtype:   m.Subtype,
		Timestamp: ts,
		Text:      m.Text,
	}, nil
}

// RecordError describes one record dropped from an otherwise good page.
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

// DecodeChannels converts raw conversation records. Records that fail to
// decode or lack an id are skipped and reported in dropped.
func DecodeChannels(raws []json.RawMessage) (channels []model.Channel, dropped []RecordError) {
	for i, raw := range raws {
		var rc rawChannel
		if err := json.Unmarshal(raw, &rc); err != nil {
			dropped = append(dropped, RecordError{Index: i, Err: err})
			continue
		}
		ch, err := rc.toModel()
		if err != nil {
			dropped = append(dropped, RecordError{Index: i, Err: err})
			continue
		}
		channels = append(channels, ch)
	}
	return channels, dropped
}

// DecodeMessages converts raw message records, skipping malformed ones.
func DecodeMessages(raws []json.RawMessage) (messages []model.Message, dropped []RecordError) {
	for i, raw := range raws {
		var rm rawMessage
		if err := json.Unmarshal(raw, &rm); err != nil {
			dropped = append(dropped, RecordError{Index: i, Err: err})
			continue
		}
		msg, err := rm.toModel()
		if err != nil {
			dropped = append(dropped, RecordError{Index: i, Err: err})
			continue
		}
		messages = append(messages, msg)
	}
	return messages, dropped
}
