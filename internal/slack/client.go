// Package slack talks to the Slack Web API and normalizes its loosely typed
// responses into domain values.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"archive_bot/internal/model"
)

// DefaultBaseURL is the public Web API endpoint.
const DefaultBaseURL = "https://slack.com/api"

const maxBodySize = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Page is one page of conversations.list.
type Page struct {
	Channels   []model.Channel
	NextCursor string
}

// Identity is the result of auth.test.
type Identity struct {
	UserID string
	BotID  string
	Team   string
	URL    string
}

// envelope is the wrapper every Web API response shares.
type envelope struct {
	OK               Bool              `json:"ok"`
	Error            string            `json:"error"`
	Warning          string            `json:"warning"`
	Channels         []json.RawMessage `json:"channels"`
	Messages         []json.RawMessage `json:"messages"`
	URL              string            `json:"url"`
	Team             string            `json:"team"`
	User             string            `json:"user"`
	UserID           string            `json:"user_id"`
	BotID            string            `json:"bot_id"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

// decodeEnvelope parses body and turns ok=false into an *APIError.
func decodeEnvelope(method string, body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &MalformedResponseError{Method: method, Body: snippet(body), Err: err}
	}
	if !env.OK {
		return nil, &APIError{Method: method, Code: ParseErrorCode(env.Error), Raw: env.Error}
	}
	return &env, nil
}

func snippet(body []byte) string {
	const n = 200
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}

// Client calls the Web API with a bot token.
type Client struct {
	client  HTTPClient
	baseURL string
	token   string
	log     *slog.Logger
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(client HTTPClient, baseURL, token string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		log:     log,
	}
}

// NewHTTPClient returns the HTTP client used in production.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) call(ctx context.Context, method string, params url.Values) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", "ArchiveBot/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &APIError{Method: method, Code: CodeRateLimited, Raw: "ratelimited"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("read body: %w", err)}
	}

	env, err := decodeEnvelope(method, body)
	if err != nil {
		return nil, err
	}
	if env.Warning != "" {
		c.log.Debug("api warning", "call", method, "warning", env.Warning)
	}
	return env, nil
}

// AuthTest checks the token and returns the identity it belongs to.
func (c *Client) AuthTest(ctx context.Context) (Identity, error) {
	env, err := c.call(ctx, "auth.test", url.Values{})
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID: env.UserID,
		BotID:  env.BotID,
		Team:   env.Team,
		URL:    env.URL,
	}, nil
}

// ListChannelsPage fetches one page of non-archived public and private
// channels. An empty cursor requests the first page.
func (c *Client) ListChannelsPage(ctx context.Context, cursor string, limit int) (Page, error) {
	params := url.Values{
		"exclude_archived": {"true"},
		"limit":            {strconv.Itoa(limit)},
		"types":            {"public_channel,private_channel"},
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	env, err := c.call(ctx, "conversations.list", params)
	if err != nil {
		return Page{}, err
	}

	channels, dropped := DecodeChannels(env.Channels)
	for _, d := range dropped {
		c.log.Warn("drop channel record", "call", "conversations.list", "index", d.Index, "error", d.Err)
	}
	return Page{Channels: channels, NextCursor: env.ResponseMetadata.NextCursor}, nil
}

// History returns up to limit of the most recent messages in a channel,
// newest first.
func (c *Client) History(ctx context.Context, channelID string, limit int) ([]model.Message, error) {
	params := url.Values{
		"channel": {channelID},
		"limit":   {strconv.Itoa(limit)},
	}

	env, err := c.call(ctx, "conversations.history", params)
	if err != nil {
		return nil, err
	}

	messages, dropped := DecodeMessages(env.Messages)
	for _, d := range dropped {
		c.log.Warn("drop message record", "call", "conversations.history", "channel_id", channelID, "index", d.Index, "error", d.Err)
	}
	return messages, nil
}

// JoinChannel adds the bot to a public channel.
func (c *Client) JoinChannel(ctx context.Context, channelID string) error {
	_, err := c.call(ctx, "conversations.join", url.Values{"channel": {channelID}})
	return err
}

// PostMessage posts mrkdwn text to a channel.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	params := url.Values{
		"channel": {channelID},
		"text":    {text},
		"mrkdwn":  {"true"},
	}
	_, err := c.call(ctx, "chat.postMessage", params)
	return err
}
