package lichess

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"dysprosium/internal/logging"
)

const baseURL = "https://lichess.org"

// Client is a bearer-token-authenticated Lichess Bot API client. Every
// request carries "Authorization: Bearer <token>", mirroring the
// original's LichessApi::request.
type Client struct {
	token string
	http  *http.Client
	log   zerolog.Logger
}

// NewClient returns a Client authenticating with token.
func NewClient(token string) *Client {
	return &Client{
		token: token,
		http:  &http.Client{},
		log:   logging.For("lichess"),
	}
}

func (c *Client) do(method, path string, body string) (*http.Response, error) {
	req, err := http.NewRequest(method, baseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "build request %s %s", method, path)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return c.http.Do(req)
}

func success(code int) bool { return code >= 200 && code <= 299 }

// Listen streams the account-wide event feed
// (/api/stream/event), calling onEvent for each decoded Event until the
// stream ends or an error occurs. Grounded on the original's
// LichessApi::listen + JsonStreamIter: one NDJSON-framed decode per
// non-empty line, keep-alive blank lines skipped.
func (c *Client) Listen(onEvent func(Event)) error {
	c.log.Info().Msg("starting to listen for incoming games")

	resp, err := c.do(http.MethodGet, "/api/stream/event", "")
	if err != nil {
		return errors.Wrap(err, "open event stream")
	}
	defer resp.Body.Close()

	return streamNDJSON(resp.Body, func(line []byte) {
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			c.log.Error().Err(err).Msg("got error in event stream")
			return
		}
		onEvent(ev)
	})
}

// ListenGame streams one game's state
// (/api/bot/game/stream/{id}), calling onEvent for each decoded
// GameEvent.
func (c *Client) ListenGame(gameID string, onEvent func(GameEvent)) error {
	resp, err := c.do(http.MethodGet, "/api/bot/game/stream/"+gameID, "")
	if err != nil {
		return errors.Wrap(err, "open game stream")
	}
	defer resp.Body.Close()

	return streamNDJSON(resp.Body, func(line []byte) {
		var ev GameEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			c.log.Error().Err(err).Str("game", gameID).Msg("got error in game event stream")
			return
		}
		onEvent(ev)
	})
}

// SendMove submits uci (e.g. "e2e4", "e7e8q") as the bot's move in
// gameID, retrying on transport failure the way the original's
// send_move loops on a failed self.http call.
func (c *Client) SendMove(gameID, uci string) {
	for {
		resp, err := c.do(http.MethodPost, fmt.Sprintf("/api/bot/game/%s/move/%s", gameID, uci), "")
		if err != nil {
			c.log.Warn().Err(err).Str("game", gameID).Msg("move request failed, retrying")
			continue
		}
		defer resp.Body.Close()

		if !success(resp.StatusCode) {
			var apiErr apiError
			_ = json.NewDecoder(resp.Body).Decode(&apiErr)
			c.log.Warn().Str("move", uci).Str("reason", apiErr.Error).Msg("move rejected")
		}
		return
	}
}

// AcceptChallenge accepts an incoming challenge by id.
func (c *Client) AcceptChallenge(id string) {
	resp, err := c.do(http.MethodPost, "/api/challenge/"+id+"/accept", "")
	if err != nil || !success(resp.StatusCode) {
		c.log.Warn().Str("id", id).Msg("failed to accept challenge")
	}
	if resp != nil {
		resp.Body.Close()
	}
}

// DeclineChallenge declines an incoming challenge by id, with a reason
// Lichess recognizes ("standard", "timeControl", "casual", ...).
func (c *Client) DeclineChallenge(id, reason string) {
	form := "reason=" + reason
	resp, err := c.do(http.MethodPost, "/api/challenge/"+id+"/decline", form)
	if err != nil || !success(resp.StatusCode) {
		c.log.Warn().Str("id", id).Msg("failed to decline challenge")
	}
	if resp != nil {
		resp.Body.Close()
	}
}

// streamNDJSON reads newline-delimited JSON objects from r, calling
// onLine for each non-empty line (the original's JsonStreamIter skips
// blank keep-alive lines the same way).
func streamNDJSON(r io.Reader, onLine func([]byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		onLine(line)
	}
	return scanner.Err()
}
