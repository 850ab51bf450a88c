package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/puzzle-arcade/game/engine"
	"github.com/wricardo/puzzle-arcade/game/service"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

// CreateSession starts a session for kind and remembers its ID
func (c *Client) CreateSession(ctx context.Context, kind engine.Kind, theme string) (*engine.Snapshot, error) {
	body := map[string]string{"game": string(kind)}
	if theme != "" {
		body["theme"] = theme
	}

	var session service.SessionInfo
	if err := c.do(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

// Resume attaches to an existing session and returns its kind and state
func (c *Client) Resume(ctx context.Context, sessionID string) (engine.Kind, *engine.Snapshot, error) {
	var session service.SessionInfo
	if err := c.do(ctx, "GET", "/api/sessions/"+sessionID, nil, &session); err != nil {
		return "", nil, err
	}
	c.sessionID = session.ID
	return session.Kind, session.GameState, nil
}

func (c *Client) GetState(ctx context.Context) (*engine.Snapshot, error) {
	var snap engine.Snapshot
	if err := c.do(ctx, "GET", c.sessionPath("/state"), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) NewGame(ctx context.Context) (*engine.Snapshot, error) {
	result, err := c.post(ctx, "/new-game", nil)
	if err != nil {
		return nil, err
	}
	return result.GameState, nil
}

// Play sends one action to the engine it targets
func (c *Client) Play(ctx context.Context, a Action) (*service.ActionResult, error) {
	switch a.Kind {
	case engine.KindSlide:
		return c.post(ctx, "/slide", map[string]int{"index": a.Index})
	case engine.KindMemory:
		return c.post(ctx, "/tap", map[string]int{"card_id": a.CardID})
	case engine.KindTileMatch:
		return c.post(ctx, "/swap", map[string]engine.Position{"from": a.From, "to": a.To})
	}
	return nil, fmt.Errorf("%w: %q", engine.ErrUnknownKind, a.Kind)
}

func (c *Client) post(ctx context.Context, suffix string, body interface{}) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do(ctx, "POST", c.sessionPath(suffix), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}
