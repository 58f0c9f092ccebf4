// internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Corphon/ReelBoard/internal/models"
)

const defaultTimeout = 2 * time.Minute

// APIError is a non-success envelope returned by the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to the ReelBoard REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL (e.g. http://localhost:8080)
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the server address
func (c *Client) BaseURL() string {
	return c.baseURL
}

type envelope struct {
	Success  bool                `json:"success"`
	Project  *models.Project     `json:"project,omitempty"`
	Projects []*models.Project   `json:"projects,omitempty"`
	Tracks   []models.MusicTrack `json:"tracks,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// SceneText is one {id, text} pair sent to generate-images
type SceneText struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// GenerateScript POST /api/generate-script
func (c *Client) GenerateScript(ctx context.Context, topic string) (*models.Project, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/generate-script", map[string]string{"topic": topic})
	if err != nil {
		return nil, err
	}
	return env.Project, nil
}

// GenerateImages POST /api/generate-images
func (c *Client) GenerateImages(ctx context.Context, projectID string, scenes []SceneText) (*models.Project, error) {
	body := map[string]interface{}{"projectId": projectID, "scenes": scenes}
	env, err := c.do(ctx, http.MethodPost, "/api/generate-images", body)
	if err != nil {
		return nil, err
	}
	return env.Project, nil
}

// RegenerateImage POST /api/regenerate-image/:projectId/:sceneId
func (c *Client) RegenerateImage(ctx context.Context, projectID string, sceneID int) (*models.Project, error) {
	path := fmt.Sprintf("/api/regenerate-image/%s/%d", url.PathEscape(projectID), sceneID)
	env, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}
	return env.Project, nil
}

// UpdateDuration PATCH /api/projects/:projectId/scenes/:sceneId/duration
func (c *Client) UpdateDuration(ctx context.Context, projectID string, sceneID int, duration float64) (*models.Project, error) {
	path := fmt.Sprintf("/api/projects/%s/scenes/%d/duration", url.PathEscape(projectID), sceneID)
	env, err := c.do(ctx, http.MethodPatch, path, map[string]float64{"duration": duration})
	if err != nil {
		return nil, err
	}
	return env.Project, nil
}

// UpdateScript PATCH /api/projects/:projectId/script
func (c *Client) UpdateScript(ctx context.Context, projectID string, scenes []models.SceneInput) (*models.Project, error) {
	path := fmt.Sprintf("/api/projects/%s/script", url.PathEscape(projectID))
	env, err := c.do(ctx, http.MethodPatch, path, map[string]interface{}{"scenes": scenes})
	if err != nil {
		return nil, err
	}
	return env.Project, nil
}

// GetProject GET /api/projects/:projectId
func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(projectID), nil)
	if err != nil {
		return nil, err
	}
	return env.Project, nil
}

// ListProjects GET /api/projects
func (c *Client) ListProjects(ctx context.Context) ([]*models.Project, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/projects", nil)
	if err != nil {
		return nil, err
	}
	return env.Projects, nil
}

// MusicTracks GET /api/music-tracks
func (c *Client) MusicTracks(ctx context.Context) ([]models.MusicTrack, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/music-tracks", nil)
	if err != nil {
		return nil, err
	}
	return env.Tracks, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("序列化请求失败: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return &env, nil
}
