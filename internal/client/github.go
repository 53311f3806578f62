package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"golang.org/x/oauth2"

	"github.com/glossary/api/internal/model"
)

const (
	DefaultGitHubAPIURL = "https://api.github.com"
	githubAPIVersion    = "2022-11-28"
	githubMediaType     = "application/vnd.github+json"
)

type GitHubConfig struct {
	APIURL  string
	Repo    string // owner/name
	Branch  string
	Path    string
	Token   string
	Timeout time.Duration
}

// GitHubClient reads and writes one file through the GitHub Contents API.
// The file's blob sha is used as the revision token.
type GitHubClient struct {
	cfg        GitHubConfig
	httpClient *http.Client
}

func NewGitHubClient(cfg GitHubConfig) *GitHubClient {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultGitHubAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	httpClient := &http.Client{}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	httpClient.Timeout = cfg.Timeout

	return &GitHubClient{cfg: cfg, httpClient: httpClient}
}

type contentResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type putContentResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

func (c *GitHubClient) request(url string) *requests.Builder {
	return requests.URL(url).
		Client(c.httpClient).
		Header("Accept", githubMediaType).
		Header("X-GitHub-Api-Version", githubAPIVersion)
}

func (c *GitHubClient) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", c.cfg.APIURL, c.cfg.Repo, strings.TrimLeft(c.cfg.Path, "/"))
}

// Get returns the decoded file content and its blob sha.
func (c *GitHubClient) Get(ctx context.Context) ([]byte, string, error) {
	var resp contentResponse
	err := c.request(c.contentsURL()).
		Param("ref", c.cfg.Branch).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		return nil, "", c.mapError("get", err)
	}

	// files over 1MB come back without inline content
	if resp.Encoding == "none" || (resp.Content == "" && resp.SHA != "") {
		if err := c.request(fmt.Sprintf("%s/repos/%s/git/blobs/%s", c.cfg.APIURL, c.cfg.Repo, resp.SHA)).
			ToJSON(&resp).
			Fetch(ctx); err != nil {
			return nil, "", c.mapError("get blob", err)
		}
	}

	content, err := decodeContent(resp.Content)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode %s: %v", model.ErrUpstream, c.cfg.Path, err)
	}
	return content, resp.SHA, nil
}

// Put writes content. An empty sha creates the file; GitHub rejects a
// missing or stale sha for an existing file, which maps to model.ErrConflict.
func (c *GitHubClient) Put(ctx context.Context, content []byte, sha, message string) (string, error) {
	body := putContentRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.cfg.Branch,
		SHA:     sha,
	}

	var resp putContentResponse
	err := c.request(c.contentsURL()).
		Put().
		BodyJSON(&body).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		return "", c.mapError("put", err)
	}
	return resp.Content.SHA, nil
}

// RepoInfo is what the connectivity check learns about the repository.
type RepoInfo struct {
	FullName      string `json:"fullName"`
	DefaultBranch string `json:"defaultBranch"`
	Private       bool   `json:"private"`
	CanPush       bool   `json:"canPush"`
	Branch        string `json:"branch"`
	BranchExists  bool   `json:"branchExists"`
	Path          string `json:"path"`
	FileExists    bool   `json:"fileExists"`
}

type repoResponse struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
	Permissions   struct {
		Push bool `json:"push"`
	} `json:"permissions"`
}

// CheckAccess probes the repository, branch and file the client is
// configured for.
func (c *GitHubClient) CheckAccess(ctx context.Context) (*RepoInfo, error) {
	var repo repoResponse
	if err := c.request(fmt.Sprintf("%s/repos/%s", c.cfg.APIURL, c.cfg.Repo)).
		ToJSON(&repo).
		Fetch(ctx); err != nil {
		return nil, c.mapError("get repository", err)
	}

	info := &RepoInfo{
		FullName:      repo.FullName,
		DefaultBranch: repo.DefaultBranch,
		Private:       repo.Private,
		CanPush:       repo.Permissions.Push,
		Branch:        c.cfg.Branch,
		Path:          c.cfg.Path,
	}

	err := c.request(fmt.Sprintf("%s/repos/%s/branches/%s", c.cfg.APIURL, c.cfg.Repo, c.cfg.Branch)).Fetch(ctx)
	switch {
	case err == nil:
		info.BranchExists = true
	case !requests.HasStatusErr(err, http.StatusNotFound):
		return nil, c.mapError("get branch", err)
	}

	if info.BranchExists {
		_, _, err := c.Get(ctx)
		switch {
		case err == nil:
			info.FileExists = true
		case !errors.Is(err, model.ErrNotFound):
			return nil, err
		}
	}
	return info, nil
}

func (c *GitHubClient) mapError(op string, err error) error {
	switch {
	case requests.HasStatusErr(err, http.StatusNotFound):
		return fmt.Errorf("%w: github %s %s@%s", model.ErrNotFound, op, c.cfg.Path, c.cfg.Branch)
	case requests.HasStatusErr(err, http.StatusConflict, http.StatusUnprocessableEntity):
		return fmt.Errorf("%w: github %s: file changed since it was read", model.ErrConflict, op)
	case requests.HasStatusErr(err, http.StatusUnauthorized, http.StatusForbidden):
		return fmt.Errorf("%w: github %s: credentials rejected: %v", model.ErrUpstream, op, err)
	default:
		return fmt.Errorf("%w: github %s: %v", model.ErrUpstream, op, err)
	}
}

func decodeContent(s string) ([]byte, error) {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	return base64.StdEncoding.DecodeString(s)
}
