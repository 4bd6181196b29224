package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	xhttp "ETFSheet/pkg/http"
	"ETFSheet/pkg/logger"
)

// Option configures Publisher.
type Option func(*Publisher)

// Publisher pushes rendered files to a GitHub repository through the
// contents API. An existing file is updated in place (its blob SHA is
// looked up first); a missing file is created.
type Publisher struct {
	http    *xhttp.Client
	apiBase string
	token   string
	owner   string
	repo    string
	logger  *logger.Logger
}

// NewPublisher creates a GitHub contents publisher.
func NewPublisher(owner, repo, token string, opts ...Option) *Publisher {
	p := &Publisher{
		http:    xhttp.NewClient(),
		apiBase: "https://api.github.com",
		token:   token,
		owner:   owner,
		repo:    repo,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(p *Publisher) {
		p.http = h
	}
}

// WithAPIBase overrides the API base URL.
func WithAPIBase(base string) Option {
	return func(p *Publisher) {
		if base != "" {
			p.apiBase = base
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

type contentsFile struct {
	SHA string `json:"sha"`
}

type putContentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

// Publish creates or updates filename in the repository with content,
// using message as the commit message.
func (p *Publisher) Publish(ctx context.Context, filename string, content []byte, message string) error {
	sha, err := p.currentSHA(ctx, filename)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", filename, err)
	}

	body := putContentsRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
	}

	err = p.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPut,
		URL:     p.contentsURL(filename),
		Headers: p.headers(),
		Body:    body,
	}, nil)
	if err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}

	action := "created"
	if sha != "" {
		action = "updated"
	}
	p.logger.Info("published file to github",
		logger.String("file", filename),
		logger.String("action", action),
		logger.Int("bytes", len(content)),
	)
	return nil
}

// Check verifies the token can reach the repository.
func (p *Publisher) Check(ctx context.Context) error {
	u := fmt.Sprintf("%s/repos/%s/%s", p.apiBase, url.PathEscape(p.owner), url.PathEscape(p.repo))
	err := p.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     u,
		Headers: p.headers(),
	}, nil)
	if err != nil {
		return fmt.Errorf("github repo check: %w", err)
	}
	return nil
}

// currentSHA returns the blob SHA of filename, or empty if the file
// does not exist yet.
func (p *Publisher) currentSHA(ctx context.Context, filename string) (string, error) {
	var file contentsFile
	err := p.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     p.contentsURL(filename),
		Headers: p.headers(),
	}, &file)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}
	return file.SHA, nil
}

func (p *Publisher) contentsURL(filename string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		p.apiBase, url.PathEscape(p.owner), url.PathEscape(p.repo), filename)
}

func (p *Publisher) headers() map[string]string {
	return map[string]string{
		"Authorization": "token " + p.token,
		"Accept":        "application/vnd.github.v3+json",
	}
}
