package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/retry"
)

const defaultTimeout = 10 * time.Second

var ErrInvalidStoryKey = errors.New("invalid story format: expected XXX-1234, a /browse/XXX-1234 link or git checkout -b XXX-1234-summary")

var (
	bareKey   = regexp.MustCompile(`^[A-Z]{3}-\d{2,}$`)
	browseKey = regexp.MustCompile(`https?://[^\s/]+/browse/([A-Z]{3}-\d{2,})`)
	branchKey = regexp.MustCompile(`git checkout -b ([A-Z]{3}-\d{2,})`)
)

// ParseStoryKey extracts an issue key from a bare key, a browse URL or a
// git checkout command.
func ParseStoryKey(story string) (string, error) {
	story = strings.TrimSpace(story)
	if bareKey.MatchString(story) {
		return story, nil
	}
	for _, re := range []*regexp.Regexp{browseKey, branchKey} {
		if m := re.FindStringSubmatch(story); m != nil {
			return m[1], nil
		}
	}
	return "", ErrInvalidStoryKey
}

type Client struct {
	baseURL string
	client  *http.Client
	retrier *retry.Retrier
}

func NewClient(baseURL string, retryCfg *retry.Config) *Client {
	if retryCfg == nil {
		retryCfg = retry.NewDefaultConfig()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		retrier: retry.NewRetrier(retryCfg),
	}
}

// StoryDescription returns fields.description of the issue, or "" when
// the issue has none. token is sent as HTTP Basic credentials.
func (c *Client) StoryDescription(ctx context.Context, story, token string) (string, error) {
	key, err := ParseStoryKey(story)
	if err != nil {
		return "", err
	}

	var issue struct {
		Fields struct {
			Description *string `json:"description"`
		} `json:"fields"`
	}
	endpoint := fmt.Sprintf("%s/rest/api/latest/issue/%s", c.baseURL, url.PathEscape(key))

	err = c.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Authorization", "Basic "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", core.ShannonUserAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("jira request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("jira: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			if resp.StatusCode < 500 {
				return retry.Permanent(err)
			}
			return err
		}

		if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
			return retry.Permanent(fmt.Errorf("decode issue: %w", err))
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.FromCtx(ctx).Debug().Str("story", key).Msg("fetched jira story")
	if issue.Fields.Description == nil {
		return "", nil
	}
	return *issue.Fields.Description, nil
}
