package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/retry"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxResponseSize      = 1 << 20 // 1MB limit
	defaultScrapeTimeout = 15 * time.Second
)

var (
	newlineRuns    = regexp.MustCompile(`\n+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Scraper fetches a page and flattens it to a single line of text.
type Scraper struct {
	client  *http.Client
	retrier *retry.Retrier
	policy  *bluemonday.Policy
}

func NewScraperWithTimeout(timeout time.Duration, retryCfg *retry.Config) *Scraper {
	if retryCfg == nil {
		retryCfg = retry.NewDefaultConfig()
	}
	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
		retrier: retry.NewRetrier(retryCfg),
		policy:  bluemonday.UGCPolicy(),
	}
}

func NewScraper() *Scraper {
	return NewScraperWithTimeout(defaultScrapeTimeout, nil)
}

func (s *Scraper) Scrape(ctx context.Context, url string) (string, error) {
	var page string
	err := s.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", core.ShannonUserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			if resp.StatusCode < 500 {
				return retry.Permanent(err)
			}
			return err
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}
		page = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	text, err := s.toText(page)
	if err != nil {
		return "", err
	}

	log.FromCtx(ctx).Debug().Str("url", url).Int("chars", len(text)).Msg("scraped page")
	return text, nil
}

// toText drops scripts and styles, extracts the visible text and
// collapses newline runs and then all whitespace runs.
func (s *Scraper) toText(page string) (string, error) {
	clean := s.policy.Sanitize(page)

	text, err := html2text.FromString(clean, html2text.Options{OmitLinks: true})
	if err != nil {
		return "", fmt.Errorf("failed to convert html: %w", err)
	}

	text = newlineRuns.ReplaceAllString(text, "\n")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text), nil
}
