package rag_service

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// mainContentSelectors are common containers for article bodies; the
// full page body is the fallback when none of them match.
const mainContentSelectors = "article, .content, #content, main, .post, #main, .entry-content, .post-content, .blog-post, #primary, #main-content, .text, .text-content, #body-content, .post-article"

// WebPageFetcher extracts readable text from a web page so it can be
// ingested like any other document.
type WebPageFetcher struct {
	httpClient *http.Client
}

func NewWebPageFetcher() *WebPageFetcher {
	return &WebPageFetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *WebPageFetcher) FetchPageText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("error fetching page: HTTP status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	var content string
	doc.Find(mainContentSelectors).Each(func(i int, s *goquery.Selection) {
		content += s.Text() + "\n"
	})

	// If no specific content found, get all text from body
	if content == "" {
		content = doc.Find("body").Text()
	}

	content = strings.TrimSpace(whitespaceRe.ReplaceAllString(content, " "))
	if content == "" {
		return "", fmt.Errorf("page %s: %w", pageURL, ErrNoExtractableText)
	}
	return content, nil
}
