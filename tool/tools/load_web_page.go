// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

var (
	htmlScriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	htmlTagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
)

// WebPageTool fetches a web page and extracts its text.
type WebPageTool struct {
	hc *http.Client
}

// NewWebPageTool returns a new [WebPageTool]. A nil client uses
// [http.DefaultClient].
func NewWebPageTool(hc *http.Client) *WebPageTool {
	if hc == nil {
		hc = http.DefaultClient
	}

	return &WebPageTool{
		hc: hc,
	}
}

// LoadWebPage fetches the content at the url and returns the text in it.
func (t *WebPageTool) LoadWebPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := t.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	return extractWebPageText(string(body)), nil
}

// extractWebPageText strips markup and drops very short lines, e.g. single
// words or short subtitles.
func extractWebPageText(body string) string {
	text := htmlScriptRe.ReplaceAllString(body, "")
	text = htmlTagRe.ReplaceAllString(text, "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 3 {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// Tool returns the [FunctionTool] wrapping [WebPageTool.LoadWebPage].
func (t *WebPageTool) Tool() *FunctionTool {
	fn := func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
		url, ok := args["url"].(string)
		if !ok || url == "" {
			return nil, fmt.Errorf("load_web_page: url argument is required")
		}

		text, err := t.LoadWebPage(ctx, url)
		if err != nil {
			return nil, err
		}
		return map[string]any{"text": text}, nil
	}

	return NewFunctionTool(fn).
		WithName("load_web_page").
		WithDescription("Fetches the content at a URL and returns the text in it.").
		WithDeclaration(&genai.FunctionDeclaration{
			Name:        "load_web_page",
			Description: "Fetches the content at a URL and returns the text in it.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"url": {
						Type:        genai.TypeString,
						Description: "The URL to fetch.",
					},
				},
				Required: []string{"url"},
			},
		})
}
