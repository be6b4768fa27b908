package rasp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/san-kum/spinsim/internal/motor"
)

// Fetch downloads a thrustcurve.org simulator-file page and parses the RASP
// data embedded in its <textarea>. A page serving plain RASP text is parsed
// directly.
func Fetch(ctx context.Context, client *http.Client, url string) (*motor.Motor, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return Parse(resp.Body)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	text, ok := textareaText(doc)
	if !ok {
		return nil, fmt.Errorf("fetch %s: no <textarea> with motor data", url)
	}
	return ParseString(text)
}

func textareaText(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.Data == "textarea" {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		return strings.ReplaceAll(sb.String(), "\r", ""), true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s, ok := textareaText(c); ok {
			return s, true
		}
	}
	return "", false
}
