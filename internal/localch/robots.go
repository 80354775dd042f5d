package localch

import (
	"bufio"
	"bytes"
	"context"
	"net/url"
	"strings"

	"localch-scraper/internal/fetch"
)

// Getter fetches a URL body; *fetch.Fetcher satisfies it.
type Getter interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RobotsRules holds the Allow and Disallow prefixes that apply to our user agent.
// The longest matching prefix decides; on a tie Allow wins.
type RobotsRules struct {
	rules []robotsRule
}

type robotsRule struct {
	prefix string
	allow  bool
}

// Allowed reports whether path may be fetched. Nil or empty rules allow everything.
func (r *RobotsRules) Allowed(path string) bool {
	if r == nil || len(r.rules) == 0 {
		return true
	}
	path = normalizePath(path)
	allowed, matched := true, -1
	for _, rule := range r.rules {
		if !strings.HasPrefix(path, rule.prefix) {
			continue
		}
		n := len(rule.prefix)
		if n > matched || (n == matched && rule.allow) {
			allowed, matched = rule.allow, n
		}
	}
	return allowed
}

// AllowedURL is Allowed applied to the path of rawURL.
func (r *RobotsRules) AllowedURL(rawURL string) bool {
	return r.Allowed(PathFromURL(rawURL))
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

// FetchRobots loads and parses /robots.txt of siteRoot for userAgent. A 4xx
// answer means there are no rules and everything is allowed.
func FetchRobots(ctx context.Context, getter Getter, siteRoot, userAgent string) (*RobotsRules, error) {
	u, err := url.Parse(siteRoot)
	if err != nil {
		return nil, err
	}
	u.Path = "/robots.txt"
	u.RawQuery = ""
	body, err := getter.Fetch(ctx, u.String())
	if err != nil {
		if fetch.IsClientError(err) {
			return &RobotsRules{}, nil
		}
		return nil, err
	}
	return ParseRobots(body, userAgent), nil
}

// ParseRobots collects the Allow and Disallow lines of every User-agent group that names
// userAgent (by product token, case-insensitive) or "*".
func ParseRobots(body []byte, userAgent string) *RobotsRules {
	r := &RobotsRules{}
	token := productToken(userAgent)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	var inMatchingGroup, lastWasAgent bool
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if key == "user-agent" {
			match := value == "*" || (token != "" && strings.EqualFold(value, token))
			if lastWasAgent {
				inMatchingGroup = inMatchingGroup || match
			} else {
				inMatchingGroup = match
			}
			lastWasAgent = true
			continue
		}
		lastWasAgent = false
		if !inMatchingGroup || value == "" {
			continue
		}
		switch key {
		case "allow":
			r.rules = append(r.rules, robotsRule{prefix: normalizePath(value), allow: true})
		case "disallow":
			r.rules = append(r.rules, robotsRule{prefix: normalizePath(value)})
		}
	}
	return r
}

// productToken returns the leading product name of a User-Agent header,
// e.g. "Mozilla" for "Mozilla/5.0 (...)".
func productToken(userAgent string) string {
	fields := strings.Fields(userAgent)
	if len(fields) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "/")
	return name
}

// PathFromURL returns the path component of rawURL, or "/" if parsing fails.
func PathFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "/"
	}
	return normalizePath(u.Path)
}
