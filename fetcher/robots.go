package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsCache fetches and caches one robots.txt group per host. A host
// whose robots.txt cannot be fetched or parsed is treated as allowing
// everything, matching how the venues behave in practice.
type robotsCache struct {
	mu        sync.Mutex
	groups    map[string]*robotstxt.Group
	http      *http.Client
	userAgent string
}

func newRobotsCache(client *http.Client, userAgent string) *robotsCache {
	return &robotsCache{
		groups:    make(map[string]*robotstxt.Group),
		http:      client,
		userAgent: userAgent,
	}
}

func (r *robotsCache) allowed(ctx context.Context, target *url.URL) bool {
	r.mu.Lock()
	group, ok := r.groups[target.Host]
	r.mu.Unlock()

	if !ok {
		group = r.fetchGroup(ctx, target)
		r.mu.Lock()
		r.groups[target.Host] = group
		r.mu.Unlock()
	}

	if group == nil {
		return true
	}

	return group.Test(target.Path)
}

func (r *robotsCache) fetchGroup(ctx context.Context, target *url.URL) *robotstxt.Group {
	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	robots, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil
	}

	return robots.FindGroup(r.userAgent)
}
