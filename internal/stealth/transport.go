package stealth

import (
	"fmt"
	"net/http"
)

// Transport is an http.RoundTripper for HTML page fetches:
// Fingerprint → RobotsCheck → HumanDelay → Send.
//
// Rate pacing against specific upstreams lives in the fetchers themselves
// (one limiter per upstream), so this transport only adds identity and
// politeness concerns shared by every page request.
type Transport struct {
	Base        http.RoundTripper
	Robots      *RobotsChecker
	Fingerprint *FingerprintPool
	Delay       *HumanDelay
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// 1. Apply fingerprint (UA + headers)
	fp := t.Fingerprint.Next()
	req.Header.Set("User-Agent", fp.UserAgent)
	for key, vals := range fp.Headers {
		if req.Header.Get(key) == "" {
			for _, v := range vals {
				req.Header.Add(key, v)
			}
		}
	}

	// 2. Check robots.txt
	if t.Robots != nil {
		allowed, err := t.Robots.IsAllowed(fp.UserAgent, req.URL.String())
		if err == nil && !allowed {
			return nil, fmt.Errorf("blocked by robots.txt: %s", req.URL.Path)
		}
	}

	// 3. Apply human-like delay
	if t.Delay != nil {
		if err := t.Delay.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("delay: %w", err)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
