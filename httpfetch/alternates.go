package httpfetch

import (
	"net/url"
	"strings"
)

// GenerateAlternates deterministically derives up to four alternate forms of
// u, deduplicated and order-preserved:
//  1. prefix the path with /amp (if not already)
//  2. append /amp to the path (if not already)
//  3. append/merge query parameter outputType=amp
//  4. prepend m. to the hostname (if not already)
//
// Each transform is skipped when its input already carries it, and the input
// itself is never returned, so feeding an alternate back in never applies the
// same transform twice (no /amp/amp, no m.m.). Such a second call can still
// return forms the first call did not, e.g. /amp/a/amp from /amp/a.
func GenerateAlternates(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	var out []string
	seen := map[string]struct{}{rawURL: {}}
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	// 1. prefix path with /amp
	if !strings.HasPrefix(u.Path, "/amp") {
		c := *u
		c.Path = "/amp" + c.Path
		add(c.String())
	}

	// 2. append /amp to path
	if !strings.HasSuffix(strings.TrimRight(u.Path, "/"), "/amp") {
		c := *u
		c.Path = strings.TrimRight(c.Path, "/") + "/amp"
		add(c.String())
	}

	// 3. append/merge outputType=amp query param
	{
		c := *u
		q := c.Query()
		q.Set("outputType", "amp")
		c.RawQuery = q.Encode()
		add(c.String())
	}

	// 4. prepend m. to hostname
	if !strings.HasPrefix(u.Hostname(), "m.") {
		c := *u
		host := "m." + c.Host
		c.Host = host
		add(c.String())
	}

	return out
}
