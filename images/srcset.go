package images

import (
	"regexp"
	"strconv"
	"strings"
)

var srcsetItemRe = regexp.MustCompile(`(\S+)\s+(\d+(?:\.\d+)?)([wx])`)

// pickFromSrcset implements §4.6's srcset selection: if any entries carry Nw
// width descriptors, pick the one closest to 1000, ties toward larger. Else
// if entries carry Nx density descriptors, pick the largest density. Else
// pick the last entry.
func pickFromSrcset(srcset string) string {
	entries := strings.Split(srcset, ",")
	type item struct {
		url   string
		value float64
		kind  byte // 'w' or 'x'
	}
	var items []item
	var lastURL string

	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		m := srcsetItemRe.FindStringSubmatch(e)
		if m == nil {
			fields := strings.Fields(e)
			if len(fields) > 0 {
				lastURL = fields[0]
			}
			continue
		}
		val, _ := strconv.ParseFloat(m[2], 64)
		items = append(items, item{url: m[1], value: val, kind: m[3][0]})
		lastURL = m[1]
	}

	var wItems, xItems []item
	for _, it := range items {
		if it.kind == 'w' {
			wItems = append(wItems, it)
		} else {
			xItems = append(xItems, it)
		}
	}

	if len(wItems) > 0 {
		best := wItems[0]
		bestDist := absFloat(best.value - 1000)
		for _, it := range wItems[1:] {
			dist := absFloat(it.value - 1000)
			if dist < bestDist || (dist == bestDist && it.value > best.value) {
				best = it
				bestDist = dist
			}
		}
		return best.url
	}

	if len(xItems) > 0 {
		best := xItems[0]
		for _, it := range xItems[1:] {
			if it.value > best.value {
				best = it
			}
		}
		return best.url
	}

	return lastURL
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
