package ichiba

import (
	"regexp"
	"strings"
)

var imageSizeParam = regexp.MustCompile(`[?&]_ex=\d+x\d+`)

// NormalizeImageURL strips the _ex=WxH size parameter from a listing image
// URL and, unless size is "" or "original", appends the requested size.
func NormalizeImageURL(raw, size string) string {
	if raw == "" {
		return raw
	}
	out := imageSizeParam.ReplaceAllString(raw, "")
	if size != "" && size != "original" {
		if strings.Contains(out, "?") {
			out += "&_ex=" + size
		} else {
			out += "?_ex=" + size
		}
	}
	return out
}
