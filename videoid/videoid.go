package videoid

import (
	"net/url"
	"regexp"
	"strings"

	"ytdigest/errors"
)

// idPattern is the canonical YouTube video ID shape.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Valid reports whether id matches the canonical video ID pattern.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}

// Resolve extracts the canonical video ID from a watch URL. Supported
// shapes are youtu.be/<id> and youtube.com/watch?v=<id>; anything else
// fails with an invalid-identifier error.
func Resolve(rawURL string) (string, error) {
	const op = "videoid.Resolve"

	if rawURL == "" {
		return "", errors.InvalidIdentifier(op, nil, "URL is required")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.InvalidIdentifier(op, err, "Invalid URL format")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", errors.InvalidIdentifier(op, nil, "URL must use HTTP or HTTPS")
	}

	host := strings.ToLower(parsedURL.Hostname())

	var id string
	switch {
	case host == "youtu.be":
		segments := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
		if len(segments) > 0 {
			id = segments[0]
		}
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		id = parsedURL.Query().Get("v")
	default:
		return "", errors.InvalidIdentifier(op, nil, "Only YouTube URLs are supported")
	}

	if !Valid(id) {
		return "", errors.InvalidIdentifier(op, nil, "URL does not contain a valid video ID")
	}

	return id, nil
}
