package transcript

import "strings"

// Track describes one available caption track.
type Track struct {
	Code    string
	Name    string
	BaseURL string
}

// pickTrack selects a track by language priority: exact code match first,
// then language-family prefix match, then the first available track.
func pickTrack(tracks []Track, languages []string) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}

	for _, lang := range languages {
		for _, t := range tracks {
			if strings.EqualFold(t.Code, lang) {
				return t, true
			}
		}
	}

	for _, lang := range languages {
		family := languageFamily(lang)
		for _, t := range tracks {
			if strings.EqualFold(languageFamily(t.Code), family) {
				return t, true
			}
		}
	}

	return tracks[0], true
}

func languageFamily(code string) string {
	if i := strings.IndexByte(code, '-'); i >= 0 {
		return code[:i]
	}
	return code
}
