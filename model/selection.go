package model

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var episodePattern = regexp.MustCompile(`(?i)^s(\d{1,3})e(\d{1,3})$`)

// ParseChunkSelection parses a chunk selection expression into an
// ascending list of unique chunk ids. Accepted forms are a single id
// ("5"), a comma list ("5,7,9") and a range ("5-9"), ranges may appear
// inside a comma list.
func ParseChunkSelection(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty chunk selection")
	}

	unique := map[int64]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty element in chunk selection %q", s)
		}

		if from, to, ok := strings.Cut(part, "-"); ok {
			start, err := parseChunkID(from)
			if err != nil {
				return nil, err
			}
			end, err := parseChunkID(to)
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, fmt.Errorf("invalid chunk range %q: end before start", part)
			}
			for id := start; id <= end; id++ {
				unique[id] = true
			}
			continue
		}

		id, err := parseChunkID(part)
		if err != nil {
			return nil, err
		}
		unique[id] = true
	}

	ids := make([]int64, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func parseChunkID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chunk id %q", strings.TrimSpace(s))
	}
	if id < 0 {
		return 0, fmt.Errorf("invalid chunk id %d: must not be negative", id)
	}
	return id, nil
}

// EpisodeRef identifies one episode of the narrative.
type EpisodeRef struct {
	Season  int `json:"season"`
	Episode int `json:"episode"`
}

// ParseEpisodeRef parses an episode expression like "s03e05".
// The prefix letters are case insensitive and leading zeros are optional.
func ParseEpisodeRef(s string) (EpisodeRef, error) {
	matches := episodePattern.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return EpisodeRef{}, fmt.Errorf("invalid episode %q: expected a form like s03e05", s)
	}
	season, err := strconv.Atoi(matches[1])
	if err != nil {
		return EpisodeRef{}, fmt.Errorf("invalid season in episode %q", s)
	}
	episode, err := strconv.Atoi(matches[2])
	if err != nil {
		return EpisodeRef{}, fmt.Errorf("invalid episode number in episode %q", s)
	}
	return EpisodeRef{Season: season, Episode: episode}, nil
}

// String renders the episode in the canonical sXXeYY form.
func (e EpisodeRef) String() string {
	return fmt.Sprintf("s%02de%02d", e.Season, e.Episode)
}
