package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/runnerr0/moodlens/internal/mood"
)

// Current column layouts. Older logs are read through columnIndex.
var (
	activityHeader = []string{"Timestamp", "ActiveInfo"}
	moodHeader     = []string{"Timestamp", "ColorChoice", "Emotion", "SentimentScore", "OptionalText"}
)

// activityLayout maps the columns of an activity log.
type activityLayout struct {
	timestamp int
	info      int
	width     int
}

// moodLayout maps the columns of a mood log. Absent columns are -1.
type moodLayout struct {
	version   int
	timestamp int
	color     int
	emotion   int
	score     int
	note      int
	width     int
}

var currentActivityLayout = activityLayout{timestamp: 0, info: 1, width: 2}

var currentMoodLayout = moodLayout{
	version: 3, timestamp: 0, color: 1, emotion: 2, score: 3, note: 4, width: 5,
}

// Headerless shapes of the older mood layouts, keyed by row width.
var moodLayoutsByWidth = map[int]moodLayout{
	3: {version: 1, timestamp: 0, color: 1, emotion: -1, score: -1, note: 2, width: 3},
	4: {version: 2, timestamp: 0, color: 1, emotion: 2, score: -1, note: 3, width: 4},
	5: currentMoodLayout,
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

func columnIndex(header []string, names ...string) int {
	for i, h := range header {
		n := normalizeHeader(h)
		for _, want := range names {
			if n == want {
				return i
			}
		}
	}
	return -1
}

// detectActivityLayout reads the header row of an activity log. ok is false
// when the first row is not a header, in which case it holds data in the
// current layout.
func detectActivityLayout(header []string) (activityLayout, bool) {
	ts := columnIndex(header, "timestamp", "time", "ts")
	if ts < 0 {
		return currentActivityLayout, false
	}
	info := columnIndex(header, "activeinfo", "activeapp", "info", "app")
	if info < 0 {
		for i := range header {
			if i != ts {
				info = i
				break
			}
		}
	}
	return activityLayout{timestamp: ts, info: info, width: len(header)}, true
}

// detectMoodLayout reads the header row of a mood log. The version is 1
// for Timestamp,ColorChoice,OptionalText, 2 once Emotion is present and 3
// once SentimentScore is present.
func detectMoodLayout(header []string) (moodLayout, bool) {
	l := moodLayout{
		timestamp: columnIndex(header, "timestamp", "time", "ts"),
		color:     columnIndex(header, "colorchoice", "color", "hex"),
		emotion:   columnIndex(header, "emotion", "label"),
		score:     columnIndex(header, "sentimentscore", "sentiment", "score"),
		note:      columnIndex(header, "optionaltext", "note", "text"),
		width:     len(header),
	}
	if l.timestamp < 0 || l.color < 0 {
		return currentMoodLayout, false
	}
	switch {
	case l.score >= 0:
		l.version = 3
	case l.emotion >= 0:
		l.version = 2
	default:
		l.version = 1
	}
	return l, true
}

// forRow picks the layout for one row. Rows appended in a newer shape
// after an older header are recognised by their width.
func (l activityLayout) forRow(row []string) activityLayout {
	if len(row) != l.width && len(row) == currentActivityLayout.width {
		return currentActivityLayout
	}
	return l
}

func (l moodLayout) forRow(row []string) moodLayout {
	if len(row) == l.width {
		return l
	}
	if byWidth, ok := moodLayoutsByWidth[len(row)]; ok {
		return byWidth
	}
	return l
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func decodeActivity(l activityLayout, row []string) (ActivityEvent, error) {
	l = l.forRow(row)
	if l.timestamp >= len(row) {
		return ActivityEvent{}, fmt.Errorf("short row: %d fields", len(row))
	}
	ts, err := parseTimestamp(row[l.timestamp])
	if err != nil {
		return ActivityEvent{}, err
	}
	return ActivityEvent{Timestamp: ts, Info: strings.TrimSpace(field(row, l.info))}, nil
}

func decodeMood(l moodLayout, row []string) (MoodEvent, error) {
	l = l.forRow(row)
	if l.timestamp >= len(row) || l.color >= len(row) {
		return MoodEvent{}, fmt.Errorf("short row: %d fields", len(row))
	}
	ts, err := parseTimestamp(row[l.timestamp])
	if err != nil {
		return MoodEvent{}, err
	}
	c, err := mood.ParseHex(row[l.color])
	if err != nil {
		return MoodEvent{}, err
	}
	score, err := parseScore(field(row, l.score))
	if err != nil {
		return MoodEvent{}, err
	}
	return MoodEvent{
		Timestamp: ts,
		Color:     c,
		Emotion:   strings.TrimSpace(field(row, l.emotion)),
		Score:     score,
		Note:      field(row, l.note),
	}, nil
}

// parseScore reads a stored sentiment score. An absent score is neutral;
// "1.0" style values are accepted.
func parseScore(s string) (mood.Score, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return mood.Neutral, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid sentiment score %q", s)
	}
	score := mood.Score(f)
	if !score.Valid() {
		return 0, fmt.Errorf("sentiment score out of range: %q", s)
	}
	return score, nil
}

func encodeActivity(e ActivityEvent) []string {
	return []string{formatTimestamp(e.Timestamp), e.Info}
}

func encodeMood(e MoodEvent) []string {
	return []string{
		formatTimestamp(e.Timestamp),
		e.Color.Hex(),
		e.Emotion,
		strconv.Itoa(int(e.Score)),
		e.Note,
	}
}
