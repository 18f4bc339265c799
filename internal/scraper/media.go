// internal/scraper/media.go
package scraper

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// MediaItem is one structured record produced by the media normalizer.
type MediaItem interface {
	// MediaURL returns the item's url, or "" when it has none.
	MediaURL() string
	cloneMedia() MediaItem
}

// Image is an og:image record.
type Image struct {
	URL    *string `json:"url,omitempty" yaml:"url,omitempty"`
	Width  *string `json:"width" yaml:"width"`
	Height *string `json:"height" yaml:"height"`
	Type   *string `json:"type" yaml:"type"`
}

// Video is an og:video record.
type Video struct {
	URL    *string `json:"url,omitempty" yaml:"url,omitempty"`
	Width  *string `json:"width" yaml:"width"`
	Height *string `json:"height" yaml:"height"`
	Type   *string `json:"type" yaml:"type"`
}

// TwitterImage is a twitter:image record.
type TwitterImage struct {
	URL    *string `json:"url,omitempty" yaml:"url,omitempty"`
	Width  *string `json:"width" yaml:"width"`
	Height *string `json:"height" yaml:"height"`
	Alt    *string `json:"alt" yaml:"alt"`
}

// TwitterPlayer is a twitter:player record.
type TwitterPlayer struct {
	URL    *string `json:"url,omitempty" yaml:"url,omitempty"`
	Width  *string `json:"width" yaml:"width"`
	Height *string `json:"height" yaml:"height"`
	Stream *string `json:"stream" yaml:"stream"`
}

// MusicSong is a music:song record. Missing values are empty strings.
type MusicSong struct {
	URL   string `json:"url" yaml:"url"`
	Track string `json:"track" yaml:"track"`
	Disc  string `json:"disc" yaml:"disc"`
}

func (m *Image) MediaURL() string         { return deref(m.URL) }
func (m *Video) MediaURL() string         { return deref(m.URL) }
func (m *TwitterImage) MediaURL() string  { return deref(m.URL) }
func (m *TwitterPlayer) MediaURL() string { return deref(m.URL) }
func (m *MusicSong) MediaURL() string     { return m.URL }

func (m *Image) cloneMedia() MediaItem {
	return &Image{URL: cloneStr(m.URL), Width: cloneStr(m.Width), Height: cloneStr(m.Height), Type: cloneStr(m.Type)}
}

func (m *Video) cloneMedia() MediaItem {
	return &Video{URL: cloneStr(m.URL), Width: cloneStr(m.Width), Height: cloneStr(m.Height), Type: cloneStr(m.Type)}
}

func (m *TwitterImage) cloneMedia() MediaItem {
	return &TwitterImage{URL: cloneStr(m.URL), Width: cloneStr(m.Width), Height: cloneStr(m.Height), Alt: cloneStr(m.Alt)}
}

func (m *TwitterPlayer) cloneMedia() MediaItem {
	return &TwitterPlayer{URL: cloneStr(m.URL), Width: cloneStr(m.Width), Height: cloneStr(m.Height), Stream: cloneStr(m.Stream)}
}

func (m *MusicSong) cloneMedia() MediaItem {
	c := *m
	return &c
}

// box exposes the fields the visual comparator ranks on.
func (m *Image) box() (string, *string, *string)         { return deref(m.URL), m.Width, m.Height }
func (m *Video) box() (string, *string, *string)         { return deref(m.URL), m.Width, m.Height }
func (m *TwitterImage) box() (string, *string, *string)  { return deref(m.URL), m.Width, m.Height }
func (m *TwitterPlayer) box() (string, *string, *string) { return deref(m.URL), m.Width, m.Height }

type boxed interface {
	box() (url string, width, height *string)
}

// mediaFamily describes one group of parallel tag arrays and how to fold them.
type mediaFamily struct {
	field string
	// columns lists the url field first, then the per-item attribute fields.
	columns []string
	// altURL is read as the url column when the url field itself is absent.
	altURL  string
	build   func(row []*string) MediaItem
	compare func(a, b MediaItem) int
	decode  func(msg json.RawMessage) (MediaItem, error)
}

var mediaFamilies = []mediaFamily{
	{
		field:   FieldOGImage,
		columns: []string{FieldOGImage, FieldOGImageWidth, FieldOGImageHeight, FieldOGImageType},
		build: func(row []*string) MediaItem {
			return &Image{URL: row[0], Width: orNull(row[1]), Height: orNull(row[2]), Type: orNull(row[3])}
		},
		compare: compareVisual,
		decode:  decodeInto[Image],
	},
	{
		field:   FieldOGVideo,
		columns: []string{FieldOGVideo, FieldOGVideoWidth, FieldOGVideoHeight, FieldOGVideoType},
		build: func(row []*string) MediaItem {
			return &Video{URL: row[0], Width: orNull(row[1]), Height: orNull(row[2]), Type: orNull(row[3])}
		},
		compare: compareVisual,
		decode:  decodeInto[Video],
	},
	{
		field:   FieldTwitterImage,
		columns: []string{FieldTwitterImage, FieldTwitterImageWidth, FieldTwitterImageHeight, FieldTwitterImageAlt},
		altURL:  FieldTwitterImageSrc,
		build: func(row []*string) MediaItem {
			return &TwitterImage{URL: row[0], Width: orNull(row[1]), Height: orNull(row[2]), Alt: orNull(row[3])}
		},
		compare: compareVisual,
		decode:  decodeInto[TwitterImage],
	},
	{
		field:   FieldTwitterPlayer,
		columns: []string{FieldTwitterPlayer, FieldTwitterPlayerWidth, FieldTwitterPlayerHeight, FieldTwitterPlayerStream},
		build: func(row []*string) MediaItem {
			return &TwitterPlayer{URL: row[0], Width: orNull(row[1]), Height: orNull(row[2]), Stream: orNull(row[3])}
		},
		compare: compareVisual,
		decode:  decodeInto[TwitterPlayer],
	},
	{
		field:   FieldMusicSong,
		columns: []string{FieldMusicSong, FieldMusicSongTrack, FieldMusicSongDisc},
		build: func(row []*string) MediaItem {
			return &MusicSong{URL: deref(row[0]), Track: deref(row[1]), Disc: deref(row[2])}
		},
		compare: compareSongs,
		decode:  decodeInto[MusicSong],
	},
}

// rawMediaPrefixes select the built-in multiple fields removed after normalization.
var rawMediaPrefixes = []string{"ogImage", "ogVideo", "twitter", "musicSong"}

var rawMediaFields = func() []string {
	var out []string
	for _, f := range defaultFields {
		if !f.Multiple {
			continue
		}
		for _, p := range rawMediaPrefixes {
			if strings.HasPrefix(f.FieldName, p) {
				out = append(out, f.FieldName)
				break
			}
		}
	}
	return out
}()

// MediaOptions controls media selection.
type MediaOptions struct {
	// AllMedia keeps every sorted record instead of only the best one.
	AllMedia bool
}

// NormalizeMedia folds the parallel media arrays of record into structured
// media values. The record is modified in place and returned.
func NormalizeMedia(record Record, opts MediaOptions) Record {
	resolved := make(map[string][]MediaItem, len(mediaFamilies))
	for _, fam := range mediaFamilies {
		if items := fam.resolve(record); items != nil {
			resolved[fam.field] = items
		}
	}

	for _, name := range rawMediaFields {
		delete(record, name)
	}

	for _, fam := range mediaFamilies {
		items, ok := resolved[fam.field]
		if !ok || len(items) == 0 {
			continue
		}
		if opts.AllMedia {
			record[fam.field] = MediaListValue(items)
		} else {
			record[fam.field] = MediaValue(items[0])
		}
	}
	return record
}

// resolve zips and sorts one family. It returns nil when the family has no signal.
func (fam mediaFamily) resolve(record Record) []MediaItem {
	present := false
	for _, c := range fam.columns {
		if _, ok := column(record, c); ok {
			present = true
			break
		}
	}
	if !present && fam.altURL != "" {
		_, present = column(record, fam.altURL)
	}
	if !present {
		return nil
	}

	cols := make([][]*string, len(fam.columns))
	for i, c := range fam.columns {
		col, ok := column(record, c)
		if !ok && i == 0 && fam.altURL != "" {
			col, ok = column(record, fam.altURL)
		}
		if !ok {
			col = []*string{nil}
		}
		cols[i] = col
	}

	rows := zipColumns(cols...)
	items := make([]MediaItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, fam.build(row))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return fam.compare(items[i], items[j]) < 0
	})
	return items
}

// column reads a raw field as a column of values.
func column(record Record, field string) ([]*string, bool) {
	v, ok := record[field]
	if !ok {
		return nil, false
	}
	switch v.Kind() {
	case KindList:
		return v.List(), true
	case KindString:
		if v.Str() == "" {
			return nil, false
		}
		s := v.Str()
		return []*string{&s}, true
	default:
		return nil, false
	}
}

// zipColumns turns parallel columns into rows. The first column decides the
// row count; shorter columns are padded with nil.
func zipColumns[T any](cols ...[]*T) [][]*T {
	if len(cols) == 0 {
		return nil
	}
	rows := make([][]*T, len(cols[0]))
	for i := range rows {
		row := make([]*T, len(cols))
		for j, col := range cols {
			if i < len(col) {
				row[j] = col[i]
			}
		}
		rows[i] = row
	}
	return rows
}

var extensionPattern = regexp.MustCompile(`\.(\w{2,5})$`)

func urlExtension(u string) string {
	m := extensionPattern.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// compareVisual orders GIFs first, then larger max(width, height) first.
func compareVisual(a, b MediaItem) int {
	ba, okA := a.(boxed)
	bb, okB := b.(boxed)
	if !okA || !okB {
		return 0
	}
	urlA, wA, hA := ba.box()
	urlB, wB, hB := bb.box()
	if urlA == "" || urlB == "" {
		return 0
	}

	gifA := urlExtension(urlA) == "gif"
	gifB := urlExtension(urlB) == "gif"
	if gifA && !gifB {
		return -1
	}
	if gifB && !gifA {
		return 1
	}

	sizeA := max(leadingInt(deref(wA)), leadingInt(deref(hA)))
	sizeB := max(leadingInt(deref(wB)), leadingInt(deref(hB)))
	switch {
	case sizeA > sizeB:
		return -1
	case sizeA < sizeB:
		return 1
	default:
		return 0
	}
}

// compareSongs orders songs by disc then track. Songs without a track keep their position.
func compareSongs(a, b MediaItem) int {
	sa, okA := a.(*MusicSong)
	sb, okB := b.(*MusicSong)
	if !okA || !okB || sa.Track == "" || sb.Track == "" {
		return 0
	}
	discA, discB := sa.Disc, sb.Disc
	if discA == "" {
		discA = "0"
	}
	if discB == "" {
		discB = "0"
	}
	if d := leadingInt(discA) - leadingInt(discB); d != 0 {
		return sign(d)
	}
	return sign(leadingInt(sa.Track) - leadingInt(sb.Track))
}

// leadingInt parses an optional sign and leading digits after optional
// whitespace. Anything that does not start with a number is 0; large values
// stop growing below math.MaxInt32.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		// keeps n*10+9 within int32
		if n >= math.MaxInt32/10 {
			break
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func orNull(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func strPtr(s string) *string { return &s }

type mediaStruct interface {
	Image | Video | TwitterImage | TwitterPlayer | MusicSong
}

func decodeInto[T mediaStruct](msg json.RawMessage) (MediaItem, error) {
	item := new(T)
	if err := json.Unmarshal(msg, item); err != nil {
		return nil, err
	}
	return any(item).(MediaItem), nil
}

// decodeMedia decodes a JSON object into the media type owned by field.
// Image records produced by the <img> fallback live under ogImage as well.
func decodeMedia(field string, msg json.RawMessage) (MediaItem, error) {
	for _, fam := range mediaFamilies {
		if fam.field == field {
			return fam.decode(msg)
		}
	}
	return nil, fmt.Errorf("no media type for field %q", field)
}
