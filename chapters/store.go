package chapters

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/user/mediacms-timeline/db"
	"github.com/user/mediacms-timeline/segment"
)

// LocalKey is the media id used for a video that has no MediaCMS id.
func LocalKey(videoPath string) string {
	return "file:" + videoPath
}

// DraftKey is where autosaved drafts of mediaID are kept.
func DraftKey(mediaID string) string {
	return "draft:" + mediaID
}

// Store persists chapters in the local SQLite database. It satisfies
// editor.Saver and applies the same full-span rule as the HTTP client.
type Store struct {
	DB     *sql.DB
	Logger zerolog.Logger

	ids segment.IDs
}

// Save replaces the stored chapters of mediaID.
func (s *Store) Save(ctx context.Context, mediaID string, segs []segment.Segment, duration float64) error {
	if mediaID == "" {
		return ErrNoMedia
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p := BuildPayload(segs, duration)
	rows, err := p.Rows()
	if err != nil {
		return err
	}
	if err := db.ReplaceChapters(s.DB, mediaID, rows); err != nil {
		return fmt.Errorf("store chapters: %w", err)
	}
	s.Logger.Debug().Str("media_id", mediaID).Int("chapters", len(rows)).Msg("chapters stored")
	return nil
}

// Load returns the stored chapters of mediaID as segments.
func (s *Store) Load(ctx context.Context, mediaID string) ([]segment.Segment, error) {
	if mediaID == "" {
		return nil, ErrNoMedia
	}
	rows, err := db.SelectChapters(s.DB, mediaID)
	if err != nil {
		return nil, err
	}
	segs := make([]segment.Segment, 0, len(rows))
	for _, r := range rows {
		segs = append(segs, segment.Segment{ID: s.ids.Next(), Title: r.Title, StartTime: r.Start, EndTime: r.End})
	}
	return segment.Renumber(segs, segment.Chapters), nil
}

// Rows converts the wire payload into database rows. Every entry must parse
// and no two may overlap.
func (p Payload) Rows() ([]db.Chapter, error) {
	rows := make([]db.Chapter, 0, len(p.Chapters))
	var ids segment.IDs
	segs, err := p.Segments(&ids)
	if err != nil {
		return nil, err
	}
	if segment.Overlapping(segs) {
		return nil, ErrOverlap
	}
	for _, s := range segment.SortByStart(segs) {
		rows = append(rows, db.Chapter{Title: s.Title, Start: s.StartTime, End: s.EndTime})
	}
	return rows, nil
}

// PayloadFromRows is the inverse of Rows.
func PayloadFromRows(rows []db.Chapter) Payload {
	out := Payload{Chapters: make([]Chapter, 0, len(rows))}
	for _, r := range rows {
		out.Chapters = append(out.Chapters, chapterFromTimes(r.Start, r.End, r.Title))
	}
	return out
}
