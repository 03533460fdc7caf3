package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// EnsureVideo returns the existing video ID for the given path, or inserts a new row and returns its ID.
// A positive duration is written to the row so it stays current.
func EnsureVideo(db *sql.DB, path string, duration float64) (int64, error) {
	var videoID int64
	err := db.QueryRow(SelectVideoByPathSQL, path).Scan(&videoID)
	if err == nil {
		if duration > 0 {
			if _, err := db.Exec(UpdateVideoDurationSQL, duration, videoID); err != nil {
				return 0, fmt.Errorf("update video duration: %w", err)
			}
		}
		return videoID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("select video by path: %w", err)
	}
	base := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	result, err := db.Exec(InsertVideoSQL, path, base, ext, duration)
	if err != nil {
		return 0, fmt.Errorf("insert video: %w", err)
	}
	return result.LastInsertId()
}

// SelectVideoByID returns a single videos row.
func SelectVideoByID(db *sql.DB, id int64) (*Video, error) {
	var v Video
	err := db.QueryRow(SelectVideoByIDSQL, id).Scan(&v.ID, &v.Path, &v.Filename, &v.Extension, &v.Duration)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ReplaceChapters swaps the stored chapter list of mediaID for chapters in one
// transaction. Positions are taken from slice order.
func ReplaceChapters(database *sql.DB, mediaID string, chapters []Chapter) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(DeleteChaptersByMediaSQL, mediaID); err != nil {
		return fmt.Errorf("delete chapters: %w", err)
	}
	for i, c := range chapters {
		if _, err := tx.Exec(InsertChapterSQL, mediaID, i, c.Title, c.Start, c.End); err != nil {
			return fmt.Errorf("insert chapter %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SelectChapters returns the chapters of mediaID in chronological order.
func SelectChapters(database *sql.DB, mediaID string) ([]Chapter, error) {
	rows, err := database.Query(SelectChaptersByMediaSQL, mediaID)
	if err != nil {
		return nil, fmt.Errorf("select chapters: %w", err)
	}
	defer rows.Close()

	var chapters []Chapter
	for rows.Next() {
		var c Chapter
		if err := rows.Scan(&c.ID, &c.MediaID, &c.Position, &c.Title, &c.Start, &c.End, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

// SelectChapterMedia lists every media id that has stored chapters.
func SelectChapterMedia(database *sql.DB) ([]MediaSummary, error) {
	rows, err := database.Query(SelectChapterMediaSQL)
	if err != nil {
		return nil, fmt.Errorf("select chapter media: %w", err)
	}
	defer rows.Close()

	var out []MediaSummary
	for rows.Next() {
		var m MediaSummary
		var updated sql.NullString
		if err := rows.Scan(&m.MediaID, &m.Chapters, &updated); err != nil {
			return nil, fmt.Errorf("scan chapter media: %w", err)
		}
		m.UpdatedAt = updated.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// InsertExportJob queues a pending export of one segment and returns its ID.
func InsertExportJob(db *sql.DB, job ExportJob) (int64, error) {
	result, err := db.Exec(InsertExportJobSQL, job.VideoID, job.SegmentID, job.Title, job.Start, job.End, job.Folder, job.Filename)
	if err != nil {
		return 0, fmt.Errorf("insert export job: %w", err)
	}
	return result.LastInsertId()
}

func scanExportJob(scan func(dest ...any) error) (*ExportJob, error) {
	var j ExportJob
	err := scan(&j.ID, &j.VideoID, &j.VideoPath, &j.SegmentID, &j.Title, &j.Start, &j.End,
		&j.Folder, &j.Filename, &j.Status, &j.Filesize, &j.StartedAt, &j.FinishedAt, &j.ErrorAt, &j.Log)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// SelectNextPendingExport returns the oldest pending export job, or nil when the queue is empty.
func SelectNextPendingExport(db *sql.DB) (*ExportJob, error) {
	job, err := scanExportJob(db.QueryRow(SelectNextPendingExportSQL).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select next pending export: %w", err)
	}
	return job, nil
}

// SelectExportJobsByVideo returns every export job of a video in timeline order.
func SelectExportJobsByVideo(db *sql.DB, videoID int64) ([]ExportJob, error) {
	rows, err := db.Query(SelectExportJobsByVideoSQL, videoID)
	if err != nil {
		return nil, fmt.Errorf("select export jobs: %w", err)
	}
	defer rows.Close()

	var jobs []ExportJob
	for rows.Next() {
		j, err := scanExportJob(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan export job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// MarkExportProcessing updates an export job to processing status with the given start time.
func MarkExportProcessing(db *sql.DB, jobID int64, startedAt time.Time) error {
	if _, err := db.Exec(MarkExportProcessingSQL, startedAt, jobID); err != nil {
		return fmt.Errorf("mark export processing: %w", err)
	}
	return nil
}

// MarkExportComplete updates an export job to complete status with the given finish time and filesize.
func MarkExportComplete(db *sql.DB, jobID int64, finishedAt time.Time, filesize int64) error {
	if _, err := db.Exec(MarkExportCompleteSQL, finishedAt, filesize, jobID); err != nil {
		return fmt.Errorf("mark export complete: %w", err)
	}
	return nil
}

// MarkExportError updates an export job to error status with the given error time and log message.
func MarkExportError(db *sql.DB, jobID int64, errorAt time.Time, logMsg string) error {
	if _, err := db.Exec(MarkExportErrorSQL, errorAt, logMsg, jobID); err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return nil
}

// ResetStaleExports puts jobs left in processing by a crashed worker back in the queue.
func ResetStaleExports(db *sql.DB) (int64, error) {
	result, err := db.Exec(ResetStaleExportsSQL)
	if err != nil {
		return 0, fmt.Errorf("reset stale exports: %w", err)
	}
	return result.RowsAffected()
}

// InsertCSRFToken records a token handed out by the local server.
func InsertCSRFToken(db *sql.DB, token string) error {
	if _, err := db.Exec(InsertCSRFTokenSQL, token); err != nil {
		return fmt.Errorf("insert csrf token: %w", err)
	}
	return nil
}

// CSRFTokenExists reports whether token was issued by this database.
func CSRFTokenExists(db *sql.DB, token string) (bool, error) {
	var n int
	if err := db.QueryRow(SelectCSRFTokenSQL, token).Scan(&n); err != nil {
		return false, fmt.Errorf("select csrf token: %w", err)
	}
	return n > 0, nil
}
