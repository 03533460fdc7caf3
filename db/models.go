package db

import "time"

// Export job statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
)

// Video represents a row in the videos table.
type Video struct {
	ID        int64
	Path      string
	Filename  string
	Extension string
	Duration  float64
}

// Chapter represents a row in the chapters table.
type Chapter struct {
	ID        int64
	MediaID   string
	Position  int
	Title     string
	Start     float64
	End       float64
	UpdatedAt time.Time
}

// MediaSummary is one media id with stored chapters.
type MediaSummary struct {
	MediaID   string
	Chapters  int
	UpdatedAt string
}

// ExportJob represents a row in the export_jobs table joined with its video path.
type ExportJob struct {
	ID         int64
	VideoID    int64
	VideoPath  string
	SegmentID  int64
	Title      string
	Start      float64
	End        float64
	Folder     string
	Filename   string
	Status     string
	Filesize   int64
	StartedAt  *time.Time
	FinishedAt *time.Time
	ErrorAt    *time.Time
	Log        string
}
