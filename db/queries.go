package db

import (
	_ "embed"
)

// Schema

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Video queries

//go:embed sql/insert_video.sql
var InsertVideoSQL string

//go:embed sql/select_video_by_id.sql
var SelectVideoByIDSQL string

//go:embed sql/select_video_by_path.sql
var SelectVideoByPathSQL string

//go:embed sql/update_video_duration.sql
var UpdateVideoDurationSQL string

// Chapter queries

//go:embed sql/delete_chapters_by_media.sql
var DeleteChaptersByMediaSQL string

//go:embed sql/insert_chapter.sql
var InsertChapterSQL string

//go:embed sql/select_chapters_by_media.sql
var SelectChaptersByMediaSQL string

//go:embed sql/select_chapter_media.sql
var SelectChapterMediaSQL string

// Export job queue

//go:embed sql/insert_export_job.sql
var InsertExportJobSQL string

//go:embed sql/select_next_pending_export.sql
var SelectNextPendingExportSQL string

//go:embed sql/select_export_jobs_by_video.sql
var SelectExportJobsByVideoSQL string

//go:embed sql/mark_export_processing.sql
var MarkExportProcessingSQL string

//go:embed sql/mark_export_complete.sql
var MarkExportCompleteSQL string

//go:embed sql/mark_export_error.sql
var MarkExportErrorSQL string

//go:embed sql/reset_stale_exports.sql
var ResetStaleExportsSQL string

// CSRF tokens issued by the local server

//go:embed sql/insert_csrf_token.sql
var InsertCSRFTokenSQL string

//go:embed sql/select_csrf_token.sql
var SelectCSRFTokenSQL string
