package dto

import (
	"time"

	"docgate/internal/domain/documents"
)

// TrackUploadRequest records a document upload in the ledger.
type TrackUploadRequest struct {
	Filename   string `json:"filename" binding:"required"`
	FolderName string `json:"folderName" binding:"required"`
	FullPath   string `json:"fullPath" binding:"required"`
}

// UploadRecordResponse is the tracked upload shape returned to clients.
type UploadRecordResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FolderName string    `json:"folderName"`
	FullPath   string    `json:"fullPath"`
	UploadedBy string    `json:"uploadedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UploadListResponse wraps the visible upload records.
type UploadListResponse struct {
	Documents []UploadRecordResponse `json:"documents"`
}

// AccessiblePathsResponse is the resolved visibility set. AllPaths=true is
// the admin sentinel; Paths is only populated for concrete sets.
type AccessiblePathsResponse struct {
	AllPaths bool     `json:"allPaths"`
	Paths    []string `json:"paths,omitempty"`
}

// UploadFromRecord maps an upload record to the response shape.
func UploadFromRecord(record *documents.UploadRecord) UploadRecordResponse {
	out := UploadRecordResponse{
		ID:         record.ID.String(),
		Filename:   record.Filename,
		FolderName: record.FolderName,
		FullPath:   record.FullPath,
		CreatedAt:  record.CreatedAt,
	}
	if record.UploadedBy != nil {
		out.UploadedBy = record.UploadedBy.String()
	}
	return out
}
