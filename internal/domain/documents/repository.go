package documents

import (
	"context"

	"docgate/internal/core/id"
)

// UploadRepository is the read-mostly upload ledger. Records are created by
// the upload collaborator and never updated.
type UploadRepository interface {
	Create(ctx context.Context, record *UploadRecord) error
	ListAll(ctx context.Context) ([]UploadRecord, error)

	// ListRefs returns the {fullPath, uploadedBy} projection of the whole
	// ledger in one pass.
	ListRefs(ctx context.Context) ([]PathRef, error)

	DeleteByPath(ctx context.Context, fullPath string) error
}

// WorkspaceRepository answers the two workspace questions access resolution
// needs: which workspaces a user can reach, and which document paths those
// workspaces contain.
type WorkspaceRepository interface {
	// AccessibleWorkspaceIDs returns workspaces the user created or
	// explicitly belongs to.
	AccessibleWorkspaceIDs(ctx context.Context, userID id.ID) ([]id.ID, error)

	// ListDocPaths returns every document path associated with any of the
	// given workspaces.
	ListDocPaths(ctx context.Context, workspaceIDs []id.ID) ([]string, error)
}
