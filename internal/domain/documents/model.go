// Package documents resolves which document paths a principal may see.
// Upload records are written once at upload time and read-only afterwards;
// everything here is a pure function of the ledger and the principal's role.
package documents

import (
	"sort"
	"strings"
	"time"

	"docgate/internal/core/id"
)

// UploadRecord tracks a single document upload. UploadedBy is nil for legacy
// records created before ownership tracking existed; those stay visible to
// every user.
type UploadRecord struct {
	ID         id.ID     `db:"id" json:"id"`
	Filename   string    `db:"filename" json:"filename"`
	FolderName string    `db:"folder_name" json:"folderName"`
	FullPath   string    `db:"full_path" json:"fullPath"`
	UploadedBy *id.ID    `db:"uploaded_by" json:"uploadedBy,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// NewUploadRecord builds a tracked upload owned by uploadedBy.
func NewUploadRecord(filename, folderName, fullPath string, uploadedBy *id.ID) *UploadRecord {
	return &UploadRecord{
		ID:         id.New(),
		Filename:   filename,
		FolderName: folderName,
		FullPath:   fullPath,
		UploadedBy: uploadedBy,
		CreatedAt:  time.Now(),
	}
}

// PathRef is the ownership projection of an upload record, the only part of
// the ledger the resolver needs.
type PathRef struct {
	FullPath   string `db:"full_path"`
	UploadedBy *id.ID `db:"uploaded_by"`
}

// Workspace groups documents shared between users. Only its identity and
// creator matter here; content management lives elsewhere.
type Workspace struct {
	ID        id.ID  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedBy id.ID  `db:"created_by" json:"createdBy"`
}

// WorkspaceDocument associates a document path with a workspace.
type WorkspaceDocument struct {
	WorkspaceID id.ID  `db:"workspace_id" json:"workspaceId"`
	DocPath     string `db:"doc_path" json:"docPath"`
	Filename    string `db:"filename" json:"filename"`
}

// PathSet is the result of access resolution: either the sentinel meaning
// every path is accessible, or a concrete set of paths. The zero value is an
// empty concrete set.
type PathSet struct {
	all   bool
	paths map[string]struct{}
}

// AllPaths returns the sentinel set granting access to everything.
func AllPaths() PathSet {
	return PathSet{all: true}
}

// NewPathSet returns a concrete set holding the given paths.
func NewPathSet(paths ...string) PathSet {
	s := PathSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		s.paths[p] = struct{}{}
	}
	return s
}

// All reports whether this is the sentinel "everything accessible" set.
func (s PathSet) All() bool {
	return s.all
}

// Contains reports whether path is accessible.
func (s PathSet) Contains(path string) bool {
	if s.all {
		return true
	}
	_, ok := s.paths[path]
	return ok
}

// Add inserts a path into a concrete set. No-op on the sentinel.
func (s *PathSet) Add(path string) {
	if s.all {
		return
	}
	if s.paths == nil {
		s.paths = make(map[string]struct{})
	}
	s.paths[path] = struct{}{}
}

// Len returns the number of concrete paths, 0 for the sentinel.
func (s PathSet) Len() int {
	return len(s.paths)
}

// Paths returns the concrete paths in sorted order, nil for the sentinel.
func (s PathSet) Paths() []string {
	if s.all || len(s.paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// FolderOf extracts the folder segment of a stored document path. Paths are
// stored as "folder/file"; a bare filename has no folder.
func FolderOf(path string) string {
	if folder, _, found := strings.Cut(path, "/"); found {
		return folder
	}
	return ""
}
