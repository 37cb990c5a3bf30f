package documents

import (
	"context"
	"fmt"

	"docgate/internal/core/id"
	"docgate/internal/domain/auth"
	"docgate/pkg/logger"
)

// Service exposes the document operations the HTTP layer needs: tracking
// uploads and listing what a principal is allowed to see.
type Service struct {
	uploads  UploadRepository
	resolver *AccessResolver
}

// NewService creates a document service.
func NewService(uploads UploadRepository, resolver *AccessResolver) *Service {
	return &Service{uploads: uploads, resolver: resolver}
}

// Track records an upload. uploadedBy is nil when the deployment runs without
// principals (single-user mode), which produces a legacy-style record visible
// to everyone.
func (s *Service) Track(ctx context.Context, filename, folderName, fullPath string, uploadedBy *id.ID) (*UploadRecord, error) {
	record := NewUploadRecord(filename, folderName, fullPath, uploadedBy)
	if err := s.uploads.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("track upload: %w", err)
	}

	logger.Info(ctx, "document upload tracked",
		"full_path", record.FullPath,
		"tracked", uploadedBy != nil,
	)
	return record, nil
}

// ListForUser returns the upload records the user may see, in ledger order.
// Admins see everything; everyone else sees the records whose paths resolve
// as accessible.
func (s *Service) ListForUser(ctx context.Context, user *auth.LocalUser) ([]UploadRecord, error) {
	all, err := s.uploads.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	if user.IsAdmin() {
		return all, nil
	}

	accessible, err := s.resolver.AccessiblePaths(ctx, user)
	if err != nil {
		return nil, err
	}

	visible := make([]UploadRecord, 0, len(all))
	for _, record := range all {
		if accessible.Contains(record.FullPath) {
			visible = append(visible, record)
		}
	}
	return visible, nil
}

// AccessiblePaths resolves the raw path set for the user.
func (s *Service) AccessiblePaths(ctx context.Context, user *auth.LocalUser) (PathSet, error) {
	return s.resolver.AccessiblePaths(ctx, user)
}

// Forget removes the tracking record for a path. Used when the underlying
// document is deleted by the storage collaborator.
func (s *Service) Forget(ctx context.Context, fullPath string) error {
	if err := s.uploads.DeleteByPath(ctx, fullPath); err != nil {
		return fmt.Errorf("forget upload: %w", err)
	}
	return nil
}
