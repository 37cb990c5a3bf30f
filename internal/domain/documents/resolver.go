package documents

import (
	"context"
	"fmt"

	"docgate/internal/core/security"
	"docgate/internal/domain/auth"
)

// AccessResolver computes the set of document paths a principal may see.
//
// Admins get the sentinel "all paths" without touching the ledger. Everyone
// else gets their own uploads plus legacy records with no recorded uploader.
// Managers are additionally widened by every path reachable through a
// workspace they created or belong to. Regular users never see another
// user's tracked upload, shared workspace or not.
//
// The whole ledger is scanned once per call; there is no per-user index and
// no caching, so two calls against the same ledger state always agree.
type AccessResolver struct {
	uploads    UploadRepository
	workspaces WorkspaceRepository
	policy     *security.PathPolicy
}

// NewAccessResolver creates a resolver. policy may be nil, which disables
// policy filtering.
func NewAccessResolver(uploads UploadRepository, workspaces WorkspaceRepository, policy *security.PathPolicy) *AccessResolver {
	return &AccessResolver{uploads: uploads, workspaces: workspaces, policy: policy}
}

// AccessiblePaths resolves the visible path set for user.
func (r *AccessResolver) AccessiblePaths(ctx context.Context, user *auth.LocalUser) (PathSet, error) {
	if user.IsAdmin() {
		return AllPaths(), nil
	}

	refs, err := r.uploads.ListRefs(ctx)
	if err != nil {
		return PathSet{}, fmt.Errorf("list upload refs: %w", err)
	}

	set := NewPathSet()
	for _, ref := range refs {
		if ref.UploadedBy == nil || *ref.UploadedBy == user.ID {
			set.Add(ref.FullPath)
		}
	}

	if user.Role == auth.RoleManager {
		if err := r.widenForManager(ctx, user, &set); err != nil {
			return PathSet{}, err
		}
	}

	return r.applyPolicy(set, user), nil
}

// widenForManager adds every path reachable through the manager's
// workspaces.
func (r *AccessResolver) widenForManager(ctx context.Context, user *auth.LocalUser, set *PathSet) error {
	workspaceIDs, err := r.workspaces.AccessibleWorkspaceIDs(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list accessible workspaces: %w", err)
	}
	if len(workspaceIDs) == 0 {
		return nil
	}

	docPaths, err := r.workspaces.ListDocPaths(ctx, workspaceIDs)
	if err != nil {
		return fmt.Errorf("list workspace doc paths: %w", err)
	}
	for _, p := range docPaths {
		set.Add(p)
	}
	return nil
}

// applyPolicy drops paths the configured policy denies. Admins never reach
// here; the sentinel set is returned before any filtering.
func (r *AccessResolver) applyPolicy(set PathSet, user *auth.LocalUser) PathSet {
	if r.policy == nil {
		return set
	}
	filtered := NewPathSet()
	for _, p := range set.Paths() {
		if r.policy.Allows(p, FolderOf(p), user.Role) {
			filtered.Add(p)
		}
	}
	return filtered
}
