package documents

import (
	"context"
	"testing"

	"docgate/internal/core/id"
	"docgate/internal/core/security"
	"docgate/internal/domain/auth"
)

type fakeUploadRepo struct {
	records []UploadRecord
	scans   int
}

func (f *fakeUploadRepo) Create(_ context.Context, record *UploadRecord) error {
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeUploadRepo) ListAll(_ context.Context) ([]UploadRecord, error) {
	return append([]UploadRecord(nil), f.records...), nil
}

func (f *fakeUploadRepo) ListRefs(_ context.Context) ([]PathRef, error) {
	f.scans++
	refs := make([]PathRef, 0, len(f.records))
	for _, r := range f.records {
		refs = append(refs, PathRef{FullPath: r.FullPath, UploadedBy: r.UploadedBy})
	}
	return refs, nil
}

func (f *fakeUploadRepo) DeleteByPath(_ context.Context, fullPath string) error {
	kept := f.records[:0]
	for _, r := range f.records {
		if r.FullPath != fullPath {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

type fakeWorkspaceRepo struct {
	accessible map[id.ID][]id.ID
	docPaths   map[id.ID][]string
}

func (f *fakeWorkspaceRepo) AccessibleWorkspaceIDs(_ context.Context, userID id.ID) ([]id.ID, error) {
	return f.accessible[userID], nil
}

func (f *fakeWorkspaceRepo) ListDocPaths(_ context.Context, workspaceIDs []id.ID) ([]string, error) {
	var out []string
	for _, wid := range workspaceIDs {
		out = append(out, f.docPaths[wid]...)
	}
	return out, nil
}

func upload(path string, owner *id.ID) UploadRecord {
	return UploadRecord{ID: id.New(), FullPath: path, FolderName: FolderOf(path), UploadedBy: owner}
}

func userWithRole(role string) *auth.LocalUser {
	return &auth.LocalUser{ID: id.New(), Username: "u-" + role, Role: role}
}

func TestAccessiblePaths_AdminSeesEverything(t *testing.T) {
	other := id.New()
	uploads := &fakeUploadRepo{records: []UploadRecord{
		upload("docs/a.txt", &other),
		upload("docs/b.txt", nil),
	}}
	r := NewAccessResolver(uploads, &fakeWorkspaceRepo{}, nil)

	set, err := r.AccessiblePaths(context.Background(), userWithRole(auth.RoleAdmin))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.All() {
		t.Error("admin must get the all-paths sentinel")
	}
	if uploads.scans != 0 {
		t.Errorf("admin resolution must not scan the ledger, got %d scans", uploads.scans)
	}
	if !set.Contains("never/tracked.txt") {
		t.Error("sentinel set must contain arbitrary paths")
	}
}

func TestAccessiblePaths_DefaultUserOwnAndLegacyOnly(t *testing.T) {
	user := userWithRole(auth.RoleDefault)
	other := id.New()
	uploads := &fakeUploadRepo{records: []UploadRecord{
		upload("docs/mine.txt", &user.ID),
		upload("docs/theirs.txt", &other),
		upload("docs/legacy.txt", nil),
	}}
	r := NewAccessResolver(uploads, &fakeWorkspaceRepo{}, nil)

	set, err := r.AccessiblePaths(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.All() {
		t.Fatal("default user must get a concrete set")
	}

	want := []string{"docs/legacy.txt", "docs/mine.txt"}
	got := set.Paths()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if set.Contains("docs/theirs.txt") {
		t.Error("default user must not see another user's tracked upload")
	}
}

func TestAccessiblePaths_ManagerWidenedByWorkspaces(t *testing.T) {
	manager := userWithRole(auth.RoleManager)
	other := id.New()
	workspaceID := id.New()

	uploads := &fakeUploadRepo{records: []UploadRecord{
		upload("docs/own.txt", &manager.ID),
		upload("docs/shared.txt", &other),
		upload("docs/unshared.txt", &other),
	}}
	workspaces := &fakeWorkspaceRepo{
		accessible: map[id.ID][]id.ID{manager.ID: {workspaceID}},
		docPaths:   map[id.ID][]string{workspaceID: {"docs/shared.txt"}},
	}
	r := NewAccessResolver(uploads, workspaces, nil)

	set, err := r.AccessiblePaths(context.Background(), manager)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Contains("docs/own.txt") {
		t.Error("manager must see their own upload")
	}
	if !set.Contains("docs/shared.txt") {
		t.Error("manager must see another user's upload through a shared workspace")
	}
	if set.Contains("docs/unshared.txt") {
		t.Error("workspace widening must stay scoped to accessible workspaces")
	}
}

func TestAccessiblePaths_DefaultUserIgnoresWorkspaces(t *testing.T) {
	user := userWithRole(auth.RoleDefault)
	other := id.New()
	workspaceID := id.New()

	uploads := &fakeUploadRepo{records: []UploadRecord{
		upload("docs/shared.txt", &other),
	}}
	workspaces := &fakeWorkspaceRepo{
		accessible: map[id.ID][]id.ID{user.ID: {workspaceID}},
		docPaths:   map[id.ID][]string{workspaceID: {"docs/shared.txt"}},
	}
	r := NewAccessResolver(uploads, workspaces, nil)

	set, err := r.AccessiblePaths(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Contains("docs/shared.txt") {
		t.Error("workspace membership must not widen a default user's set")
	}
}

func TestAccessiblePaths_Idempotent(t *testing.T) {
	user := userWithRole(auth.RoleDefault)
	uploads := &fakeUploadRepo{records: []UploadRecord{
		upload("docs/mine.txt", &user.ID),
		upload("docs/legacy.txt", nil),
	}}
	r := NewAccessResolver(uploads, &fakeWorkspaceRepo{}, nil)
	ctx := context.Background()

	first, err := r.AccessiblePaths(ctx, user)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := r.AccessiblePaths(ctx, user)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	fp, sp := first.Paths(), second.Paths()
	if len(fp) != len(sp) {
		t.Fatalf("resolution must be idempotent: %v vs %v", fp, sp)
	}
	for i := range fp {
		if fp[i] != sp[i] {
			t.Fatalf("resolution must be idempotent: %v vs %v", fp, sp)
		}
	}
}

func TestAccessiblePaths_PolicyFiltersNonAdmins(t *testing.T) {
	policy, err := security.CompilePathPolicy(`!path.startsWith("restricted/")`)
	if err != nil {
		t.Fatalf("compile policy: %v", err)
	}

	user := userWithRole(auth.RoleDefault)
	uploads := &fakeUploadRepo{records: []UploadRecord{
		upload("docs/mine.txt", &user.ID),
		upload("restricted/mine.txt", &user.ID),
	}}
	r := NewAccessResolver(uploads, &fakeWorkspaceRepo{}, policy)

	set, err := r.AccessiblePaths(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Contains("docs/mine.txt") {
		t.Error("policy must keep allowed paths")
	}
	if set.Contains("restricted/mine.txt") {
		t.Error("policy must drop denied paths")
	}

	// Admins bypass the policy entirely.
	adminSet, err := r.AccessiblePaths(context.Background(), userWithRole(auth.RoleAdmin))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adminSet.Contains("restricted/mine.txt") {
		t.Error("admin sentinel must bypass the policy")
	}
}

func TestListForUser_FiltersLedger(t *testing.T) {
	user := userWithRole(auth.RoleDefault)
	other := id.New()
	uploads := &fakeUploadRepo{records: []UploadRecord{
		upload("docs/mine.txt", &user.ID),
		upload("docs/theirs.txt", &other),
		upload("docs/legacy.txt", nil),
	}}
	svc := NewService(uploads, NewAccessResolver(uploads, &fakeWorkspaceRepo{}, nil))

	visible, err := svc.ListForUser(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible records, got %d", len(visible))
	}
	for _, record := range visible {
		if record.FullPath == "docs/theirs.txt" {
			t.Error("another user's tracked upload leaked into the listing")
		}
	}
}
