package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	apperrors "repurpose-ai-api/pkg/errors"
)

// fakeOutputRepo 内存版产出仓储
type fakeOutputRepo struct {
	outputs map[string]*entity.Output // id -> output
	owners  map[string]string         // output id -> owner id
	updates int
}

func newFakeOutputRepo() *fakeOutputRepo {
	return &fakeOutputRepo{
		outputs: make(map[string]*entity.Output),
		owners:  make(map[string]string),
	}
}

func (f *fakeOutputRepo) add(output *entity.Output, ownerID string) {
	f.outputs[output.ID] = output
	f.owners[output.ID] = ownerID
}

func (f *fakeOutputRepo) Upsert(ctx context.Context, output *entity.Output) (string, bool, error) {
	return "", true, nil
}

func (f *fakeOutputRepo) GetByID(ctx context.Context, id string) (*entity.Output, error) {
	return f.outputs[id], nil
}

func (f *fakeOutputRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.Output, error) {
	output, ok := f.outputs[id]
	if !ok || f.owners[id] != ownerID {
		return nil, nil
	}
	clone := *output
	return &clone, nil
}

func (f *fakeOutputRepo) ListByProject(ctx context.Context, projectID string) ([]*entity.Output, error) {
	return nil, nil
}

func (f *fakeOutputRepo) UpdateContent(ctx context.Context, id, content string, isEdited bool) (*entity.Output, error) {
	output, ok := f.outputs[id]
	if !ok {
		return nil, nil
	}
	f.updates++
	output.Content = content
	output.IsEdited = isEdited
	clone := *output
	return &clone, nil
}

func (f *fakeOutputRepo) DeleteByProject(ctx context.Context, projectID string) error { return nil }

// fakeVersionRepo 内存版版本仓储（仅追加）
type fakeVersionRepo struct {
	versions []*entity.OutputVersion
	nextID   int
}

func (f *fakeVersionRepo) Append(ctx context.Context, version *entity.OutputVersion) error {
	f.nextID++
	version.ID = "v" + string(rune('0'+f.nextID))
	f.versions = append(f.versions, version)
	return nil
}

func (f *fakeVersionRepo) GetByID(ctx context.Context, id string) (*entity.OutputVersion, error) {
	for _, v := range f.versions {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (f *fakeVersionRepo) ListByOutput(ctx context.Context, outputID string) ([]*entity.OutputVersion, error) {
	var out []*entity.OutputVersion
	for i := len(f.versions) - 1; i >= 0; i-- {
		if f.versions[i].OutputID == outputID {
			out = append(out, f.versions[i])
		}
	}
	return out, nil
}

// fakeHistoryRepo 审计历史桩
type fakeHistoryRepo struct {
	records []*entity.ProjectHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, history *entity.ProjectHistory) error {
	f.records = append(f.records, history)
	return nil
}

func (f *fakeHistoryRepo) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ProjectHistory], error) {
	return nil, nil
}

// noopTx 直接执行回调的事务桩
type noopTx struct{}

func (noopTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type editorFixture struct {
	svc      *Service
	outputs  *fakeOutputRepo
	versions *fakeVersionRepo
	history  *fakeHistoryRepo
}

func newEditorFixture() *editorFixture {
	outputs := newFakeOutputRepo()
	versions := &fakeVersionRepo{}
	history := &fakeHistoryRepo{}
	return &editorFixture{
		svc:      NewService(outputs, versions, history, noopTx{}),
		outputs:  outputs,
		versions: versions,
		history:  history,
	}
}

func (f *editorFixture) seedOutput(id, owner, content, original string) {
	f.outputs.add(&entity.Output{
		ID:              id,
		ProjectID:       "proj-1",
		Platform:        entity.PlatformLinkedIn,
		Content:         content,
		OriginalContent: original,
	}, owner)
}

func TestUpdateContentSnapshotsPrior(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "first draft", "first draft")

	updated, err := f.svc.UpdateContent(context.Background(), "out-1", "u1", "edited draft")
	require.NoError(t, err)
	assert.Equal(t, "edited draft", updated.Content)
	assert.True(t, updated.IsEdited)

	require.Len(t, f.versions.versions, 1)
	assert.Equal(t, "first draft", f.versions.versions[0].Content)
	assert.Equal(t, "out-1", f.versions.versions[0].OutputID)

	require.Len(t, f.history.records, 1)
	assert.Equal(t, entity.HistoryActionEdit, f.history.records[0].Action)
}

func TestUpdateContentNoChangeNoSnapshot(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "same content", "same content")

	updated, err := f.svc.UpdateContent(context.Background(), "out-1", "u1", "same content")
	require.NoError(t, err)
	assert.Equal(t, "same content", updated.Content)
	assert.Empty(t, f.versions.versions)
	assert.Zero(t, f.outputs.updates)
}

func TestUpdateContentRejectsEmpty(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "content", "content")

	_, err := f.svc.UpdateContent(context.Background(), "out-1", "u1", "   ")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidParam))
}

func TestUpdateContentOwnerMismatch(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "content", "content")

	_, err := f.svc.UpdateContent(context.Background(), "out-1", "intruder", "new content")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFoundOrAccessDenied))
}

func TestRevertToOriginal(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "heavily edited", "the original")

	updated, err := f.svc.RevertToOriginal(context.Background(), "out-1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "the original", updated.Content)
	assert.False(t, updated.IsEdited)

	// 被覆盖的编辑内容进入版本历史
	require.Len(t, f.versions.versions, 1)
	assert.Equal(t, "heavily edited", f.versions.versions[0].Content)
}

func TestRevertToOriginalWithoutOriginal(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "content", "")

	_, err := f.svc.RevertToOriginal(context.Background(), "out-1", "u1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoOriginalContent))
	assert.Empty(t, f.versions.versions)
}

func TestRevertToOriginalAlreadyOriginal(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "the original", "the original")
	f.outputs.outputs["out-1"].IsEdited = true

	updated, err := f.svc.RevertToOriginal(context.Background(), "out-1", "u1")
	require.NoError(t, err)
	assert.False(t, updated.IsEdited)
	assert.Empty(t, f.versions.versions)
}

func TestRevertToVersion(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "current", "original")
	require.NoError(t, f.versions.Append(context.Background(), &entity.OutputVersion{
		OutputID: "out-1",
		Content:  "older version",
	}))
	versionID := f.versions.versions[0].ID

	updated, err := f.svc.RevertToVersion(context.Background(), "out-1", "u1", versionID)
	require.NoError(t, err)
	assert.Equal(t, "older version", updated.Content)

	// 覆盖前的当前内容也被快照
	require.Len(t, f.versions.versions, 2)
	assert.Equal(t, "current", f.versions.versions[1].Content)
}

func TestRevertToVersionForeignVersionRejected(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "current", "original")
	f.seedOutput("out-2", "u1", "other", "other")
	require.NoError(t, f.versions.Append(context.Background(), &entity.OutputVersion{
		OutputID: "out-2",
		Content:  "belongs to out-2",
	}))
	versionID := f.versions.versions[0].ID

	_, err := f.svc.RevertToVersion(context.Background(), "out-1", "u1", versionID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeVersionMismatch))

	// 拒绝时不产生任何变更
	assert.Zero(t, f.outputs.updates)
	assert.Len(t, f.versions.versions, 1)
}

func TestRevertToVersionUnknownVersion(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "current", "original")

	_, err := f.svc.RevertToVersion(context.Background(), "out-1", "u1", "missing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeVersionMismatch))
}

func TestListVersionsNewestFirst(t *testing.T) {
	f := newEditorFixture()
	f.seedOutput("out-1", "u1", "v3", "v1")
	require.NoError(t, f.versions.Append(context.Background(), &entity.OutputVersion{OutputID: "out-1", Content: "v1"}))
	require.NoError(t, f.versions.Append(context.Background(), &entity.OutputVersion{OutputID: "out-1", Content: "v2"}))

	versions, err := f.svc.ListVersions(context.Background(), "out-1", "u1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "v2", versions[0].Content)
	assert.Equal(t, "v1", versions[1].Content)
}
