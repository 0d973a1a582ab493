package attachment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"stackit.dev/forum/internal/entity"
	"stackit.dev/forum/pkg/apperror"
	"stackit.dev/forum/pkg/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeStorage struct {
	uploaded []string
	data     []byte
	deleted  []string
	err      error
}

func (f *fakeStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.data = b
	url := "https://cdn.example.com/" + folder + "/" + fileName
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(ctx context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

type fakeRepo struct {
	created []entity.Upload
	orphans []entity.Upload
	removed []uuid.UUID
}

func (f *fakeRepo) Create(ctx context.Context, u *entity.Upload) error {
	f.created = append(f.created, *u)
	return nil
}

func (f *fakeRepo) FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.Upload, error) {
	var out []entity.Upload
	for _, o := range f.orphans {
		if o.CreatedAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.removed = append(f.removed, id)
	return nil
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestUpload_StoresImage(t *testing.T) {
	store := &fakeStorage{}
	repo := &fakeRepo{}
	svc := NewAttachmentService(repo, store, "stackit")
	user := &entity.User{ID: uuid.New()}

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 2048)...)
	resp, err := svc.Upload(context.Background(), user, fileHeader(t, "diagram.png", content))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/stackit/diagram.png", resp.URL)
	assert.Equal(t, content, store.data, "sniffed bytes must be forwarded")

	require.Len(t, repo.created, 1)
	assert.Equal(t, user.ID, repo.created[0].UserID)
	assert.Equal(t, "image/png", repo.created[0].ContentType)
}

func TestUpload_RejectsNonImage(t *testing.T) {
	store := &fakeStorage{}
	svc := NewAttachmentService(&fakeRepo{}, store, "stackit")

	_, err := svc.Upload(context.Background(), &entity.User{ID: uuid.New()}, fileHeader(t, "evil.png", []byte("<script>alert(1)</script>")))
	var fieldErr *apperror.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "file", fieldErr.Field)
	assert.Empty(t, store.uploaded)
}

func TestUpload_RejectsLargeFile(t *testing.T) {
	svc := NewAttachmentService(&fakeRepo{}, &fakeStorage{}, "stackit")
	content := append(append([]byte{}, pngHeader...), make([]byte, MaxUploadSize)...)

	_, err := svc.Upload(context.Background(), &entity.User{ID: uuid.New()}, fileHeader(t, "big.png", content))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestUpload_RequiresCaller(t *testing.T) {
	svc := NewAttachmentService(&fakeRepo{}, &fakeStorage{}, "stackit")
	_, err := svc.Upload(context.Background(), nil, fileHeader(t, "a.png", pngHeader))
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestUpload_StorageDisabled(t *testing.T) {
	svc := NewAttachmentService(&fakeRepo{}, &fakeStorage{err: storage.ErrStorageDisabled}, "stackit")
	_, err := svc.Upload(context.Background(), &entity.User{ID: uuid.New()}, fileHeader(t, "a.png", pngHeader))
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrStorageDisabled))
	assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))
}

func TestCleanupOrphans(t *testing.T) {
	old := entity.Upload{ID: uuid.New(), URL: "https://cdn.example.com/old.png", CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := entity.Upload{ID: uuid.New(), URL: "https://cdn.example.com/new.png", CreatedAt: time.Now()}
	repo := &fakeRepo{orphans: []entity.Upload{old, fresh}}
	store := &fakeStorage{}
	svc := NewAttachmentService(repo, store, "stackit")

	n, err := svc.CleanupOrphans(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{old.URL}, store.deleted)
	assert.Equal(t, []uuid.UUID{old.ID}, repo.removed)
}
