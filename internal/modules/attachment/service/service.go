package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"stackit.dev/forum/internal/entity"
	"stackit.dev/forum/internal/modules/attachment/dto"
	"stackit.dev/forum/internal/modules/attachment/repository"
	"stackit.dev/forum/pkg/apperror"
	"stackit.dev/forum/pkg/storage"
)

const (
	MaxUploadSize = 5 << 20
	sniffLen      = 512
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type AttachmentService interface {
	Upload(ctx context.Context, caller *entity.User, file *multipart.FileHeader) (*dto.UploadResponse, error)
	CleanupOrphans(ctx context.Context, olderThan time.Duration) (int, error)
}

type attachmentService struct {
	repo        repository.UploadRepository
	fileStorage storage.ImageStorage
	folder      string
}

func NewAttachmentService(repo repository.UploadRepository, fileStorage storage.ImageStorage, folder string) AttachmentService {
	return &attachmentService{repo: repo, fileStorage: fileStorage, folder: folder}
}

func (s *attachmentService) Upload(ctx context.Context, caller *entity.User, file *multipart.FileHeader) (*dto.UploadResponse, error) {
	if caller == nil {
		return nil, apperror.ErrUnauthorized
	}
	if file == nil {
		return nil, apperror.Field("file", "file is required")
	}
	if file.Size > MaxUploadSize {
		return nil, apperror.Field("file", "file must be at most %d MiB", MaxUploadSize>>20)
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// The declared Content-Type is client controlled, so sniff the bytes.
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !allowedTypes[contentType] {
		return nil, apperror.Field("file", "only jpeg, png, gif and webp images are allowed")
	}

	url, err := s.fileStorage.UploadImage(ctx, io.MultiReader(bytes.NewReader(head), f), s.folder, file.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			return nil, apperror.New(http.StatusServiceUnavailable, "image uploads are not available", err)
		}
		return nil, fmt.Errorf("upload image: %w", err)
	}

	upload := &entity.Upload{
		UserID:      caller.ID,
		URL:         url,
		ContentType: contentType,
		Size:        file.Size,
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		log.Printf("attachment: failed to record upload %s: %v", url, err)
	}

	return &dto.UploadResponse{URL: url}, nil
}

// CleanupOrphans removes uploads that no question or answer references.
func (s *attachmentService) CleanupOrphans(ctx context.Context, olderThan time.Duration) (int, error) {
	orphans, err := s.repo.FindOrphans(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, orphan := range orphans {
		if err := s.fileStorage.DeleteImage(ctx, orphan.URL); err != nil {
			log.Printf("attachment: failed to delete %s from storage: %v", orphan.URL, err)
			continue
		}
		if err := s.repo.Delete(ctx, orphan.ID); err != nil {
			log.Printf("attachment: failed to delete upload %s: %v", orphan.ID, err)
			continue
		}
		removed++
	}
	return removed, nil
}
