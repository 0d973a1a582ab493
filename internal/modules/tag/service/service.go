package tag

import (
	"context"
	"strings"
	"unicode/utf8"

	"stackit.dev/forum/internal/entity"
	"stackit.dev/forum/internal/modules/tag/repository"
	"stackit.dev/forum/pkg/apperror"
)

const (
	MinTagsPerQuestion = 1
	MaxTagsPerQuestion = 5
	maxTagNameLen      = 30
)

// DefaultTags seeds a fresh catalog.
var DefaultTags = []string{
	"JavaScript", "TypeScript", "React", "Next.js", "Node.js",
	"Python", "HTML", "CSS", "Database", "SQL",
	"NoSQL", "API", "Frontend", "Backend", "Full Stack",
	"Bug", "Help", "Tutorial", "Best Practices", "Performance",
	"Security", "Testing", "Deployment", "Git", "Docker",
}

type TagService interface {
	FindOrCreate(ctx context.Context, names []string) ([]entity.Tag, error)
	List(ctx context.Context, search string) ([]repository.TagWithCount, error)
	Seed(ctx context.Context) (int, error)
}

type tagService struct {
	repo repository.TagRepository
}

func NewTagService(repo repository.TagRepository) TagService {
	return &tagService{repo: repo}
}

// NormalizeTags trims names, drops blanks and repeats (case-sensitive) and
// enforces the per-question tag count.
func NormalizeTags(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if utf8.RuneCountInString(n) > maxTagNameLen {
			return nil, apperror.Field("tags", "tag %q must be at most %d characters", n, maxTagNameLen)
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	if len(out) < MinTagsPerQuestion {
		return nil, apperror.Field("tags", "at least one tag is required")
	}
	if len(out) > MaxTagsPerQuestion {
		return nil, apperror.Field("tags", "maximum %d tags allowed", MaxTagsPerQuestion)
	}
	return out, nil
}

func (s *tagService) FindOrCreate(ctx context.Context, names []string) ([]entity.Tag, error) {
	return s.repo.FindOrCreate(ctx, names)
}

func (s *tagService) List(ctx context.Context, search string) ([]repository.TagWithCount, error) {
	return s.repo.FindAll(ctx, strings.TrimSpace(search))
}

func (s *tagService) Seed(ctx context.Context) (int, error) {
	tags, err := s.repo.FindOrCreate(ctx, DefaultTags)
	if err != nil {
		return 0, err
	}
	return len(tags), nil
}
