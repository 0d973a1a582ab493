package repository

import (
	"context"

	"stackit.dev/forum/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagWithCount struct {
	entity.Tag
	QuestionCount int64 `json:"question_count"`
}

type TagRepository interface {
	// FindOrCreate returns one tag per name, in the order given. Names must already be unique.
	FindOrCreate(ctx context.Context, names []string) ([]entity.Tag, error)
	FindAll(ctx context.Context, search string) ([]TagWithCount, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindOrCreate(ctx context.Context, names []string) ([]entity.Tag, error) {
	if len(names) == 0 {
		return []entity.Tag{}, nil
	}

	rows := make([]entity.Tag, len(names))
	for i, name := range names {
		rows[i] = entity.Tag{Name: name}
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return nil, err
	}

	var found []entity.Tag
	if err := db.Where("name IN ?", names).Find(&found).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]entity.Tag, len(found))
	for _, t := range found {
		byName[t.Name] = t
	}

	ordered := make([]entity.Tag, 0, len(names))
	for _, name := range names {
		if t, ok := byName[name]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

func (r *tagRepository) FindAll(ctx context.Context, search string) ([]TagWithCount, error) {
	var tags []TagWithCount
	query := r.db.WithContext(ctx).
		Model(&entity.Tag{}).
		Select("tags.*, COUNT(question_tags.question_id) AS question_count").
		Joins("LEFT JOIN question_tags ON question_tags.tag_id = tags.id").
		Group("tags.id")

	if search != "" {
		query = query.Where("tags.name ILIKE ?", "%"+search+"%")
	}

	if err := query.Order("question_count DESC, tags.name ASC").Scan(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
