package bootstrap

import (
	"context"
	"fmt"
	"log"

	"stackit.dev/forum/internal/entity"
	tagRepo "stackit.dev/forum/internal/modules/tag/repository"
	tag "stackit.dev/forum/internal/modules/tag/service"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&entity.Question{}, "Tags", &entity.QuestionTag{}); err != nil {
		return fmt.Errorf("setup question_tags: %w", err)
	}
	return db.AutoMigrate(
		&entity.User{},
		&entity.Tag{},
		&entity.Question{},
		&entity.QuestionTag{},
		&entity.Answer{},
		&entity.Vote{},
		&entity.Comment{},
		&entity.Notification{},
		&entity.Upload{},
	)
}

// SeedTags makes sure the default tag catalog exists.
func SeedTags(ctx context.Context, db *gorm.DB) (int, error) {
	n, err := tag.NewTagService(tagRepo.NewTagRepository(db)).Seed(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("bootstrap: %d default tags present", n)
	return n, nil
}

// PromoteAdmin grants the ADMIN role to the user with the given external id.
// The user must have signed in at least once.
func PromoteAdmin(ctx context.Context, db *gorm.DB, externalID string) (*entity.User, error) {
	var user entity.User
	if err := db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("find user %s: %w", externalID, err)
	}
	if user.Role == entity.RoleAdmin {
		return &user, nil
	}
	if err := db.WithContext(ctx).Model(&user).Update("role", entity.RoleAdmin).Error; err != nil {
		return nil, err
	}
	user.Role = entity.RoleAdmin
	return &user, nil
}
