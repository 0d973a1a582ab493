package commands

import (
	"errors"
	"fmt"
	"time"

	answerRepo "stackit.dev/forum/internal/modules/answer/repository"
	attachmentRepo "stackit.dev/forum/internal/modules/attachment/repository"
	attachment "stackit.dev/forum/internal/modules/attachment/service"
	questionRepo "stackit.dev/forum/internal/modules/question/repository"
	question "stackit.dev/forum/internal/modules/question/service"
	tagRepo "stackit.dev/forum/internal/modules/tag/repository"
	tag "stackit.dev/forum/internal/modules/tag/service"
	voteRepo "stackit.dev/forum/internal/modules/vote/repository"
	"stackit.dev/forum/internal/server"
	"stackit.dev/forum/pkg/storage"

	"github.com/spf13/cobra"
)

var orphanAge time.Duration

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the question search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		search := server.NewSearch(cfg)
		if search == nil {
			return errors.New("MEILISEARCH_HOST is not set")
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}

		svc := question.NewService(
			questionRepo.NewQuestionRepository(db),
			answerRepo.NewAnswerRepository(db),
			voteRepo.NewVoteRepository(db),
			tag.NewTagService(tagRepo.NewTagRepository(db)),
			search,
			nil,
		)
		n, err := svc.Reindex(cmd.Context())
		if err != nil {
			return fmt.Errorf("reindex: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d questions\n", n)
		return nil
	},
}

var cleanupUploadsCmd = &cobra.Command{
	Use:   "cleanup-uploads",
	Short: "Delete uploaded images that no question or answer embeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		store, err := storage.New(cmd.Context(), cfg.StorageOptions())
		if err != nil {
			return err
		}

		svc := attachment.NewAttachmentService(attachmentRepo.NewUploadRepository(db), store, cfg.UploadFolder)
		n, err := svc.CleanupOrphans(cmd.Context(), orphanAge)
		if err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d orphaned uploads\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(cleanupUploadsCmd)

	cleanupUploadsCmd.Flags().DurationVar(&orphanAge, "older-than", 24*time.Hour, "Only remove uploads older than this")
}
