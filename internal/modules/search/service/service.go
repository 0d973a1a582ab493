package service

import (
	"encoding/json"
	"fmt"
	"log"

	"stackit.dev/forum/internal/entity"
	"stackit.dev/forum/pkg/richtext"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const questionsIndex = "questions"

type SearchService interface {
	IndexQuestion(doc QuestionDocument) error
	DeleteQuestion(id uuid.UUID) error
	// SearchIDs returns matching question ids ordered by relevance.
	SearchIDs(query string, limit int) ([]uuid.UUID, error)
	Reindex(docs []QuestionDocument) error
}

// QuestionDocument is the searchable projection of a question.
type QuestionDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Tags        []string `json:"tags"`
	Username    string   `json:"username"`
	AnswerCount int      `json:"answer_count"`
	Accepted    bool     `json:"accepted"`
	CreatedAt   int64    `json:"created_at"`
}

func NewQuestionDocument(q *entity.Question, answerCount int) QuestionDocument {
	tags := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		tags = append(tags, t.Name)
	}
	return QuestionDocument{
		ID:          q.ID.String(),
		Title:       q.Title,
		Body:        richtext.PlainText(q.Body),
		Tags:        tags,
		Username:    q.User.Username,
		AnswerCount: answerCount,
		Accepted:    q.AcceptedAnswerID != nil,
		CreatedAt:   q.CreatedAt.Unix(),
	}
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{client: client}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	if _, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        questionsIndex,
		PrimaryKey: "id",
	}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", questionsIndex, err)
	}

	index := s.client.Index(questionsIndex)

	searchable := []string{"title", "body", "tags", "username"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs: %v", err)
	}

	filterable := []interface{}{"tags", "accepted", "answer_count"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("search: update filterable attrs: %v", err)
	}

	sortable := []string{"created_at", "answer_count"}
	if _, err := index.UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("search: update sortable attrs: %v", err)
	}
}

func (s *meiliSearchService) IndexQuestion(doc QuestionDocument) error {
	task, err := s.client.Index(questionsIndex).AddDocuments([]QuestionDocument{doc}, nil)
	if err != nil {
		return err
	}
	log.Printf("search: indexed question %s, task id: %d", doc.ID, task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteQuestion(id uuid.UUID) error {
	_, err := s.client.Index(questionsIndex).DeleteDocument(id.String(), nil)
	return err
}

func (s *meiliSearchService) SearchIDs(query string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	resp, err := s.client.Index(questionsIndex).Search(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if id, ok := hitID(hit); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Reindex upserts every document in batches.
func (s *meiliSearchService) Reindex(docs []QuestionDocument) error {
	const batch = 500
	index := s.client.Index(questionsIndex)
	for start := 0; start < len(docs); start += batch {
		end := min(start+batch, len(docs))
		if _, err := index.AddDocuments(docs[start:end], nil); err != nil {
			return fmt.Errorf("index batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

func hitID(hit meilisearch.Hit) (uuid.UUID, bool) {
	raw, ok := hit["id"]
	if !ok {
		return uuid.Nil, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
