// Package memory is an in-process InterviewStore used for local development
// and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/msvee3/Interview-prep/internal/models"
	"github.com/msvee3/Interview-prep/internal/store"
)

type Store struct {
	mu   sync.Mutex
	docs map[string]*models.Interview
}

func New() *Store {
	return &Store{docs: make(map[string]*models.Interview)}
}

func (s *Store) Create(_ context.Context, interview *models.Interview) (*models.Interview, error) {
	doc, err := clone(interview)
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.QA == nil {
		doc.QA = []models.QuestionAnswer{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; exists {
		return nil, fmt.Errorf("interview %s already exists", doc.ID)
	}
	s.docs[doc.ID] = doc
	return clone(doc)
}

func (s *Store) Get(_ context.Context, id string) (*models.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, store.ErrInterviewNotFound
	}
	return clone(doc)
}

// Update merges fields into the stored document through its bson form, so
// field names and nested replacement behave as they do in Mongo's $set.
func (s *Store) Update(_ context.Context, id string, fields store.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return store.ErrInterviewNotFound
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode interview: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("decode interview: %w", err)
	}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		m[k] = v
	}
	raw, err = bson.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}
	var updated models.Interview
	if err := bson.Unmarshal(raw, &updated); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}
	s.docs[id] = &updated
	return nil
}

func (s *Store) AppendTurn(_ context.Context, id string, turn models.QuestionAnswer, transcriptBlock string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return 0, store.ErrInterviewNotFound
	}
	if doc.Status != models.StatusInProgress {
		return 0, store.ErrInterviewClosed
	}
	doc.QA = append(doc.QA, turn)
	doc.Transcript += transcriptBlock
	return len(doc.QA), nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID string, limit int64) ([]models.Interview, error) {
	s.mu.Lock()
	out := []models.Interview{}
	for _, doc := range s.docs {
		if doc.UserID != ownerID {
			continue
		}
		c, err := clone(doc)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		out = append(out, *c)
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

// clone deep-copies through bson so callers never share slices or pointers
// with the stored document.
func clone(in *models.Interview) (*models.Interview, error) {
	raw, err := bson.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode interview: %w", err)
	}
	var out models.Interview
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode interview: %w", err)
	}
	if out.QA == nil {
		out.QA = []models.QuestionAnswer{}
	}
	return &out, nil
}
