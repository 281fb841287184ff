// Package mongo stores interview sessions as MongoDB documents.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/msvee3/Interview-prep/internal/models"
	"github.com/msvee3/Interview-prep/internal/store"
)

// Repo wraps the interviews collection
type Repo struct {
	client *Client
	col    *mongo.Collection
}

// NewInterviewRepo opens the collection and ensures the owner listing index
func NewInterviewRepo(ctx context.Context, c *Client, collection string) (*Repo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	if collection == "" {
		collection = "interviews"
	}

	r := &Repo{client: c, col: db.Collection(collection)}
	_, err = r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "startedAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create interviews index: %w", err)
	}
	return r, nil
}

func (r *Repo) Create(ctx context.Context, interview *models.Interview) (*models.Interview, error) {
	if interview.ID == "" {
		interview.ID = uuid.NewString()
	}
	if interview.QA == nil {
		interview.QA = []models.QuestionAnswer{}
	}
	if _, err := r.col.InsertOne(ctx, interview); err != nil {
		return nil, err
	}
	return interview, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Interview, error) {
	var out models.Interview
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrInterviewNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *Repo) Update(ctx context.Context, id string, fields store.Fields) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, setDocument(fields))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrInterviewNotFound
	}
	return nil
}

// AppendTurn pushes the turn and extends the transcript in one pipeline
// update, so concurrent answers to the same session never lose a turn. The
// filter only matches in-progress sessions, so a turn racing with finish is
// rejected rather than appended to a completed session.
func (r *Repo) AppendTurn(ctx context.Context, id string, turn models.QuestionAnswer, transcriptBlock string) (int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"qa": 1})

	var updated struct {
		QA []bson.Raw `bson:"qa"`
	}
	err := r.col.FindOneAndUpdate(ctx, appendTurnFilter(id), appendTurnPipeline(turn, transcriptBlock), opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, r.appendMissReason(ctx, id)
		}
		return 0, err
	}
	return len(updated.QA), nil
}

// appendMissReason tells a missing session apart from a completed one after
// the append filter matched nothing.
func (r *Repo) appendMissReason(ctx context.Context, id string) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrInterviewNotFound
	}
	return store.ErrInterviewClosed
}

func appendTurnFilter(id string) bson.M {
	return bson.M{"_id": id, "status": models.StatusInProgress}
}

func (r *Repo) ListByOwner(ctx context.Context, ownerID string, limit int64) ([]models.Interview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Interview{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func setDocument(fields store.Fields) bson.M {
	set := bson.M{}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		set[k] = v
	}
	return bson.M{"$set": set}
}

// appendTurnPipeline builds the update pipeline for AppendTurn. Values are
// wrapped in $literal because answer text may start with '$'.
func appendTurnPipeline(turn models.QuestionAnswer, transcriptBlock string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "qa", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$qa", bson.A{}}}},
				bson.D{{Key: "$literal", Value: bson.A{turn}}},
			}}}},
			{Key: "transcript", Value: bson.D{{Key: "$concat", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$transcript", ""}}},
				bson.D{{Key: "$literal", Value: transcriptBlock}},
			}}}},
		}}},
	}
}
