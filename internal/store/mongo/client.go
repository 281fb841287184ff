package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

type Client struct {
	raw    *mongo.Client
	dbName string
}

func NewClient(ctx context.Context, uri, dbName string) (*Client, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI is empty")
	}
	if dbName == "" {
		dbName = "interview_prep"
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &Client{raw: c, dbName: dbName}, nil
}

func (c *Client) DB() (*mongo.Database, error) {
	if c == nil || c.raw == nil {
		return nil, errors.New("mongo client not initialized")
	}
	return c.raw.Database(c.dbName), nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.raw == nil {
		return errors.New("mongo client not initialized")
	}
	return c.raw.Ping(ctx, readpref.Primary())
}

func (c *Client) Disconnect(ctx context.Context) error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Disconnect(ctx)
}
