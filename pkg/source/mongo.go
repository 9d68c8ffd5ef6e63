package source

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/convoflow/convoflow/pkg/errors"
	"github.com/convoflow/convoflow/pkg/message"
	"github.com/convoflow/convoflow/pkg/observability"
)

// MongoSource reads conversations from a MongoDB collection.
// Each document is a [Transcript]: an id, an optional title, and the ordered
// messages array.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSource connects to MongoDB and binds to the given collection.
// The URI is validated before dialing; connectivity is verified with a ping.
func NewMongoSource(ctx context.Context, uri, database, collection string) (*MongoSource, error) {
	if err := errors.ValidateMongoURI(uri); err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	return &MongoSource{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Fetch loads the message stream of one conversation document.
func (s *MongoSource) Fetch(ctx context.Context, conversationID string) ([]message.Entry, error) {
	if err := errors.ValidateConversationID(conversationID); err != nil {
		return nil, err
	}

	observability.Source().OnFetch(ctx, "mongo", conversationID)
	start := time.Now()

	var t Transcript
	err := s.coll.FindOne(ctx, bson.M{"id": conversationID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		notFound := errors.New(errors.ErrCodeConversationNotFound, "conversation %s not found", conversationID)
		observability.Source().OnFetchError(ctx, "mongo", conversationID, notFound)
		return nil, notFound
	}
	if err != nil {
		wrapped := errors.Wrap(errors.ErrCodeNetwork, err, "fetch conversation %s", conversationID)
		observability.Source().OnFetchError(ctx, "mongo", conversationID, wrapped)
		return nil, wrapped
	}

	observability.Source().OnFetchComplete(ctx, "mongo", conversationID, len(t.Messages), time.Since(start))
	return t.Messages, nil
}

// List enumerates conversation documents without loading their messages.
func (s *MongoSource) List(ctx context.Context) ([]Info, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$project", Value: bson.M{
			"id":            1,
			"title":         1,
			"message_count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$messages", bson.A{}}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"id": 1}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list conversations")
	}
	defer cursor.Close(ctx)

	infos := []Info{}
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "decode conversation list")
	}
	return infos, nil
}

// Close disconnects from MongoDB.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoSource implements Source.
var _ Source = (*MongoSource)(nil)
