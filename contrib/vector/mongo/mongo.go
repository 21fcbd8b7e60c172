// Package mongo implements vector.VectorStore on MongoDB Atlas using
// the $vectorSearch aggregation stage. The Atlas search index must be
// created out of band and cover the embedding and document_id fields.
package mongo

import (
	"context"
	"fmt"
	"time"

	domainerrors "github.com/sweetpotato0/student-agents/errors"
	"github.com/sweetpotato0/student-agents/vector"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoVectorStore implements VectorStore backed by MongoDB Atlas.
type MongoVectorStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	indexName  string
}

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	IndexName  string // Atlas vector search index name
}

// DefaultMongoConfig returns default MongoDB configuration.
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "student_agents",
		Collection: "chunks",
		IndexName:  "chunk_embedding_index",
	}
}

type mongoEmbedding struct {
	ID         string    `bson:"_id"`
	DocumentID string    `bson:"document_id"`
	Text       string    `bson:"text"`
	Embedding  []float32 `bson:"embedding"`
	CreatedAt  time.Time `bson:"created_at"`
}

// NewMongoVectorStore creates a new MongoDB-backed vector store.
func NewMongoVectorStore(config *MongoConfig) (*MongoVectorStore, error) {
	if config == nil {
		config = DefaultMongoConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoVectorStore{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
		indexName:  config.IndexName,
	}, nil
}

// AddEmbedding adds a new embedding to the store.
func (s *MongoVectorStore) AddEmbedding(ctx context.Context, embedding *vector.Embedding) error {
	if embedding == nil {
		return fmt.Errorf("embedding cannot be nil")
	}
	if embedding.ID == "" {
		return fmt.Errorf("embedding ID cannot be empty")
	}
	if len(embedding.Vector) == 0 {
		return fmt.Errorf("embedding vector cannot be empty")
	}

	doc := mongoEmbedding{
		ID:         embedding.ID,
		DocumentID: embedding.DocumentID,
		Text:       embedding.Text,
		Embedding:  embedding.Vector,
		CreatedAt:  time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": embedding.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to add embedding: %w", err)
	}
	return nil
}

// Search finds embeddings similar to the query vector.
func (s *MongoVectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]*vector.Embedding, error) {
	return s.SearchScoped(ctx, queryVector, topK, nil)
}

// SearchScoped implements vector.ScopedVectorStore. The document scope
// is pushed into the $vectorSearch filter so Atlas prunes candidates
// server-side.
func (s *MongoVectorStore) SearchScoped(ctx context.Context, queryVector []float32, topK int, scope []string) ([]*vector.Embedding, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if topK <= 0 {
		topK = 10
	}

	search := bson.M{
		"index":         s.indexName,
		"path":          "embedding",
		"queryVector":   queryVector,
		"numCandidates": topK * 10,
		"limit":         topK,
	}
	if scope != nil {
		search["filter"] = bson.M{"document_id": bson.M{"$in": scope}}
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: search}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}
	defer cursor.Close(ctx)

	embeddings := make([]*vector.Embedding, 0, topK)
	for cursor.Next(ctx) {
		var doc mongoEmbedding
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		embeddings = append(embeddings, toEmbedding(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating embeddings: %w", err)
	}
	return embeddings, nil
}

// DeleteEmbedding removes an embedding by ID.
func (s *MongoVectorStore) DeleteEmbedding(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("embedding %s: %w", id, domainerrors.ErrNotFound)
	}
	return nil
}

// GetEmbedding retrieves a specific embedding by ID.
func (s *MongoVectorStore) GetEmbedding(ctx context.Context, id string) (*vector.Embedding, error) {
	var doc mongoEmbedding
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("embedding %s: %w", id, domainerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}
	return toEmbedding(doc), nil
}

// Clear removes all embeddings.
func (s *MongoVectorStore) Clear(ctx context.Context) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear embeddings: %w", err)
	}
	return nil
}

// Count returns the number of embeddings.
func (s *MongoVectorStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return int(count), nil
}

// Close disconnects the underlying client.
func (s *MongoVectorStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toEmbedding(doc mongoEmbedding) *vector.Embedding {
	return &vector.Embedding{
		ID:         doc.ID,
		DocumentID: doc.DocumentID,
		Text:       doc.Text,
		Vector:     doc.Embedding,
	}
}
