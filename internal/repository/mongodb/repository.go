package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// stateDocID is the fixed id of the single snapshot document. The whole
// books live in one document so a save is atomic at the storage level.
const stateDocID = "poultry_books_state_v1"

// StateRepository persists whole-state snapshots of the books in MongoDB.
type StateRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
	logger   *zap.Logger
}

// stateDocument is the stored shape: the books serialized as JSON plus a
// write timestamp. JSON keeps the payload identical to the export format.
type stateDocument struct {
	ID        string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewStateRepository connects to MongoDB and verifies the connection.
func NewStateRepository(ctx context.Context, uri, dbName string, logger *zap.Logger) (*StateRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &StateRepository{
		client:   client,
		dbName:   dbName,
		collName: "state",
		logger:   logger,
	}, nil
}

// Load fetches the snapshot document. An absent or unreadable snapshot yields
// the default state rather than an error; only transport failures surface so
// the caller can decide to run in memory.
func (r *StateRepository) Load(ctx context.Context) (models.State, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)

	var doc stateDocument
	err := collection.FindOne(ctx, bson.M{"_id": stateDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Info("no stored state, starting with defaults")
		return models.DefaultState(), nil
	}
	if err != nil {
		return models.DefaultState(), fmt.Errorf("failed to load state document: %w", err)
	}

	var st models.State
	if err := json.Unmarshal(doc.Payload, &st); err != nil {
		r.logger.Warn("stored state unreadable, starting with defaults", zap.Error(err))
		return models.DefaultState(), nil
	}
	st.Normalize()
	return st, nil
}

// Save upserts the whole snapshot in one replace, so readers never observe a
// half-written state.
func (r *StateRepository) Save(ctx context.Context, st models.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	collection := r.client.Database(r.dbName).Collection(r.collName)
	doc := stateDocument{ID: stateDocID, Payload: payload, UpdatedAt: time.Now().UTC()}

	opts := options.Replace().SetUpsert(true)
	if _, err := collection.ReplaceOne(ctx, bson.M{"_id": stateDocID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save state document: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *StateRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
