package mongo

import (
	"context"
	"time"

	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type documentDoc struct {
	ID          string    `bson:"_id"`
	OwnerID     string    `bson:"owner_id"`
	Name        string    `bson:"name"`
	Type        string    `bson:"type"`
	Size        int64     `bson:"size"`
	StoragePath string    `bson:"storage_path"`
	FileURL     string    `bson:"file_url"`
	CreatedAt   time.Time `bson:"created_at"`
}

type documentsRepo struct {
	coll *mongo.Collection
}

func (r *documentsRepo) CreateDocument(ctx context.Context, d domain.Document) error {
	_, err := r.coll.InsertOne(ctx, documentDoc{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Type:        d.Type,
		Size:        d.Size,
		StoragePath: d.StoragePath,
		FileURL:     d.FileURL,
		CreatedAt:   d.CreatedAt.UTC(),
	})
	return mapDuplicate(err)
}

func (r *documentsRepo) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	cur, err := r.coll.Find(ctx,
		bson.D{{Key: "owner_id", Value: ownerID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	var rows []documentDoc
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, domain.Document{
			ID:          row.ID,
			OwnerID:     row.OwnerID,
			Name:        row.Name,
			Type:        row.Type,
			Size:        row.Size,
			StoragePath: row.StoragePath,
			FileURL:     row.FileURL,
			CreatedAt:   row.CreatedAt,
		})
	}
	return docs, nil
}
