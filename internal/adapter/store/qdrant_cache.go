package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// cacheFreshness bounds how old a cached narrative may be. Customer context
// shifts quickly (a notice gets fixed, a card gets replaced), so stale
// narratives must age out even when the vectors still match.
const cacheFreshness = 24 * time.Hour

// QdrantCache stores generated narratives keyed by query embedding. Payload
// carries the original query so the intent judge can re-check a hit.
type QdrantCache struct {
	client         *qdrant.Client
	collectionName string
}

func NewQdrantCache(client *qdrant.Client, collectionName string) *QdrantCache {
	return &QdrantCache{client: client, collectionName: collectionName}
}

// InitCollection creates the collection and the created_at payload index if
// they do not exist yet.
func (s *QdrantCache) InitCollection(ctx context.Context, dim uint64) error {
	_, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		st, ok := status.FromError(err)
		if !ok || st.Code() != codes.NotFound {
			return err
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	// Index created_at so the freshness range filter stays fast.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collectionName,
		FieldName:      "created_at",
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		log.Printf("[QDRANT] Warning: Could not create created_at index (might already exist): %v", err)
	}
	return nil
}

// Search returns the best fresh hit above the score threshold, or empty
// strings when nothing qualifies.
func (s *QdrantCache) Search(ctx context.Context, vector []float32, threshold float32) (string, string, error) {
	cutoff := time.Now().Add(-cacheFreshness).Unix()
	freshness := &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: "created_at",
				Range: &qdrant.Range{
					Gte: qdrant.PtrOf(float64(cutoff)),
				},
			},
		},
	}

	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         &qdrant.Filter{Must: []*qdrant.Condition{freshness}},
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
		ScoreThreshold: &threshold,
	})
	if err != nil || len(res) == 0 {
		return "", "", err
	}

	payload := res[0].Payload
	return payload["content"].GetStringValue(), payload["query"].GetStringValue(), nil
}

// Save upserts a freshly generated narrative with its source query.
func (s *QdrantCache) Save(ctx context.Context, query, content string, vector []float32) error {
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(uuid.NewString()),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"query":      query,
					"content":    content,
					"created_at": time.Now().Unix(),
				}),
			},
		},
	})
	return err
}
