package vectordb

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ziadkadry99/moviesearch/internal/embeddings"
)

// Payload keys stored with each Qdrant point.
const (
	payloadMovie       = "movie"
	payloadDescription = "description"
)

// QdrantStore implements VectorStore on a Qdrant collection over gRPC.
// Point ids are name-based UUIDs of the movie title, so re-adding a title
// overwrites its point.
type QdrantStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	embedder    embeddings.Embedder

	ensureOnce sync.Once
	ensureErr  error
}

// NewQdrantStore connects to Qdrant at addr (host:port of the gRPC API).
func NewQdrantStore(addr, collection string, embedder embeddings.Embedder) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", addr, err)
	}
	return &QdrantStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		embedder:    embedder,
	}, nil
}

// PointID returns the Qdrant point id for a movie title.
func PointID(title string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("movie:"+title)).String()
}

// EnsureCollection creates the collection and its rating index if missing.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		s.ensureErr = s.ensureCollection(ctx)
	})
	return s.ensureErr
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(s.embedder.Dimensions()),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", s.collection, err)
	}

	wait := true
	_, err = s.points.CreateFieldIndex(ctx, &pb.CreateFieldIndexCollection{
		CollectionName: s.collection,
		Wait:           &wait,
		FieldName:      metaRating,
		FieldType:      pb.FieldType_FieldTypeFloat.Enum(),
	})
	if err != nil {
		return fmt.Errorf("qdrant: index %s: %w", metaRating, err)
	}
	return nil
}

func (s *QdrantStore) Add(ctx context.Context, ids []string, documents []string, metadatas []Metadata) error {
	if err := checkAddArgs(ids, documents, metadatas); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return err
	}

	vecs, err := s.embedder.Embed(ctx, documents)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vecs) != len(documents) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vecs), len(documents))
	}

	points := make([]*pb.PointStruct, len(ids))
	for i, id := range ids {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(id)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vecs[i]},
				},
			},
			Payload: toPayload(id, documents[i], metadatas[i]),
		}
	}

	wait := true
	_, err = s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(points), err)
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, texts []string, n int, filter Filter) (*QueryResult, error) {
	if err := checkQueryArgs(texts, n); err != nil {
		return nil, err
	}

	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	result := &QueryResult{}
	for _, vec := range vecs {
		resp, err := s.points.Search(ctx, &pb.SearchPoints{
			CollectionName: s.collection,
			Vector:         vec,
			Limit:          uint64(n),
			Filter:         qdrantFilter(filter),
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: search: %w", err)
		}

		matches := make([]Match, len(resp.GetResult()))
		for i, p := range resp.GetResult() {
			matches[i] = fromPayload(p.GetPayload())
			// Cosine score is a similarity; report it as distance like chromem does.
			matches[i].Distance = 1 - float64(p.GetScore())
		}
		result.appendRow(matches)
	}
	return result, nil
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant: count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Close closes the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.conn.Close()
}

// qdrantFilter translates a Filter into Qdrant's native range condition.
func qdrantFilter(f Filter) *pb.Filter {
	threshold, ok := f.MinRatingThreshold()
	if !ok {
		return nil
	}
	return &pb.Filter{
		Must: []*pb.Condition{{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key:   metaRating,
					Range: &pb.Range{Gte: &threshold},
				},
			},
		}},
	}
}

func toPayload(id, document string, m Metadata) map[string]*pb.Value {
	payload := map[string]*pb.Value{
		payloadMovie:       {Kind: &pb.Value_StringValue{StringValue: id}},
		payloadDescription: {Kind: &pb.Value_StringValue{StringValue: document}},
		metaGenre:          {Kind: &pb.Value_StringValue{StringValue: m.Genre}},
	}
	if m.Rating != nil {
		payload[metaRating] = &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: *m.Rating}}
	}
	return payload
}

func fromPayload(payload map[string]*pb.Value) Match {
	m := Match{
		ID:       payload[payloadMovie].GetStringValue(),
		Document: payload[payloadDescription].GetStringValue(),
		Metadata: Metadata{Genre: payload[metaGenre].GetStringValue()},
	}
	if v, ok := payload[metaRating]; ok {
		var r float64
		switch k := v.GetKind().(type) {
		case *pb.Value_DoubleValue:
			r = k.DoubleValue
		case *pb.Value_IntegerValue:
			r = float64(k.IntegerValue)
		default:
			return m
		}
		m.Metadata.Rating = &r
	}
	return m
}

var (
	_ VectorStore = (*QdrantStore)(nil)
	_ VectorStore = (*ChromemStore)(nil)
)
