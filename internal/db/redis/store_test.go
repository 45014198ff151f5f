package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/community-brain/braintrust/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- hash.go tests ---

func TestHSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HSET", "thread:t1", "title", "Hello")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "thread:t1", map[string]string{"title": "Hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXISTS", "thread:t1")).
		Return(mock.Result(mock.RedisInt64(0)))

	s := NewStoreForTest(c)
	ok, err := s.Exists(context.Background(), "thread:t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected key to be absent")
	}
}

// --- index.go tests ---

func TestBuildCreateArgs(t *testing.T) {
	def := &db.IndexDefinition{
		Name:     "threads:idx",
		Prefixes: []string{"thread:"},
		Fields: []db.IndexField{
			{Name: "title", Type: db.IndexFieldText},
			{Name: "tags", Type: db.IndexFieldTag, TagSeparator: ","},
			{
				Name:           "vector",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorHNSW,
				VectorDistance: db.DistanceCosine,
				VectorDim:      1536,
			},
		},
	}

	args, err := buildCreateArgs(def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"threads:idx ON HASH",
		"PREFIX 1 thread:",
		"tags TAG SEPARATOR ,",
		"VECTOR HNSW",
		"DIM 1536",
		"DISTANCE_METRIC COSINE",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in %q", want, joined)
		}
	}
}

func TestBuildCreateArgs_Invalid(t *testing.T) {
	if _, err := buildCreateArgs(&db.IndexDefinition{}); err == nil {
		t.Error("expected error for empty definition")
	}
	_, err := buildFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldVector, VectorDim: 0})
	if err == nil {
		t.Error("expected error for zero vector dim")
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), &db.IndexDefinition{
		Name:   "threads:idx",
		Fields: []db.IndexField{{Name: "title", Type: db.IndexFieldText}},
	})
	if !errors.Is(err, db.ErrIndexExists) {
		t.Fatalf("expected ErrIndexExists, got %v", err)
	}
}

func TestIndexExists_Absent(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "threads:idx")).
		Return(mock.Result(mock.RedisError("Unknown index name")))

	s := NewStoreForTest(c)
	ok, err := s.IndexExists(context.Background(), "threads:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected index to be reported absent")
	}
}

// --- search.go tests ---

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1), // total
			mock.RedisString("thread:t1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.1"),
				mock.RedisString("title"),
				mock.RedisString("Queue retries"),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "threads:idx",
		Vector:    []float32{0.1, 0.2},
		K:         5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 || len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got total=%d entries=%d", result.Total, len(result.Entries))
	}
	if result.Entries[0].Key != "thread:t1" {
		t.Errorf("expected key thread:t1, got %s", result.Entries[0].Key)
	}
	// cosine distance 0.1 maps to similarity 0.9
	if result.Entries[0].Score < 0.89 || result.Entries[0].Score > 0.91 {
		t.Errorf("expected score ~0.9, got %f", result.Entries[0].Score)
	}
	if result.Entries[0].Fields["title"] != "Queue retries" {
		t.Errorf("unexpected fields: %v", result.Entries[0].Fields)
	}
}

func TestSearchKNN_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "threads:idx",
		Vector:    []float32{0.1},
		K:         5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(result.Entries))
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := NewStoreForTest(nil)

	if _, err := s.SearchKNN(context.Background(), &db.KNNQuery{Vector: []float32{1}, K: 1}); err == nil {
		t.Error("expected error for missing index name")
	}
	if _, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "i", K: 1}); err == nil {
		t.Error("expected error for missing vector")
	}
	if _, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "i", Vector: []float32{1}}); err == nil {
		t.Error("expected error for non-positive k")
	}
}

func TestBuildTagFilters(t *testing.T) {
	if got := buildTagFilters(nil); got != "" {
		t.Errorf("expected empty filter, got %q", got)
	}
	got := buildTagFilters(map[string]string{"tags": "go"})
	if got != "@tags:{go}" {
		t.Errorf("unexpected filter %q", got)
	}
	got = buildTagFilters(map[string]string{"tags": "message-queues"})
	if got != `@tags:{message\-queues}` {
		t.Errorf("unexpected escaped filter %q", got)
	}
}

// --- vector.go tests ---

func TestVectorRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.75}
	out := BytesToVector(VectorToBytes(in))
	if len(out) != len(in) {
		t.Fatalf("expected %d floats, got %d", len(in), len(out))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("index %d: %f != %f", i, in[i], out[i])
		}
	}
}

func TestBytesToVector_Malformed(t *testing.T) {
	if v := BytesToVector("abc"); v != nil {
		t.Errorf("expected nil for malformed input, got %v", v)
	}
}
