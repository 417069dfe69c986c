package vectorstore

import (
	"context"
	"fmt"
	"strings"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"rag-prep/internal/embeddings"
)

const (
	fieldID         = "id"
	fieldSourceFile = "source_file"
	fieldText       = "text"
	fieldEmbedding  = "embedding"

	maxIDLength     = 512
	maxSourceLength = 1024
	maxTextLength   = 65535
)

// Milvus implements Index on a Milvus collection. The collection carries the
// record id as primary key plus the source_file and text metadata fields.
type Milvus struct {
	client milvusclient.Client
	metric entity.MetricType
	coll   string
}

// NewMilvus connects to Milvus and returns an Index backed by it.
func NewMilvus(ctx context.Context, address, metric string) (*Milvus, error) {
	mt, err := metricType(metric)
	if err != nil {
		return nil, err
	}
	c, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("milvus connect %s: %w", address, err)
	}
	return &Milvus{client: c, metric: mt}, nil
}

func metricType(metric string) (entity.MetricType, error) {
	switch metric {
	case "cosine", "":
		return entity.COSINE, nil
	case "l2":
		return entity.L2, nil
	case "ip":
		return entity.IP, nil
	default:
		return "", fmt.Errorf("unsupported metric %q", metric)
	}
}

// EnsureIndex creates the collection, an HNSW index, and loads it. It is a
// no-op when the collection already exists.
func (m *Milvus) EnsureIndex(ctx context.Context, name string, dimension int) error {
	m.coll = name
	exists, err := m.client.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if exists {
		return nil
	}

	schema := entity.NewSchema().
		WithName(name).
		WithField(entity.NewField().
			WithName(fieldID).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxIDLength).
			WithIsPrimaryKey(true)).
		WithField(entity.NewField().
			WithName(fieldSourceFile).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxSourceLength)).
		WithField(entity.NewField().
			WithName(fieldText).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxTextLength)).
		WithField(entity.NewField().
			WithName(fieldEmbedding).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dimension)))

	if err := m.client.CreateCollection(ctx, schema, 1); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	idx, err := entity.NewIndexHNSW(m.metric, 16, 200)
	if err != nil {
		return fmt.Errorf("create HNSW index params: %w", err)
	}
	if err := m.client.CreateIndex(ctx, name, fieldEmbedding, idx, false); err != nil {
		return fmt.Errorf("create index on %s: %w", name, err)
	}
	if err := m.client.LoadCollection(ctx, name, false); err != nil {
		return fmt.Errorf("load collection %s: %w", name, err)
	}
	return nil
}

// Upsert writes records into the collection and flushes.
func (m *Milvus) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	coll, err := m.collection()
	if err != nil {
		return err
	}

	ids := make([]string, len(records))
	sources := make([]string, len(records))
	texts := make([]string, len(records))
	vectors := make([][]float32, len(records))
	for i, r := range records {
		ids[i] = r.ID
		sources[i] = r.Metadata[fieldSourceFile]
		text := r.Metadata[fieldText]
		if len(text) > maxTextLength {
			text = text[:maxTextLength]
		}
		texts[i] = text
		vectors[i] = r.Values
	}

	dim := len(vectors[0])
	_, err = m.client.Upsert(ctx, coll, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldSourceFile, sources),
		entity.NewColumnVarChar(fieldText, texts),
		entity.NewColumnFloatVector(fieldEmbedding, dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", coll, err)
	}
	if err := m.client.Flush(ctx, coll, false); err != nil {
		return fmt.Errorf("flush %s: %w", coll, err)
	}
	return nil
}

// Fetch queries records by primary key, returning vectors and metadata.
func (m *Milvus) Fetch(ctx context.Context, fetchIDs []string) (map[string]Record, error) {
	if len(fetchIDs) == 0 {
		return map[string]Record{}, nil
	}
	coll, err := m.collection()
	if err != nil {
		return nil, err
	}

	quoted := make([]string, len(fetchIDs))
	for i, id := range fetchIDs {
		quoted[i] = `"` + escapeExpr(id) + `"`
	}
	expr := fmt.Sprintf("%s in [%s]", fieldID, strings.Join(quoted, ", "))

	rs, err := m.client.Query(ctx, coll, nil, expr,
		[]string{fieldID, fieldSourceFile, fieldText, fieldEmbedding})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll, err)
	}

	idCol := rs.GetColumn(fieldID)
	sourceCol := rs.GetColumn(fieldSourceFile)
	textCol := rs.GetColumn(fieldText)
	vecCol, _ := rs.GetColumn(fieldEmbedding).(*entity.ColumnFloatVector)
	if idCol == nil {
		return map[string]Record{}, nil
	}

	out := make(map[string]Record, idCol.Len())
	for i := 0; i < idCol.Len(); i++ {
		id, err := idCol.GetAsString(i)
		if err != nil {
			return nil, fmt.Errorf("read id column: %w", err)
		}
		source, _ := sourceCol.GetAsString(i)
		text, _ := textCol.GetAsString(i)
		var vec embeddings.Vector
		if vecCol != nil && i < len(vecCol.Data()) {
			vec = vecCol.Data()[i]
		}
		out[id] = Record{
			ID:     id,
			Values: vec,
			Metadata: map[string]string{
				fieldSourceFile: source,
				fieldText:       text,
			},
		}
	}
	return out, nil
}

// Close releases the Milvus client connection.
func (m *Milvus) Close(context.Context) error {
	return m.client.Close()
}

// collection returns the collection targeted by Upsert/Fetch. EnsureIndex
// records it, so it must run before either.
func (m *Milvus) collection() (string, error) {
	if m.coll == "" {
		return "", ErrIndexNotFound
	}
	return m.coll, nil
}

// escapeExpr escapes double quotes in a string for Milvus filter expressions.
func escapeExpr(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
