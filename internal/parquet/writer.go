package parquet

import (
	"encoding/json"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"
	"github.com/paulmach/osm"
)

// DefaultBatchSize is the number of rows buffered per record batch
const DefaultBatchSize = 10000

// TagsToJSON converts OSM tags to a JSON object string
func TagsToJSON(tags osm.Tags) string {
	if len(tags) == 0 {
		return "{}"
	}
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		m[tag.Key] = tag.Value
	}
	b, _ := json.Marshal(m)
	return string(b)
}

// FeatureSchema is the column layout of an exported feature table
var FeatureSchema = arrow.NewSchema([]arrow.Field{
	{Name: "osm_id", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
	{Name: "osm_type", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "tags", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "geom_wkb", Type: arrow.BinaryTypes.Binary, Nullable: true},
}, nil)

// FeatureWriter writes one row per OSM object with WKB geometry
type FeatureWriter struct {
	writer    *pqarrow.FileWriter
	builder   *array.RecordBuilder
	batchSize int
	count     int
	rows      int64
	closed    bool
}

// NewFeatureWriter creates a feature Parquet writer on w.
// Closing the FeatureWriter finalises the Parquet footer.
func NewFeatureWriter(w io.Writer, batchSize int) (*FeatureWriter, error) {
	return NewFeatureWriterWithAllocator(w, batchSize, memory.DefaultAllocator)
}

// NewFeatureWriterWithAllocator is NewFeatureWriter with the row builder
// allocating from mem.
func NewFeatureWriterWithAllocator(w io.Writer, batchSize int, mem memory.Allocator) (*FeatureWriter, error) {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Zstd),
		parquet.WithDictionaryDefault(false),
	)

	writer, err := pqarrow.NewFileWriter(FeatureSchema, w, writerProps, pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, err
	}

	return &FeatureWriter{
		writer:    writer,
		builder:   array.NewRecordBuilder(mem, FeatureSchema),
		batchSize: batchSize,
	}, nil
}

// Write writes a feature row. A nil geometry is stored as null.
func (w *FeatureWriter) Write(osmID int64, osmType string, tags osm.Tags, geomWKB []byte) error {
	w.builder.Field(0).(*array.Int64Builder).Append(osmID)
	w.builder.Field(1).(*array.StringBuilder).Append(osmType)
	w.builder.Field(2).(*array.StringBuilder).Append(TagsToJSON(tags))
	if geomWKB == nil {
		w.builder.Field(3).(*array.BinaryBuilder).AppendNull()
	} else {
		w.builder.Field(3).(*array.BinaryBuilder).Append(geomWKB)
	}

	w.count++
	w.rows++
	if w.count >= w.batchSize {
		return w.flush()
	}
	return nil
}

// Rows returns the number of rows written so far
func (w *FeatureWriter) Rows() int64 {
	return w.rows
}

func (w *FeatureWriter) flush() error {
	if w.count == 0 {
		return nil
	}
	rec := w.builder.NewRecord()
	defer rec.Release()
	err := w.writer.Write(rec)
	w.count = 0
	return err
}

// Release frees buffered rows of a writer that will not be closed.
// It is a no-op after Close.
func (w *FeatureWriter) Release() {
	if w.closed {
		return
	}
	w.closed = true
	w.builder.Release()
}

// Close flushes pending rows and writes the footer
func (w *FeatureWriter) Close() error {
	defer w.Release()
	if err := w.flush(); err != nil {
		return err
	}
	return w.writer.Close()
}
