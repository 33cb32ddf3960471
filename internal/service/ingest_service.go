package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	infralogger "github.com/jonesrussell/north-cloud/films/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/films/internal/domain"
	"github.com/jonesrussell/north-cloud/films/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/films/internal/metrics"
)

const (
	// maxLineSize bounds one NDJSON record.
	maxLineSize = 1 << 20

	defaultBatchSize = 500
	maxLoggedFailures = 10
)

var errEmptySource = errors.New("record has no document")

// IngestSummary counts what a population run did with each line.
type IngestSummary struct {
	Read      int `json:"read"`
	Indexed   int `json:"indexed"`
	Malformed int `json:"malformed"`
	Failed    int `json:"failed"`
}

// IngestService bulk-loads NDJSON film records into the films index.
type IngestService struct {
	indexer   BulkIndexer
	index     string
	batchSize int
	metrics   *metrics.Provider
	logger    infralogger.Logger
}

// NewIngestService creates an IngestService. batchSize <= 0 uses 500.
func NewIngestService(
	indexer BulkIndexer,
	index string,
	batchSize int,
	provider *metrics.Provider,
	log infralogger.Logger,
) *IngestService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if log == nil {
		log = infralogger.NewNop()
	}
	return &IngestService{
		indexer:   indexer,
		index:     index,
		batchSize: batchSize,
		metrics:   provider,
		logger:    log,
	}
}

// ingestRecord is one parsed line ready for the bulk body.
type ingestRecord struct {
	id     string
	source json.RawMessage
}

// Populate ensures the index exists, then reads r line by line and indexes
// the records in batches. Malformed lines are logged and skipped. Per-item
// bulk rejections are counted as Failed. Transport errors abort the run.
func (s *IngestService) Populate(ctx context.Context, r io.Reader) (IngestSummary, error) {
	var summary IngestSummary

	created, err := s.indexer.EnsureIndex(ctx, s.index, elasticsearch.FilmsMapping())
	if err != nil {
		return summary, fmt.Errorf("ensure index %s: %w", s.index, err)
	}
	if created {
		s.logger.Info("Created films index", infralogger.String("index", s.index))
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	batch := make([]ingestRecord, 0, s.batchSize)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		summary.Read++

		record, parseErr := parseIngestLine(line)
		if parseErr != nil {
			summary.Malformed++
			s.metrics.RecordIngest(metrics.IngestMalformed, 1)
			s.logger.Warn("Skipping malformed record",
				infralogger.Int("line", lineNo),
				infralogger.Error(parseErr),
			)
			continue
		}

		batch = append(batch, record)
		if len(batch) >= s.batchSize {
			if err = s.flush(ctx, batch, &summary); err != nil {
				return summary, err
			}
			batch = batch[:0]
		}
	}
	if err = scanner.Err(); err != nil {
		return summary, fmt.Errorf("read input at line %d: %w", lineNo+1, err)
	}

	if err = s.flush(ctx, batch, &summary); err != nil {
		return summary, err
	}

	if err = s.indexer.Refresh(ctx, s.index); err != nil {
		return summary, fmt.Errorf("refresh index %s: %w", s.index, err)
	}

	s.logger.Info("Population complete",
		infralogger.String("index", s.index),
		infralogger.Int("read", summary.Read),
		infralogger.Int("indexed", summary.Indexed),
		infralogger.Int("malformed", summary.Malformed),
		infralogger.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *IngestService) flush(ctx context.Context, batch []ingestRecord, summary *IngestSummary) error {
	if len(batch) == 0 {
		return nil
	}

	body, err := s.bulkBody(batch)
	if err != nil {
		return err
	}

	s.metrics.RecordBulkBatch(len(batch))
	result, err := s.indexer.Bulk(ctx, body)
	if err != nil {
		return fmt.Errorf("bulk index %d records: %w", len(batch), err)
	}

	summary.Indexed += result.Indexed
	summary.Failed += len(result.Failures)
	s.metrics.RecordIngest(metrics.IngestIndexed, result.Indexed)
	s.metrics.RecordIngest(metrics.IngestFailed, len(result.Failures))

	for i, f := range result.Failures {
		if i == maxLoggedFailures {
			s.logger.Warn("Further bulk failures omitted",
				infralogger.Int("omitted", len(result.Failures)-maxLoggedFailures))
			break
		}
		s.logger.Warn("Bulk item rejected",
			infralogger.String("id", f.ID),
			infralogger.Int("status", f.Status),
			infralogger.String("reason", f.Reason),
		)
	}
	return nil
}

// bulkBody renders the batch as NDJSON index actions.
func (s *IngestService) bulkBody(batch []ingestRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for _, rec := range batch {
		action := map[string]any{"_index": s.index}
		if rec.id != "" {
			action["_id"] = rec.id
		}
		if err := enc.Encode(map[string]any{"index": action}); err != nil {
			return nil, fmt.Errorf("failed to encode bulk action: %w", err)
		}
		buf.Write(rec.source)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// parseIngestLine accepts either a bulk-helper envelope {"_index","_id","_source"}
// or a bare film document whose id, if any, is in "id". The envelope's _index
// is ignored; records always go to the configured index.
func parseIngestLine(line []byte) (ingestRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return ingestRecord{}, fmt.Errorf("invalid JSON object: %w", err)
	}

	source := json.RawMessage(line)
	idField := "id"
	if raw, ok := fields["_source"]; ok {
		source = raw
		idField = "_id"
	}
	if len(bytes.TrimSpace(source)) == 0 || bytes.Equal(bytes.TrimSpace(source), []byte("null")) {
		return ingestRecord{}, errEmptySource
	}

	var doc domain.FilmDocument
	if err := json.Unmarshal(source, &doc); err != nil {
		return ingestRecord{}, fmt.Errorf("invalid film document: %w", err)
	}

	id, err := rawID(fields[idField])
	if err != nil {
		return ingestRecord{}, err
	}

	compacted := bytes.Buffer{}
	if err = json.Compact(&compacted, source); err != nil {
		return ingestRecord{}, fmt.Errorf("compact document: %w", err)
	}

	return ingestRecord{id: id, source: compacted.Bytes()}, nil
}

// rawID accepts a string or integer id; absent means let the backend assign one.
func rawID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", fmt.Errorf("invalid id %s", string(raw))
	}
	if _, err := n.Int64(); err != nil {
		return "", fmt.Errorf("invalid id %s: not an integer", string(raw))
	}
	return n.String(), nil
}
