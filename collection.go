package kev

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grimmjow8/kev/backend"
	"github.com/grimmjow8/kev/index"
	"github.com/grimmjow8/kev/pkg/logger"
	"github.com/grimmjow8/kev/pkg/metrics"
)

// Collection binds a schema to a backend capability handler. The handler is
// injected at construction; there is no global registry.
type Collection struct {
	schema  *Schema
	handler backend.Handler
	log     *zap.SugaredLogger

	// recheckUniqueness re-reads each unique index entry after the delta is
	// applied. Uniqueness stays advisory under concurrent writers either
	// way; this only narrows the window and surfaces the loser.
	recheckUniqueness bool
}

// Option configures a Collection.
type Option func(*Collection)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Collection) { c.log = l }
}

func WithRecheckUniqueness() Option {
	return func(c *Collection) { c.recheckUniqueness = true }
}

// NewCollection binds schema to handler.
func NewCollection(schema *Schema, h backend.Handler, opts ...Option) *Collection {
	c := &Collection{schema: schema, handler: h, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collection) Schema() *Schema          { return c.schema }
func (c *Collection) Handler() backend.Handler { return c.handler }

// New constructs an in-memory document with defaults and auto-add
// timestamps applied. Nothing is persisted until Save.
func (c *Collection) New(values map[string]any) *Document {
	return newDocument(c.schema, values)
}

// Save validates the document, checks uniqueness, persists it (assigning an
// identity if new) and applies the index delta. The sequence is ordered,
// not atomic: an index failure after a successful primary write surfaces as
// *IndexConsistencyError with no rollback.
func (c *Collection) Save(ctx context.Context, doc *Document) error {
	// populate auto-now timestamps for unset fields, and refresh auto_now
	// fields that hold a real timestamp; an explicit non-time value is left
	// alone so validation can reject it
	now := time.Now().UTC()
	for _, spec := range c.schema.fields {
		if !spec.AutoNow && !spec.AutoNowAdd {
			continue
		}
		v, ok := doc.values[spec.Name]
		if !ok || v == nil {
			doc.values[spec.Name] = spec.DefaultValue(now)
			continue
		}
		if _, isTime := v.(time.Time); isTime && spec.AutoNow {
			doc.values[spec.Name] = spec.DefaultValue(now)
		}
	}

	// fail-fast validation, keeping the normalized values
	for _, spec := range c.schema.fields {
		v, err := spec.Validate(doc.values[spec.Name])
		if err != nil {
			return err
		}
		if v != nil {
			doc.values[spec.Name] = v
		}
	}

	if err := c.checkUnique(ctx, doc); err != nil {
		return err
	}

	isNew := doc.id == ""
	if isNew {
		doc.id = uuid.NewString()
	}
	if err := c.handler.Put(ctx, doc.id, encodeWire(c.schema, doc.values)); err != nil {
		if isNew {
			doc.id = ""
		}
		return fmt.Errorf("save %s: %w", c.schema.name, err)
	}

	changes := index.Diff(c.schema.fields, doc.snapshot, doc.values)
	if err := index.Apply(ctx, c.handler, doc.id, changes); err != nil {
		metrics.IndexWriteFailures.WithLabelValues(c.schema.name).Inc()
		c.log.Errorw("index delta not applied", "schema", c.schema.name, "id", doc.id, "err", err)
		return &IndexConsistencyError{ID: doc.id, Err: err}
	}

	if c.recheckUniqueness {
		if err := c.recheckUnique(ctx, doc); err != nil {
			return err
		}
	}

	doc.snapshot = copyValues(doc.values)
	metrics.DocumentSaves.WithLabelValues(c.schema.name).Inc()
	return nil
}

// Delete removes the raw document, then every index entry it held, using
// the last-persisted values.
func (c *Collection) Delete(ctx context.Context, doc *Document) error {
	if doc.id == "" {
		return fmt.Errorf("delete %s: document was never saved", c.schema.name)
	}
	if err := c.handler.Delete(ctx, doc.id); err != nil {
		return fmt.Errorf("delete %s: %w", c.schema.name, err)
	}
	changes := index.Diff(c.schema.fields, doc.snapshot, nil)
	if err := index.Apply(ctx, c.handler, doc.id, changes); err != nil {
		metrics.IndexWriteFailures.WithLabelValues(c.schema.name).Inc()
		c.log.Errorw("index entries not removed", "schema", c.schema.name, "id", doc.id, "err", err)
		return &IndexConsistencyError{ID: doc.id, Err: err}
	}
	doc.snapshot = nil
	metrics.DocumentDeletes.WithLabelValues(c.schema.name).Inc()
	return nil
}

// Get loads one document by identity. The returned document's snapshot
// equals the loaded values, so it reports no dirty index fields.
func (c *Collection) Get(ctx context.Context, id string) (*Document, error) {
	raw, err := c.handler.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	values := decodeWire(c.schema, raw)
	return &Document{
		schema:   c.schema,
		id:       id,
		values:   values,
		snapshot: copyValues(values),
	}, nil
}

// All returns every document of the schema, bypassing indexes.
func (c *Collection) All(ctx context.Context) ([]*Document, error) {
	ids, err := c.handler.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, 0, len(ids))
	for _, id := range ids {
		doc, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// FlushDB removes every document and index entry of the schema. Intended
// for test isolation, not production use.
func (c *Collection) FlushDB(ctx context.Context) error {
	return c.handler.FlushDB(ctx)
}

func (c *Collection) checkUnique(ctx context.Context, doc *Document) error {
	for _, spec := range c.schema.fields {
		if !spec.Unique {
			continue
		}
		v, ok := doc.values[spec.Name]
		if !ok || v == nil {
			continue
		}
		ids, err := c.handler.IndexLookup(ctx, spec.Name, backend.Normalize(v, spec.Fold()))
		if err != nil {
			return fmt.Errorf("uniqueness check for %s: %w", spec.Name, err)
		}
		for _, id := range ids {
			if id != doc.id {
				return &UniquenessError{Field: spec.Name, Value: v}
			}
		}
	}
	return nil
}

func (c *Collection) recheckUnique(ctx context.Context, doc *Document) error {
	for _, spec := range c.schema.fields {
		if !spec.Unique {
			continue
		}
		v, ok := doc.values[spec.Name]
		if !ok || v == nil {
			continue
		}
		ids, err := c.handler.IndexLookup(ctx, spec.Name, backend.Normalize(v, spec.Fold()))
		if err != nil {
			return fmt.Errorf("uniqueness recheck for %s: %w", spec.Name, err)
		}
		if len(ids) > 1 {
			return &IndexConsistencyError{ID: doc.id,
				Err: &UniquenessError{Field: spec.Name, Value: v}}
		}
	}
	return nil
}
