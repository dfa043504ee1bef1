package resource

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// FirestoreClient implements Client on top of Firestore. Each resource maps
// to a top-level collection; document ids carry the row id.
type FirestoreClient struct {
	fs     *firestore.Client
	logger *zap.Logger
}

func NewFirestoreClient(fs *firestore.Client, logger *zap.Logger) *FirestoreClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirestoreClient{fs: fs, logger: logger}
}

func (c *FirestoreClient) col(resource string) *firestore.CollectionRef {
	return c.fs.Collection(resource)
}

func rowFromDoc(doc *firestore.DocumentSnapshot) Row {
	row := Row(doc.Data())
	if row == nil {
		row = Row{}
	}
	row["id"] = doc.Ref.ID
	return row
}

func (c *FirestoreClient) query(resource string, filters []Filter, orders []Order) firestore.Query {
	q := c.col(resource).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}
	for _, o := range orders {
		dir := firestore.Asc
		if o.Desc {
			dir = firestore.Desc
		}
		q = q.OrderBy(o.Field, dir)
	}
	return q
}

func (c *FirestoreClient) Select(ctx context.Context, resource string, filters []Filter, orders ...Order) ([]Row, error) {
	iter := c.query(resource, filters, orders).Documents(ctx)
	defer iter.Stop()

	var rows []Row
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("select %s: %w", resource, err)
		}
		rows = append(rows, rowFromDoc(doc))
	}
	return rows, nil
}

func (c *FirestoreClient) Insert(ctx context.Context, resource string, row Row) (Row, error) {
	data := make(map[string]any, len(row))
	for k, v := range row {
		if k == "id" {
			continue
		}
		data[k] = v
	}

	ref, _, err := c.col(resource).Add(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", resource, err)
	}

	out := Row(data)
	out["id"] = ref.ID
	return out, nil
}

func (c *FirestoreClient) Update(ctx context.Context, resource string, id string, patch Row) (Row, error) {
	ref := c.col(resource).Doc(id)

	data := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == "id" {
			continue
		}
		data[k] = v
	}

	if _, err := ref.Set(ctx, data, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", resource, id, err)
	}

	doc, err := ref.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: readback: %w", resource, id, err)
	}
	return rowFromDoc(doc), nil
}

func (c *FirestoreClient) Delete(ctx context.Context, resource string, id string) error {
	if _, err := c.col(resource).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", resource, id, err)
	}
	return nil
}

func (c *FirestoreClient) DeleteWhere(ctx context.Context, resource string, filters ...Filter) error {
	iter := c.query(resource, filters, nil).Documents(ctx)
	defer iter.Stop()

	batch := c.fs.Batch()
	n := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("delete where %s: %w", resource, err)
		}
		batch.Delete(doc.Ref)
		n++
	}
	if n == 0 {
		return nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("delete where %s: commit: %w", resource, err)
	}
	return nil
}

func (c *FirestoreClient) Upsert(ctx context.Context, resource string, row Row, conflictKeys ...string) (Row, error) {
	if len(conflictKeys) == 0 {
		return c.Insert(ctx, resource, row)
	}

	filters := make([]Filter, 0, len(conflictKeys))
	for _, k := range conflictKeys {
		filters = append(filters, Eq(k, row[k]))
	}

	iter := c.query(resource, filters, nil).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	iter.Stop()

	if err != nil && err != iterator.Done {
		return nil, fmt.Errorf("upsert %s: lookup: %w", resource, err)
	}
	if err == iterator.Done {
		return c.Insert(ctx, resource, row)
	}
	return c.Update(ctx, resource, doc.Ref.ID, row)
}

func (c *FirestoreClient) Subscribe(ctx context.Context, resource string, filters []Filter, onInsert func(Row)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	snaps := c.query(resource, filters, nil).Snapshots(subCtx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if subCtx.Err() == nil {
					c.logger.Warn("subscription stopped",
						zap.String("resource", resource),
						zap.Error(err))
				}
				return
			}
			for _, change := range snap.Changes {
				if change.Kind != firestore.DocumentAdded {
					continue
				}
				onInsert(rowFromDoc(change.Doc))
			}
		}
	}()

	return cancel, nil
}
