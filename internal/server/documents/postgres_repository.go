package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifedash/internal/common"
	"github.com/dmitrijs2005/lifedash/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, collection, ownerID string) ([]*Document, error) {
	query :=
		`SELECT id, owner_id, collection, payload, created_at FROM documents
		 WHERE collection = $1 AND owner_id = $2
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, collection, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	docs := make([]*Document, 0)
	for rows.Next() {
		doc := &Document{}
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Collection, &doc.Payload, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %v", err)
	}

	return docs, nil
}

func (r *PostgresRepository) Create(ctx context.Context, doc *Document) (*Document, error) {
	query :=
		`INSERT INTO documents (owner_id, collection, payload)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		doc.OwnerID, doc.Collection, doc.Payload).Scan(&doc.ID, &doc.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return doc, nil
}

func (r *PostgresRepository) Update(ctx context.Context, collection, id, ownerID string, payload json.RawMessage) (*Document, error) {
	query :=
		`UPDATE documents SET payload = $1
		 WHERE collection = $2 AND id = $3 AND owner_id = $4
		 RETURNING id, owner_id, collection, payload, created_at
		 `

	doc := &Document{}
	err := r.db.QueryRowContext(ctx, query, payload, collection, id, ownerID).
		Scan(&doc.ID, &doc.OwnerID, &doc.Collection, &doc.Payload, &doc.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return doc, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, collection, id, ownerID string) error {
	query :=
		`DELETE FROM documents
		 WHERE collection = $1 AND id = $2 AND owner_id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, collection, id, ownerID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows: %v", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
