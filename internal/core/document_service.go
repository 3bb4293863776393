package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentTypePO is the sequence type code used for purchase order numbers.
const DocumentTypePO = "PO"

type DocumentService interface {
	// NextNumberTx reserves the next gapless number for typeCode and year using the
	// caller's transaction. The number is only consumed if the transaction commits.
	NextNumberTx(ctx context.Context, tx pgx.Tx, typeCode string, year int) (string, error)
	// PeekNumber returns the number NextNumberTx would assign now, without reserving it.
	PeekNumber(ctx context.Context, typeCode string, year int) (string, error)
}

type documentService struct {
	pool *pgxpool.Pool
}

func NewDocumentService(pool *pgxpool.Pool) DocumentService {
	return &documentService{pool: pool}
}

// FormatDocumentNumber renders e.g. PO-2026-00042.
func FormatDocumentNumber(typeCode string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%05d", typeCode, year, n)
}

func (s *documentService) NextNumberTx(ctx context.Context, tx pgx.Tx, typeCode string, year int) (string, error) {
	// Concurrency-safe gapless sequence: the upsert row lock serializes writers
	// until the surrounding transaction ends.
	var last int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (type_code, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (type_code, year)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number`,
		typeCode, year,
	).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to generate gapless sequence number: %w", err)
	}
	return FormatDocumentNumber(typeCode, year, last), nil
}

func (s *documentService) PeekNumber(ctx context.Context, typeCode string, year int) (string, error) {
	var last int64
	err := s.pool.QueryRow(ctx,
		"SELECT last_number FROM document_sequences WHERE type_code = $1 AND year = $2",
		typeCode, year,
	).Scan(&last)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("read document sequence: %w", err)
	}
	return FormatDocumentNumber(typeCode, year, last+1), nil
}
