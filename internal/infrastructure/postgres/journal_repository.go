package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

var _ repository.JournalRepository = (*JournalRepo)(nil)

// JournalRepo diarios contables y su numeración.
type JournalRepo struct {
	q Querier
}

// NewJournalRepository construye el repositorio.
func NewJournalRepository(q Querier) *JournalRepo {
	return &JournalRepo{q: q}
}

const journalColumns = `
	id, company_id, code, name, type, prefix, next_number, sale_doc_type, purchase_doc_type, is_default,
	created_at, updated_at`

func (r *JournalRepo) Create(ctx context.Context, j *entity.Journal) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.NextNumber <= 0 {
		j.NextNumber = 1
	}
	const q = `
		INSERT INTO journals (id, company_id, code, name, type, prefix, next_number, sale_doc_type,
			purchase_doc_type, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q, j.ID, j.CompanyID, j.Code, j.Name, j.Type, j.Prefix, j.NextNumber,
		j.SaleDocType, j.PurchaseDocType, j.IsDefault).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert journal: %w", err)
	}
	return nil
}

func (r *JournalRepo) GetByID(ctx context.Context, id string) (*entity.Journal, error) {
	j, err := scanJournal(r.q.QueryRow(ctx, `SELECT `+journalColumns+` FROM journals WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get journal by id: %w", err)
	}
	return j, nil
}

// GetDefault devuelve nil, nil si la empresa no tiene diario por defecto para el tipo.
func (r *JournalRepo) GetDefault(ctx context.Context, companyID, journalType string) (*entity.Journal, error) {
	const q = `SELECT ` + journalColumns + `
		FROM journals
		WHERE company_id = $1 AND type = $2
		ORDER BY is_default DESC, created_at
		LIMIT 1`
	j, err := scanJournal(r.q.QueryRow(ctx, q, companyID, journalType))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get default journal: %w", err)
	}
	return j, nil
}

// NextNumber reserva el número actual e incrementa la secuencia. Dentro de una tx la fila queda
// bloqueada hasta el commit.
func (r *JournalRepo) NextNumber(ctx context.Context, journalID string) (int64, error) {
	const q = `
		UPDATE journals SET next_number = next_number + 1, updated_at = now()
		WHERE id = $1
		RETURNING next_number - 1`
	var n int64
	if err := r.q.QueryRow(ctx, q, journalID).Scan(&n); err != nil {
		if isNoRows(err) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("next journal number: %w", err)
	}
	return n, nil
}

func (r *JournalRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Journal, error) {
	rows, err := r.q.Query(ctx, `SELECT `+journalColumns+` FROM journals WHERE company_id = $1 ORDER BY type, code`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	defer rows.Close()
	var list []*entity.Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		list = append(list, j)
	}
	return list, rows.Err()
}

func scanJournal(row pgxScanner) (*entity.Journal, error) {
	var j entity.Journal
	err := row.Scan(&j.ID, &j.CompanyID, &j.Code, &j.Name, &j.Type, &j.Prefix, &j.NextNumber,
		&j.SaleDocType, &j.PurchaseDocType, &j.IsDefault, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
