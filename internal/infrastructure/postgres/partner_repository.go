package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

var _ repository.PartnerRepository = (*PartnerRepo)(nil)

// PartnerRepo implementación de PartnerRepository (usable con pool o tx).
type PartnerRepo struct {
	q Querier
}

// NewPartnerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartnerRepository(q Querier) *PartnerRepo {
	return &PartnerRepo{q: q}
}

const partnerColumns = `
	id, company_id, name, vat, street, street2, city, zip, country_code, email, lang, tp, created_at, updated_at`

// Create persiste un nuevo contratista.
func (r *PartnerRepo) Create(ctx context.Context, p *entity.Partner) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO partners (id, company_id, name, vat, street, street2, city, zip, country_code, email, lang, tp,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q, p.ID, p.CompanyID, p.Name, p.VAT, p.Street, p.Street2, p.City, p.Zip,
		p.CountryCode, p.Email, p.Lang, p.TP).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

// GetByID obtiene un contratista por ID.
func (r *PartnerRepo) GetByID(ctx context.Context, id string) (*entity.Partner, error) {
	p, err := scanPartner(r.q.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return p, nil
}

// GetByIDs carga en una sola consulta los contratistas indicados.
func (r *PartnerRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Partner, error) {
	out := make(map[string]*entity.Partner, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id::text = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get partners: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// ListByCompany lista contratistas por nombre.
func (r *PartnerRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Partner, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		companyID, defaultLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()
	var list []*entity.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update actualiza los datos del contratista.
func (r *PartnerRepo) Update(ctx context.Context, p *entity.Partner) error {
	const q = `
		UPDATE partners
		SET name = $2, vat = $3, street = $4, street2 = $5, city = $6, zip = $7, country_code = $8,
		    email = $9, lang = $10, tp = $11, updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, q, p.ID, p.Name, p.VAT, p.Street, p.Street2, p.City, p.Zip, p.CountryCode,
		p.Email, p.Lang, p.TP)
	if err != nil {
		return fmt.Errorf("update partner: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPartner(row pgxScanner) (*entity.Partner, error) {
	var p entity.Partner
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.VAT, &p.Street, &p.Street2, &p.City, &p.Zip,
		&p.CountryCode, &p.Email, &p.Lang, &p.TP, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
