package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

var _ repository.JPKRepository = (*JPKRepo)(nil)

// JPKRepo diccionarios JPK (tipos de documento, GTU, urzędy skarbowe, etiquetas) y consulta de ewidencja.
type JPKRepo struct {
	q Querier
}

// NewJPKRepository construye el repositorio.
func NewJPKRepository(q Querier) *JPKRepo {
	return &JPKRepo{q: q}
}

func (r *JPKRepo) ListDocumentTypes(ctx context.Context) ([]*entity.DocumentType, error) {
	const q = `
		SELECT id, name, active, jpk_type, system_code, schema_version, description, created_at
		FROM jpk_document_types ORDER BY name`
	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list jpk_document_types: %w", err)
	}
	defer rows.Close()
	var list []*entity.DocumentType
	for rows.Next() {
		var dt entity.DocumentType
		if err := rows.Scan(&dt.ID, &dt.Name, &dt.Active, &dt.JPKType, &dt.SystemCode, &dt.SchemaVersion,
			&dt.Description, &dt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan jpk_document_type: %w", err)
		}
		list = append(list, &dt)
	}
	return list, rows.Err()
}

// UpsertDocumentType inserta o actualiza por nombre; el par código + versión es único.
func (r *JPKRepo) UpsertDocumentType(ctx context.Context, dt *entity.DocumentType) error {
	if dt.ID == "" {
		dt.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO jpk_document_types (id, name, active, jpk_type, system_code, schema_version, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE
		SET active = EXCLUDED.active, jpk_type = EXCLUDED.jpk_type, system_code = EXCLUDED.system_code,
		    schema_version = EXCLUDED.schema_version, description = EXCLUDED.description
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, q, dt.ID, dt.Name, dt.Active, dt.JPKType, dt.SystemCode, dt.SchemaVersion,
		dt.Description).Scan(&dt.ID, &dt.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("upsert jpk_document_type: %w", err)
	}
	return nil
}

func (r *JPKRepo) ListGTU(ctx context.Context) ([]*entity.GTU, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, description FROM jpk_gtu ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list jpk_gtu: %w", err)
	}
	defer rows.Close()
	var list []*entity.GTU
	for rows.Next() {
		var g entity.GTU
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, fmt.Errorf("scan jpk_gtu: %w", err)
		}
		list = append(list, &g)
	}
	return list, rows.Err()
}

func (r *JPKRepo) UpsertGTU(ctx context.Context, g *entity.GTU) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO jpk_gtu (id, name, description) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id`
	if err := r.q.QueryRow(ctx, q, g.ID, g.Name, g.Description).Scan(&g.ID); err != nil {
		return fmt.Errorf("upsert jpk_gtu: %w", err)
	}
	return nil
}

func (r *JPKRepo) ListTaxOffices(ctx context.Context) ([]*entity.TaxOffice, error) {
	rows, err := r.q.Query(ctx, `SELECT id, code, name FROM tax_offices ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list tax_offices: %w", err)
	}
	defer rows.Close()
	var list []*entity.TaxOffice
	for rows.Next() {
		var o entity.TaxOffice
		if err := rows.Scan(&o.ID, &o.Code, &o.Name); err != nil {
			return nil, fmt.Errorf("scan tax_office: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

func (r *JPKRepo) GetTaxOffice(ctx context.Context, id string) (*entity.TaxOffice, error) {
	var o entity.TaxOffice
	err := r.q.QueryRow(ctx, `SELECT id, code, name FROM tax_offices WHERE id = $1`, id).Scan(&o.ID, &o.Code, &o.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tax_office: %w", err)
	}
	return &o, nil
}

// UpsertTaxOffices inserta o renombra por código.
func (r *JPKRepo) UpsertTaxOffices(ctx context.Context, offices []entity.TaxOffice) (int, error) {
	const q = `
		INSERT INTO tax_offices (id, code, name) VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`
	n := 0
	for _, o := range offices {
		id := o.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := r.q.Exec(ctx, q, id, o.Code, o.Name); err != nil {
			return n, fmt.Errorf("upsert tax_office %s: %w", o.Code, err)
		}
		n++
	}
	return n, nil
}

func (r *JPKRepo) CreateAccountTag(ctx context.Context, t *entity.AccountTag) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	const q = `INSERT INTO account_tags (id, company_id, name, created_at) VALUES ($1, $2, $3, now()) RETURNING created_at`
	if err := r.q.QueryRow(ctx, q, t.ID, nullIfEmpty(t.CompanyID), t.Name).Scan(&t.CreatedAt); err != nil {
		return fmt.Errorf("insert account_tag: %w", err)
	}
	return nil
}

func (r *JPKRepo) CreateJPKAccountTag(ctx context.Context, m *entity.JPKAccountTag) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO jpk_account_tags (id, account_tag_id, document_type_id, markup, section, v7_group)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, q, m.ID, m.AccountTagID, m.DocumentTypeID, m.Markup, m.Section, m.V7Group)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert jpk_account_tag: %w", err)
	}
	return nil
}

func (r *JPKRepo) ListJPKAccountTags(ctx context.Context, docTypeID string) ([]*entity.JPKAccountTag, error) {
	const q = `
		SELECT id, account_tag_id, document_type_id, markup, section, v7_group
		FROM jpk_account_tags WHERE document_type_id = $1 ORDER BY section, markup`
	rows, err := r.q.Query(ctx, q, docTypeID)
	if err != nil {
		return nil, fmt.Errorf("list jpk_account_tags: %w", err)
	}
	defer rows.Close()
	var list []*entity.JPKAccountTag
	for rows.Next() {
		var m entity.JPKAccountTag
		if err := rows.Scan(&m.ID, &m.AccountTagID, &m.DocumentTypeID, &m.Markup, &m.Section, &m.V7Group); err != nil {
			return nil, fmt.Errorf("scan jpk_account_tag: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Entries devuelve una fila por línea contable y etiqueta JPK del tipo de documento. Solo diarios
// de ventas y compras, por fecha VAT dentro del periodo.
func (r *JPKRepo) Entries(ctx context.Context, eq repository.EntryQuery) ([]jpk.Entry, error) {
	const q = `
		SELECT inv.id, inv.move_type, inv.name, inv.ref, inv.change_jpk_proof, j.type,
		       jt.section, jt.markup, jt.v7_group,
		       COALESCE(p.id::text, ''), COALESCE(p.vat, ''), COALESCE(p.name, ''),
		       COALESCE(p.street, ''), COALESCE(p.zip, ''), COALESCE(p.city, ''),
		       inv.invoice_date, inv.vat_date, inv.date_due,
		       inv.sale_doc_type, inv.purchase_doc_type, inv.jpk_flags, l.gtu,
		       l.tax_line_id IS NOT NULL, l.balance
		FROM invoice_lines l
		JOIN invoices inv           ON inv.id = l.invoice_id
		JOIN journals j             ON j.id = inv.journal_id
		CROSS JOIN LATERAL unnest(l.tag_ids) AS tag(id)
		JOIN jpk_account_tags jt    ON jt.account_tag_id::text = tag.id
		JOIN jpk_document_types dt  ON dt.id = jt.document_type_id
		LEFT JOIN partners p        ON p.id = inv.partner_id
		LEFT JOIN taxes tx          ON tx.id = l.tax_line_id
		WHERE inv.company_id = $1
		  AND dt.name = $2
		  AND j.type IN ('sale', 'purchase')
		  AND inv.vat_date BETWEEN $3 AND $4
		  AND inv.state = ANY($5)
		  AND (NOT $6 OR tx.exigibility IS DISTINCT FROM 'on_payment')
		ORDER BY inv.id, l.sequence`
	states := []string{entity.InvoiceStatePosted}
	if eq.IncludeDrafts {
		states = append(states, entity.InvoiceStateDraft)
	}
	rows, err := r.q.Query(ctx, q, eq.CompanyID, eq.DocTypeName, eq.DateFrom, eq.DateTo, states, eq.ExcludeOnPayment)
	if err != nil {
		return nil, fmt.Errorf("query jpk entries: %w", err)
	}
	defer rows.Close()

	var out []jpk.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan jpk entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(rows pgx.Rows) (jpk.Entry, error) {
	var (
		e                 jpk.Entry
		moveType          string
		street, zip, city string
		invDate, vat, due *time.Time
	)
	err := rows.Scan(&e.MoveID, &moveType, &e.MoveName, &e.Ref, &e.ChangeJPKProof, &e.JournalType,
		&e.Section, &e.Markup, &e.V7Group,
		&e.PartnerID, &e.PartnerVAT, &e.PartnerName, &street, &zip, &city,
		&invDate, &vat, &due,
		&e.SaleDocType, &e.PurchaseDocType, &e.Flags, &e.GTU, &e.IsTax, &e.Balance)
	if err != nil {
		return e, err
	}
	e.MoveType = entity.MoveType(moveType)
	if e.PartnerID != "" {
		e.PartnerAddress = (&entity.Partner{Street: street, Zip: zip, City: city}).Address()
	}
	e.InvoiceDate, e.VATDate, e.DateDue = timeOrZero(invDate), timeOrZero(vat), timeOrZero(due)
	return e, nil
}

// ── declaraciones ─────────────────────────────────────────────────────────────

var _ repository.DeclarationRepository = (*DeclarationRepo)(nil)

// DeclarationRepo declaraciones VAT-7 exportadas con el XML de origen.
type DeclarationRepo struct {
	q Querier
}

// NewDeclarationRepository construye el repositorio.
func NewDeclarationRepository(q Querier) *DeclarationRepo {
	return &DeclarationRepo{q: q}
}

const declarationColumns = `
	id, company_id, version, year, month, cel_zlozenia, czesc_deklaracyjna, czesc_ewidencyjna,
	ints, bools, p_55_58, p_61, p_ordzu, source_xml, archive_key, created_at, updated_at`

func (r *DeclarationRepo) Create(ctx context.Context, d *entity.Declaration) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO declarations (id, company_id, version, year, month, cel_zlozenia, czesc_deklaracyjna,
			czesc_ewidencyjna, ints, bools, p_55_58, p_61, p_ordzu, source_xml, archive_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q, d.ID, d.CompanyID, d.Version, d.Year, d.Month, d.CelZlozenia,
		d.CzescDeklaracyjna, d.CzescEwidencyjna, intsOrEmpty(d.Ints), boolsOrEmpty(d.Bools), d.P5558, d.P61,
		d.POrdzu, d.SourceXML, d.ArchiveKey).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert declaration: %w", err)
	}
	return nil
}

func (r *DeclarationRepo) GetByID(ctx context.Context, id string) (*entity.Declaration, error) {
	d, err := scanDeclaration(r.q.QueryRow(ctx, `SELECT `+declarationColumns+` FROM declarations WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get declaration: %w", err)
	}
	return d, nil
}

// Update guarda las posiciones editadas; el XML de origen no cambia salvo la clave de archivo.
func (r *DeclarationRepo) Update(ctx context.Context, d *entity.Declaration) error {
	const q = `
		UPDATE declarations
		SET cel_zlozenia = $2, czesc_deklaracyjna = $3, czesc_ewidencyjna = $4, ints = $5, bools = $6,
		    p_55_58 = $7, p_61 = $8, p_ordzu = $9, archive_key = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, q, d.ID, d.CelZlozenia, d.CzescDeklaracyjna, d.CzescEwidencyjna,
		intsOrEmpty(d.Ints), boolsOrEmpty(d.Bools), d.P5558, d.P61, d.POrdzu, d.ArchiveKey).Scan(&d.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update declaration: %w", err)
	}
	return nil
}

// ListByCompany sin el XML de origen, del periodo más reciente al más antiguo.
func (r *DeclarationRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Declaration, error) {
	const q = `
		SELECT id, company_id, version, year, month, cel_zlozenia, czesc_deklaracyjna, czesc_ewidencyjna,
		       ints, bools, p_55_58, p_61, p_ordzu, ''::bytea, archive_key, created_at, updated_at
		FROM declarations WHERE company_id = $1
		ORDER BY year DESC, month DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, q, companyID, defaultLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list declarations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Declaration
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func scanDeclaration(row pgxScanner) (*entity.Declaration, error) {
	var d entity.Declaration
	err := row.Scan(&d.ID, &d.CompanyID, &d.Version, &d.Year, &d.Month, &d.CelZlozenia, &d.CzescDeklaracyjna,
		&d.CzescEwidencyjna, &d.Ints, &d.Bools, &d.P5558, &d.P61, &d.POrdzu, &d.SourceXML, &d.ArchiveKey,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func intsOrEmpty(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}

func boolsOrEmpty(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}
