package reporting

import (
	"context"
	"fmt"
	"slices"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
	"github.com/jhoicas/jpk-api/internal/infrastructure/jpkxml"
)

// GetDeclaration devuelve la declaración de la empresa.
func (uc *JPKUseCase) GetDeclaration(ctx context.Context, companyID, id string) (*dto.DeclarationResponse, error) {
	d, err := uc.loadDeclaration(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toDeclarationResponse(d), nil
}

// ListDeclarations devuelve las declaraciones de la empresa, las más recientes primero.
func (uc *JPKUseCase) ListDeclarations(ctx context.Context, companyID string, page dto.PageRequest) (*dto.DeclarationListResponse, error) {
	page.DefaultPage()
	list, err := uc.declRepo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DeclarationResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDeclarationResponse(d))
	}
	return &dto.DeclarationListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// UpdateDeclaration aplica los cambios manuales y recalcula las posiciones derivadas.
// Las posiciones calculadas o desconocidas se rechazan.
func (uc *JPKUseCase) UpdateDeclaration(ctx context.Context, companyID, id string, in dto.UpdateDeclarationRequest) (*dto.DeclarationResponse, error) {
	d, err := uc.loadDeclaration(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyDeclarationChanges(d, in); err != nil {
		return nil, err
	}
	jpk.Compute(d)
	if err := jpk.Validate(d); err != nil {
		return nil, err
	}
	if err := uc.declRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", companyID).Str("declaration_id", d.ID).Msg("declaración VAT-7 actualizada")
	return toDeclarationResponse(d), nil
}

func applyDeclarationChanges(d *entity.Declaration, in dto.UpdateDeclarationRequest) error {
	if d.Ints == nil {
		d.Ints = map[string]int64{}
	}
	if d.Bools == nil {
		d.Bools = map[string]bool{}
	}
	for name, v := range in.Ints {
		if !jpk.IsInputField(name) {
			return fmt.Errorf("%w: la posición %s no se puede editar", domain.ErrInvalidInput, name)
		}
		d.Ints[name] = v
	}
	for name, v := range in.Bools {
		if !slices.Contains(jpk.BoolFields, name) {
			return fmt.Errorf("%w: la posición %s no es lógica", domain.ErrInvalidInput, name)
		}
		d.Bools[name] = v
	}
	if in.P5558 != nil {
		if !jpk.ValidRefundOption(*in.P5558) {
			return fmt.Errorf("%w: p_55_58", domain.ErrInvalidInput)
		}
		d.P5558 = *in.P5558
	}
	if in.P61 != nil {
		d.P61 = *in.P61
	}
	if in.POrdzu != nil {
		d.POrdzu = *in.POrdzu
	}
	if in.CzescDeklaracyjna != nil {
		d.CzescDeklaracyjna = *in.CzescDeklaracyjna
	}
	if in.CzescEwidencyjna != nil {
		d.CzescEwidencyjna = *in.CzescEwidencyjna
	}
	return nil
}

// DeclarationXML reconstruye el JPK_V7M exportado con las posiciones actuales.
// Devuelve el nombre del archivo y el contenido.
func (uc *JPKUseCase) DeclarationXML(ctx context.Context, companyID, id string) (string, []byte, error) {
	d, err := uc.loadDeclaration(ctx, companyID, id)
	if err != nil {
		return "", nil, err
	}
	if err := jpk.Validate(d); err != nil {
		return "", nil, err
	}
	if len(d.SourceXML) == 0 {
		return "", nil, fmt.Errorf("%w: la declaración no tiene XML de origen", domain.ErrConflict)
	}
	out, err := jpkxml.RenderDeclaration(d.SourceXML, d)
	if err != nil {
		return "", nil, err
	}
	uc.log.Info().Str("company_id", companyID).Str("declaration_id", d.ID).Msg("declaración VAT-7 exportada")
	return jpk.Filename(d) + ".xml", out, nil
}

func (uc *JPKUseCase) loadDeclaration(ctx context.Context, companyID, id string) (*entity.Declaration, error) {
	d, err := uc.declRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	if d.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return d, nil
}

func toDeclarationResponse(d *entity.Declaration) *dto.DeclarationResponse {
	return &dto.DeclarationResponse{
		ID:                d.ID,
		CompanyID:         d.CompanyID,
		Version:           d.Version,
		Year:              d.Year,
		Month:             d.Month,
		CelZlozenia:       d.CelZlozenia,
		CzescDeklaracyjna: d.CzescDeklaracyjna,
		CzescEwidencyjna:  d.CzescEwidencyjna,
		Ints:              d.Ints,
		Bools:             d.Bools,
		P5558:             d.P5558,
		P61:               d.P61,
		POrdzu:            d.POrdzu,
		Filename:          jpk.Filename(d) + ".xml",
		ArchiveKey:        d.ArchiveKey,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
