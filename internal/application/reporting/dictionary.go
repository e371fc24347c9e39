package reporting

import (
	"context"
	"fmt"
	"io"

	"github.com/patrickmn/go-cache"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/infrastructure/jpkxml"
	"github.com/jhoicas/jpk-api/pkg/pl"
)

const (
	dictionaryKey = "dictionaries"
	taxOfficesKey = "tax_offices"
)

// Dictionaries tipos de documento JPK, GTU y oznaczenia de dowodów.
func (uc *JPKUseCase) Dictionaries(ctx context.Context) (*dto.DictionaryResponse, error) {
	if v, ok := uc.dict.Get(dictionaryKey); ok {
		return v.(*dto.DictionaryResponse), nil
	}
	docTypes, err := uc.jpkRepo.ListDocumentTypes(ctx)
	if err != nil {
		return nil, err
	}
	gtu, err := uc.jpkRepo.ListGTU(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.DictionaryResponse{
		DocumentTypes:    make([]dto.DocumentTypeResponse, 0, len(docTypes)),
		GTU:              make([]dto.GTUResponse, 0, len(gtu)),
		SaleDocTypes:     pl.SaleDocTypes,
		PurchaseDocTypes: pl.PurchaseDocTypes,
	}
	for _, dt := range docTypes {
		if !dt.Active {
			continue
		}
		resp.DocumentTypes = append(resp.DocumentTypes, dto.DocumentTypeResponse{
			ID: dt.ID, Name: dt.Name, JPKType: dt.JPKType, SystemCode: dt.SystemCode, SchemaVersion: dt.SchemaVersion,
		})
	}
	for _, g := range gtu {
		resp.GTU = append(resp.GTU, dto.GTUResponse{ID: g.ID, Name: g.Name, Description: g.Description})
	}
	uc.dict.Set(dictionaryKey, resp, cache.DefaultExpiration)
	return resp, nil
}

// TaxOffices diccionario de urzędy skarbowe.
func (uc *JPKUseCase) TaxOffices(ctx context.Context) ([]dto.TaxOfficeResponse, error) {
	if v, ok := uc.dict.Get(taxOfficesKey); ok {
		return v.([]dto.TaxOfficeResponse), nil
	}
	offices, err := uc.jpkRepo.ListTaxOffices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TaxOfficeResponse, 0, len(offices))
	for _, o := range offices {
		out = append(out, dto.TaxOfficeResponse{ID: o.ID, Code: o.Code, Name: o.Name})
	}
	uc.dict.Set(taxOfficesKey, out, cache.DefaultExpiration)
	return out, nil
}

// SeedDictionaries carga los tipos de documento y códigos GTU conocidos.
func (uc *JPKUseCase) SeedDictionaries(ctx context.Context) error {
	for _, dt := range pl.DocumentTypes {
		err := uc.jpkRepo.UpsertDocumentType(ctx, &entity.DocumentType{
			Name:          dt.Name,
			Active:        true,
			JPKType:       entity.JPKTypeCyclic,
			SystemCode:    dt.SystemCode,
			SchemaVersion: dt.SchemaVersion,
			Description:   dt.Description,
		})
		if err != nil {
			return fmt.Errorf("seed tipo de documento %s: %w", dt.Name, err)
		}
	}
	for _, g := range pl.GTUCodes {
		if err := uc.jpkRepo.UpsertGTU(ctx, &entity.GTU{Name: g.Code, Description: g.Description}); err != nil {
			return fmt.Errorf("seed %s: %w", g.Code, err)
		}
	}
	uc.dict.Delete(dictionaryKey)
	uc.log.Info().Int("document_types", len(pl.DocumentTypes)).Int("gtu", len(pl.GTUCodes)).Msg("diccionarios JPK cargados")
	return nil
}

// ImportTaxOffices lee el XSD KodyUrzedowSkarbowych y actualiza el diccionario por código.
func (uc *JPKUseCase) ImportTaxOffices(ctx context.Context, r io.Reader) (int, error) {
	offices, err := jpkxml.ParseTaxOffices(r)
	if err != nil {
		return 0, err
	}
	n, err := uc.jpkRepo.UpsertTaxOffices(ctx, offices)
	if err != nil {
		return 0, err
	}
	uc.dict.Delete(taxOfficesKey)
	uc.log.Info().Int("tax_offices", n).Msg("urzędy skarbowe importados")
	return n, nil
}
