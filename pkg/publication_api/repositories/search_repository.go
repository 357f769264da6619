package repositories

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"gorm.io/gorm"
)

// SearchRepository stores the derived case index. ReplaceForArtefact is
// delete-then-insert so re-extraction is idempotent.
type SearchRepository interface {
	ReplaceForArtefact(ctx context.Context, artefactID string, rows []models.ArtefactSearch) error
	FindByArtefact(ctx context.Context, artefactID string) ([]models.ArtefactSearch, error)
	Search(ctx context.Context, params models.CaseSearchParams) ([]models.ArtefactSearch, error)
	DeleteForArtefacts(ctx context.Context, artefactIDs []string) error
}

type searchRepository struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) ReplaceForArtefact(ctx context.Context, artefactID string, rows []models.ArtefactSearch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ArtefactSearch{}, "artefact_id = ?", artefactID).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *searchRepository) FindByArtefact(ctx context.Context, artefactID string) ([]models.ArtefactSearch, error) {
	var rows []models.ArtefactSearch
	err := r.db.WithContext(ctx).Where("artefact_id = ?", artefactID).Find(&rows).Error
	return rows, err
}

// Search matches case rows on exact case number and/or case-name substring.
func (r *searchRepository) Search(ctx context.Context, params models.CaseSearchParams) ([]models.ArtefactSearch, error) {
	limit := params.Limit
	if limit < 1 || limit > 100 {
		limit = models.DefaultSearchLimit
	}

	builder := sq.Select("id", "artefact_id", "case_number", "case_name").
		From("v1_artefact_searches").
		OrderBy("case_number").
		Limit(uint64(limit))

	if number := strings.TrimSpace(params.CaseNumber); number != "" {
		builder = builder.Where(sq.Eq{"case_number": number})
	}
	if name := strings.TrimSpace(params.CaseName); name != "" {
		builder = builder.Where(sq.Like{"case_name": "%" + name + "%"})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []models.ArtefactSearch
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *searchRepository) DeleteForArtefacts(ctx context.Context, artefactIDs []string) error {
	if len(artefactIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.ArtefactSearch{}, "artefact_id IN ?", artefactIDs).Error
}
