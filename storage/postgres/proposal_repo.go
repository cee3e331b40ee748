package postgres

import (
	"context"
	"errors"

	"procurement-radar/types"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProposalRepo 封装 commercial_proposals 表
type ProposalRepo struct {
	db *gorm.DB
}

func NewProposalRepo(db *gorm.DB) *ProposalRepo {
	return &ProposalRepo{db: db}
}

func (r *ProposalRepo) Create(ctx context.Context, p *types.Proposal) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	row := proposalFromDomain(p)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	p.CreatedAt = row.CreatedAt
	return nil
}

func (r *ProposalRepo) Get(ctx context.Context, id string) (*types.Proposal, error) {
	var row CommercialProposal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *ProposalRepo) ListByLot(ctx context.Context, lotID string) ([]types.Proposal, error) {
	var rows []CommercialProposal
	err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return proposalsToDomain(rows), nil
}

// ListUnanalyzed returns proposals still waiting for a reliability rating.
func (r *ProposalRepo) ListUnanalyzed(ctx context.Context, limit int) ([]types.Proposal, error) {
	var rows []CommercialProposal
	err := r.db.WithContext(ctx).
		Where("supplier_rating IS NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return proposalsToDomain(rows), nil
}

// SaveAnalysis stores the rating fields produced by an analysis run.
func (r *ProposalRepo) SaveAnalysis(ctx context.Context, p *types.Proposal) error {
	return r.db.WithContext(ctx).
		Model(&CommercialProposal{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"supplier_rating":           p.SupplierRating,
			"supplier_reliability_info": p.SupplierReliabilityInfo,
			"integral_rating":           p.IntegralRating,
			"analyzed_at":               p.AnalyzedAt,
		}).Error
}

func proposalsToDomain(rows []CommercialProposal) []types.Proposal {
	out := make([]types.Proposal, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out
}

func datatypesList(items []string) datatypes.JSONSlice[string] {
	if items == nil {
		items = []string{}
	}
	return datatypes.JSONSlice[string](items)
}
