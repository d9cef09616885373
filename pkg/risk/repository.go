package risk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAssessmentNotFound = errors.New("risk assessment not found")

// Assessment is a stored prediction. Risk180d is a percentage.
type Assessment struct {
	ID               uuid.UUID `gorm:"primaryKey;column:id" json:"id"`
	EncounterID      string    `gorm:"column:encounter_id;index" json:"encounter_id"`
	ObservationSetID uuid.UUID `gorm:"column:observation_set_id" json:"observation_set_id"`
	Risk180d         float64   `gorm:"column:risk_180d" json:"risk_180d"`
	RiskBand         Band      `gorm:"column:risk_band" json:"risk_band"`
	ModelVersion     string    `gorm:"column:model_version" json:"model_version"`
	DoctorName       string    `gorm:"column:doctor_name" json:"doctor_name"`
	DoctorComment    string    `gorm:"column:doctor_comment" json:"doctor_comment"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Assessment) TableName() string { return "risk_assessments" }

func (a Assessment) String() string {
	return fmt.Sprintf("Risk #%s %s %.2f%%", a.ID, a.RiskBand, a.Risk180d)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Assessment{})
}

func (r *Repository) Create(ctx context.Context, a *Assessment) error {
	now := time.Now().UTC()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Assessment, error) {
	var a Assessment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Assessment{}, ErrAssessmentNotFound
	}
	return a, err
}

func (r *Repository) UpdateComment(ctx context.Context, id uuid.UUID, comment string) error {
	result := r.db.WithContext(ctx).
		Model(&Assessment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"doctor_comment": comment,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssessmentNotFound
	}
	return nil
}
