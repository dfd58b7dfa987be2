package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
)

// TenantRepository implementa el acceso a la configuración de negocios
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository crea una nueva instancia de TenantRepository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{
		db: db,
	}
}

// FindTenantSettings trae la configuración global del negocio
func (r *TenantRepository) FindTenantSettings(tenantID string) (*entities.TenantSettings, error) {
	var settings entities.TenantSettings
	err := r.db.Where("tenant_id = ?", tenantID).First(&settings).Error
	if err != nil {
		return nil, fmt.Errorf("configuración de negocio no encontrada: %w", err)
	}
	return &settings, nil
}
