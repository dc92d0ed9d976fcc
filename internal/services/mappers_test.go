package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiptrak/internal/entities"
	"equiptrak/pkg/types"
)

func TestFormatTimestamp(t *testing.T) {
	stamp := time.Date(2025, time.June, 1, 9, 30, 0, 0, time.UTC)
	var zero time.Time

	assert.Equal(t, "", formatTimestamp(nil))
	assert.Equal(t, "", formatTimestamp(&zero))
	assert.Equal(t, "2025-06-01T09:30:00Z", formatTimestamp(&stamp))
}

func TestMappersCarryTimestamps(t *testing.T) {
	created := time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)
	base := types.BaseEntity{CreatedAt: &created, UpdatedAt: &updated}

	company := toCompanyDTO(&entities.Company{ID: 7, Name: "Acme Fabrication", BaseEntity: base})
	require.NotNil(t, company)
	assert.Equal(t, "2025-05-01T08:00:00Z", company.CreatedAt)
	assert.Equal(t, "2025-05-03T08:00:00Z", company.UpdatedAt)

	bare := toEngineerDTO(&entities.Engineer{ID: 1, Name: "Dave Jones"})
	require.NotNil(t, bare)
	assert.Empty(t, bare.CreatedAt)
	assert.Empty(t, bare.UpdatedAt)

	equipment := toEquipmentDTO(&entities.Equipment{ID: 1, CompanyID: 7, BaseEntity: base}, testClassifier())
	assert.Equal(t, "2025-05-01T08:00:00Z", equipment.CreatedAt)
	assert.Equal(t, "2025-05-03T08:00:00Z", equipment.UpdatedAt)
}
