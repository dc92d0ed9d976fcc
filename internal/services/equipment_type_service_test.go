package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/dto"
	"equiptrak/internal/entities"
	apperrors "equiptrak/pkg/errors"
)

func TestEquipmentTypeServiceList(t *testing.T) {
	svc := NewEquipmentTypeService(fakeTypeRepo{}, authz.NewGatekeeper(), zap.NewNop())

	out, err := svc.GetAll(adminCtx())
	require.NoError(t, err)
	require.Len(t, out, len(entities.RecordTypes()))
	assert.Equal(t, dto.EquipmentTypeDTO{ID: 2, Code: "spot_welder", Name: "Spot Welder"}, out[1])
	assert.Equal(t, "LOLER", out[4].Name)
}

func TestEquipmentTypeServiceCreate(t *testing.T) {
	svc := NewEquipmentTypeService(fakeTypeRepo{}, authz.NewGatekeeper(), zap.NewNop())

	created, err := svc.Create(adminCtx(), dto.CreateEquipmentTypeDTO{Code: "compressor", Name: " Screw Compressor "})
	require.NoError(t, err)
	assert.Equal(t, uint64(99), created.ID)
	assert.Equal(t, "compressor", created.Code)
	assert.Equal(t, "Screw Compressor", created.Name)
}

func TestEquipmentTypeServiceForbidsCustomers(t *testing.T) {
	svc := NewEquipmentTypeService(fakeTypeRepo{}, authz.NewGatekeeper(), zap.NewNop())

	_, err := svc.GetAll(customerCtx(7))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.Create(customerCtx(7), dto.CreateEquipmentTypeDTO{Code: "loler", Name: "Lifting"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
