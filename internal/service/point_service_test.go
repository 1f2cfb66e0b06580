package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/repository"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

func TestPointService_CreateDefaultsRadius(t *testing.T) {
	svc := NewPointService(newMemPoints())
	p, err := svc.Create(context.Background(), PointInput{
		Title:       " HQ ",
		Latitude:    31.23,
		Longitude:   121.47,
		EmployeeIDs: []int64{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "HQ", p.Title)
	assert.Equal(t, domain.DefaultPointRadiusMeters, p.RadiusMeters)
	assert.Equal(t, []int64{1, 2}, p.EmployeeIDs)
}

func TestPointService_UpdateReplacesAssignments(t *testing.T) {
	svc := NewPointService(newMemPoints())
	ctx := context.Background()
	p, err := svc.Create(ctx, PointInput{Title: "HQ", RadiusMeters: 200, EmployeeIDs: []int64{1, 2}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, PointInput{Title: "HQ East", RadiusMeters: 300, EmployeeIDs: []int64{3}})
	require.NoError(t, err)
	assert.Equal(t, 300, updated.RadiusMeters)
	assert.Equal(t, []int64{3}, updated.EmployeeIDs)

	mine, err := svc.ListForEmployee(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	none, err := svc.ListForEmployee(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.Update(ctx, 999, PointInput{Title: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestPointService_ListAndDelete(t *testing.T) {
	svc := NewPointService(newMemPoints())
	ctx := context.Background()
	for _, title := range []string{"Warehouse A", "Warehouse B", "Store"} {
		_, err := svc.Create(ctx, PointInput{Title: title})
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, repository.PointFilter{Keyword: "Warehouse"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, svc.Delete(ctx, got[0].ID))
	assert.True(t, apperrors.HasCode(svc.Delete(ctx, got[0].ID), apperrors.CodeNotFound))
}
