package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/models"
)

func newCategoryFixture(t *testing.T) (*fakeStore, CategoryService, *leagueFixture) {
	lf := newLeagueFixture(t)
	return lf.store, NewCategoryService(lf.db, fakeCategoryRepo{lf.store}, testLogger()), lf
}

func TestCategoryServiceCreateAppendsToSeason(t *testing.T) {
	store, svc, lf := newCategoryFixture(t)
	store.addCategory(1, "Primera", 2025, 1)
	store.addCategory(2, "Segunda", 2025, 2)
	store.addCategory(3, "Primera", 2024, 7)
	lf.expectCommit()

	c, err := svc.Create(context.Background(), CategoryInput{Name: "  Tercera ", SeasonYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, "Tercera", c.Name)
	assert.Equal(t, 3, c.DisplayOrder)
	assert.NoError(t, lf.mock.ExpectationsWereMet())
}

func TestCategoryServiceCreateValidation(t *testing.T) {
	_, svc, lf := newCategoryFixture(t)

	_, err := svc.Create(context.Background(), CategoryInput{Name: "", SeasonYear: 2025})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.Create(context.Background(), CategoryInput{Name: "Primera", SeasonYear: 25})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.NoError(t, lf.mock.ExpectationsWereMet())
}

func TestCategoryServiceCreateDuplicateName(t *testing.T) {
	store, svc, lf := newCategoryFixture(t)
	store.addCategory(1, "Primera", 2025, 1)
	lf.expectRollback()

	_, err := svc.Create(context.Background(), CategoryInput{Name: "Primera", SeasonYear: 2025})
	assert.ErrorIs(t, err, ErrCategoryNameConflict)
}

func TestCategoryServiceMoveUpAndDown(t *testing.T) {
	store, svc, lf := newCategoryFixture(t)
	store.addCategory(1, "Primera", 2025, 1)
	store.addCategory(2, "Segunda", 2025, 2)
	store.addCategory(3, "Tercera", 2025, 3)

	lf.expectCommit()
	require.NoError(t, svc.MoveUp(context.Background(), 3))
	assert.Equal(t, 2, store.categories[3].DisplayOrder)
	assert.Equal(t, 3, store.categories[2].DisplayOrder)

	lf.expectCommit()
	require.NoError(t, svc.MoveDown(context.Background(), 1))
	assert.Equal(t, 2, store.categories[1].DisplayOrder)
	assert.Equal(t, 1, store.categories[3].DisplayOrder)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	ids := []int{}
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{3, 1, 2}, ids)
	assert.NoError(t, lf.mock.ExpectationsWereMet())
}

func TestCategoryServiceMoveAtEdgeIsNoop(t *testing.T) {
	store, svc, lf := newCategoryFixture(t)
	store.addCategory(1, "Primera", 2025, 1)
	store.addCategory(2, "Segunda", 2025, 2)

	lf.expectCommit()
	require.NoError(t, svc.MoveUp(context.Background(), 1))
	lf.expectCommit()
	require.NoError(t, svc.MoveDown(context.Background(), 2))

	assert.Equal(t, 1, store.categories[1].DisplayOrder)
	assert.Equal(t, 2, store.categories[2].DisplayOrder)
	assert.NoError(t, lf.mock.ExpectationsWereMet())
}

func TestCategoryServiceDeleteInUse(t *testing.T) {
	store, svc, _ := newCategoryFixture(t)
	store.addCategory(1, "Primera", 2025, 1)
	store.addPlayer(10, 1, "Ana", "Alvarez", models.PlayerStatusActive)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1), ErrCategoryInUse)
	assert.ErrorIs(t, svc.Delete(context.Background(), 9), ErrCategoryNotFound)
}
