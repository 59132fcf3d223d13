package handlers

import (
	"testing"
	"tripsplit-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMergeSearchResults(t *testing.T) {
	asha := models.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com"}
	ben := models.User{ID: uuid.New(), Name: "Ben", Email: "ben@example.com"}

	t.Run("exact match leads and duplicates collapse", func(t *testing.T) {
		got := mergeSearchResults([]models.User{asha}, []models.User{ben, asha})

		assert.Len(t, got, 2)
		assert.Equal(t, asha.ID, got[0].ID)
		assert.Equal(t, ben.ID, got[1].ID)
	})

	t.Run("companions only", func(t *testing.T) {
		got := mergeSearchResults(nil, []models.User{ben})

		assert.Len(t, got, 1)
		assert.Equal(t, ben.ID, got[0].ID)
	})

	t.Run("no matches yields empty list", func(t *testing.T) {
		got := mergeSearchResults(nil, nil)
		assert.Empty(t, got)
	})
}
