package catalog

import (
	"testing"

	"miles/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	c := New([]models.Experience{
		{ID: 3, Title: "Tea Ceremony & Philosophy", Price: "$75"},
		{ID: 1, Title: "Traditional Cooking with Nonna", Price: "$89"},
	})

	exp, ok := c.GetExperience(3)
	require.True(t, ok)
	assert.Equal(t, "Tea Ceremony & Philosophy", exp.Title)

	_, ok = c.GetExperience(99)
	assert.False(t, ok)

	list := c.Experiences()
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)
}
