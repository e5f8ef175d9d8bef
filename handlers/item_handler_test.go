package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/models"
)

func TestCreateItemValidation(t *testing.T) {
	app := setupTestApp(t)
	seller := seedHandlerUser(t, "i-val")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/items", tokenFor(t, seller), fiber.Map{
		"title":     "TV",
		"condition": "BROKEN",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateAndFetchItem(t *testing.T) {
	app := setupTestApp(t)
	seller := seedHandlerUser(t, "i-create")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/items", tokenFor(t, seller), fiber.Map{
		"title":       "Mountain bike",
		"description": "Barely used",
		"category":    "Vehicles",
		"price":       45000,
		"condition":   models.ConditionLikeNew,
		"mode":        models.ModeBoth,
		"images":      []string{"https://img.example/bike.jpg"},
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data models.Item `json:"data"`
	}
	decodeBody(t, resp, &created)
	assert.Equal(t, seller.ID, created.Data.UserID)
	assert.Equal(t, "vehicles", created.Data.Category, "category should be lowercased")
	assert.True(t, created.Data.IsActive)

	resp, err = app.Test(jsonRequest(t, "GET", "/api/v1/items/"+created.Data.ID.String(), "", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched struct {
		Data models.Item `json:"data"`
	}
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created.Data.ID, fetched.Data.ID)
	assert.Equal(t, "Mountain bike", fetched.Data.Title)
}

func TestListItemsFiltersByCategory(t *testing.T) {
	app := setupTestApp(t)
	seller := seedHandlerUser(t, "i-list")

	category := "cat-" + uuid.NewString()[:8]
	for _, title := range []string{"First find", "Second find"} {
		resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/items", tokenFor(t, seller), fiber.Map{
			"title":       title,
			"description": "something",
			"category":    category,
			"condition":   models.ConditionGood,
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(jsonRequest(t, "GET", "/api/v1/items?category="+category, "", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed struct {
		Count int           `json:"count"`
		Data  []models.Item `json:"data"`
	}
	decodeBody(t, resp, &listed)
	assert.Equal(t, 2, listed.Count)
	for _, item := range listed.Data {
		assert.Equal(t, category, item.Category)
	}
}

func TestUpdateItemOwnership(t *testing.T) {
	app := setupTestApp(t)
	seller := seedHandlerUser(t, "i-own")
	stranger := seedHandlerUser(t, "i-own2")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/items", tokenFor(t, seller), fiber.Map{
		"title":       "Desk lamp",
		"description": "Warm light",
		"category":    "home",
		"condition":   models.ConditionGood,
	}))
	require.NoError(t, err)
	var created struct {
		Data models.Item `json:"data"`
	}
	decodeBody(t, resp, &created)

	resp, err = app.Test(jsonRequest(t, "PUT", "/api/v1/items/"+created.Data.ID.String(), tokenFor(t, stranger), fiber.Map{
		"title": "Hijacked",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "PUT", "/api/v1/items/"+created.Data.ID.String(), tokenFor(t, seller), fiber.Map{
		"title": "Desk lamp (price drop)",
		"price": 9000,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated struct {
		Data models.Item `json:"data"`
	}
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Desk lamp (price drop)", updated.Data.Title)
	assert.Equal(t, float64(9000), updated.Data.Price)
}

func TestDeleteItemDeactivates(t *testing.T) {
	app := setupTestApp(t)
	seller := seedHandlerUser(t, "i-del")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/items", tokenFor(t, seller), fiber.Map{
		"title":       "Free books",
		"description": "Charity pile",
		"category":    "books",
		"condition":   models.ConditionFair,
	}))
	require.NoError(t, err)
	var created struct {
		Data models.Item `json:"data"`
	}
	decodeBody(t, resp, &created)

	resp, err = app.Test(jsonRequest(t, "DELETE", "/api/v1/items/"+created.Data.ID.String(), tokenFor(t, seller), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the row survives as inactive so conversations keep resolving it
	resp, err = app.Test(jsonRequest(t, "GET", "/api/v1/items/"+created.Data.ID.String(), "", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched struct {
		Data models.Item `json:"data"`
	}
	decodeBody(t, resp, &fetched)
	assert.False(t, fetched.Data.IsActive)
}
