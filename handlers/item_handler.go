package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/database"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/models"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/services"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/utils"
)

type CreateItemRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Condition   string   `json:"condition" validate:"required,oneof=NEW LIKE_NEW GOOD FAIR POOR"`
	Images      []string `json:"images" validate:"max=5"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=SELL TRADE BOTH"`
}

type UpdateItemRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Condition   *string   `json:"condition" validate:"omitempty,oneof=NEW LIKE_NEW GOOD FAIR POOR"`
	Images      *[]string `json:"images" validate:"omitempty,max=5"`
	Mode        *string   `json:"mode" validate:"omitempty,oneof=SELL TRADE BOTH"`
}

func CreateItem(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ModeSell
	}

	item := models.Item{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    strings.ToLower(req.Category),
		Price:       req.Price,
		Condition:   req.Condition,
		Images:      req.Images,
		Mode:        mode,
	}
	if err := database.DB.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create item"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

func GetAllItems(c *fiber.Ctx) error {
	page, pageSize := utils.Pagination(c, 20)

	query := database.DB.Model(&models.Item{}).
		Preload("User").
		Where("is_active = ?", true)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", strings.ToLower(category))
	}
	if mode := c.Query("mode"); mode != "" {
		query = query.Where("mode = ?", mode)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var items []models.Item
	if err := query.
		Order("created_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch items"})
	}

	return c.JSON(fiber.Map{"success": true, "count": len(items), "data": items})
}

func GetItemByID(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var item models.Item
	if err := database.DB.Preload("User").Where("id = ?", itemID).First(&item).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

func UpdateItem(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var item models.Item
	if err := database.DB.Where("id = ?", itemID).First(&item).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	}
	if item.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to update this item"})
	}

	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = strings.ToLower(*req.Category)
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Condition != nil {
		item.Condition = *req.Condition
	}
	if req.Images != nil {
		item.Images = *req.Images
	}
	if req.Mode != nil {
		item.Mode = *req.Mode
	}

	if err := database.DB.Save(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update item"})
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// DeleteItem deactivates a listing rather than destroying it, so existing
// conversations that reference it keep resolving.
func DeleteItem(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var item models.Item
	if err := database.DB.Where("id = ?", itemID).First(&item).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	}
	if item.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized"})
	}

	item.IsActive = false
	if err := database.DB.Save(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove item"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Item removed successfully"})
}

type PriceSuggestionRequest struct {
	Title     string `json:"title" validate:"required"`
	Category  string `json:"category"`
	Condition string `json:"condition"`
}

// GetPriceSuggestion returns a heuristic asking-price estimate for a draft
// listing.
func GetPriceSuggestion(c *fiber.Ctx) error {
	var req PriceSuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	price := services.SuggestPrice(req.Category, req.Condition)

	return c.JSON(fiber.Map{"success": true, "price": price, "message": "Price estimation successful"})
}
