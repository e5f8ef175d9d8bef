package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/database"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/models"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/services"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/utils"
	"golang.org/x/crypto/bcrypt"
)

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=3"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Avatar   *string `json:"avatar"`
}

func GetProfile(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(user)
}

func UpdateProfile(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Location != nil {
		user.Location = req.Location
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}

	database.DB.Save(&user)

	return c.JSON(user)
}

func ChangePassword(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	type Request struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=6"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Incorrect current password"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash new password"})
	}

	user.Password = string(hashedPassword)
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update password"})
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

func DeleteAccount(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	result := database.DB.Where("id = ?", userID).Delete(&models.User{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete account"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}

// ListUsers is the public user directory used by the frontend's people
// picker when starting a conversation.
func ListUsers(c *fiber.Ctx) error {
	page, pageSize := utils.Pagination(c, 20)

	var users []models.User
	if err := database.DB.
		Where("is_active = ?", true).
		Order("full_name asc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	return c.JSON(users)
}

// GetActivityReport renders the requester's marketplace activity as a PDF
// and returns the uploaded document's URL.
func GetActivityReport(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	url, err := services.GenerateActivityReport(userID)
	if err != nil {
		log.Printf("🔥 Failed to generate activity report for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report"})
	}

	return c.JSON(fiber.Map{"success": true, "report_url": url})
}
