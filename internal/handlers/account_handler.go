package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"auraleen/internal/models"
	"auraleen/internal/services"
)

type AccountHandler struct {
	accounts services.AccountService
}

func NewAccountHandler(accounts services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// @Summary      Get own profile
// @Tags         Account
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /account/profile [get]
func (h *AccountHandler) GetProfile(c *gin.Context) {
	_, email, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.accounts.GetProfile(email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("[account][profile] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":          user.Name,
		"email":         user.Email,
		"contactNumber": user.ContactNumber,
		"address":       user.Address,
	})
}

// @Summary      Update own profile
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        profile  body      models.ProfileUpdateRequest  true  "Profile fields"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /account/profile [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	_, email, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.UpdateProfile(email, req.Name, req.ContactNumber, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required."})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			log.Printf("[account][profile-update] error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Profile updated successfully.",
		"name":          user.Name,
		"email":         user.Email,
		"contactNumber": user.ContactNumber,
		"address":       user.Address,
	})
}
