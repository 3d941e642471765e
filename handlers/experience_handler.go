package handlers

import (
	"errors"
	"log"
	"net/http"

	"aurora-backend/service"

	"github.com/gin-gonic/gin"
)

// ExperienceHandler handles HTTP requests for the experience board
type ExperienceHandler struct {
	experienceService *service.ExperienceService
}

// NewExperienceHandler creates a new experience handler
func NewExperienceHandler(experienceService *service.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{experienceService: experienceService}
}

// List handles GET /api/experiences. Public, latest 100, newest first.
func (h *ExperienceHandler) List(c *gin.Context) {
	experiences, err := h.experienceService.List(c.Request.Context())
	if err != nil {
		log.Printf("Error fetching experiences: %v", err)
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to fetch experiences")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    experiences,
	})
}

// CreateExperienceRequest represents the request body for a new post
type CreateExperienceRequest struct {
	Experience         string `json:"experience"`
	TaggedEmail        string `json:"taggedEmail"`
	MessageToRecipient string `json:"messageToRecipient"`
}

// Create handles POST /api/experiences
func (h *ExperienceHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	var req CreateExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	exp, err := h.experienceService.Submit(c.Request.Context(), service.SubmitExperienceRequest{
		Author:             user,
		Text:               req.Experience,
		TaggedEmail:        req.TaggedEmail,
		MessageToRecipient: req.MessageToRecipient,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyExperience):
			respondError(c, http.StatusBadRequest, "EMPTY_EXPERIENCE", "Experience text cannot be empty")
		case errors.Is(err, service.ErrInvalidTaggedEmail):
			respondError(c, http.StatusBadRequest, "INVALID_TAGGED_EMAIL", "Invalid recipient email format provided")
		default:
			log.Printf("Error adding experience for user %s: %v", user.ID, err)
			respondError(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to add experience")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    gin.H{"experience": exp},
	})
}
