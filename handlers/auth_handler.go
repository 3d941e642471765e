package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"aurora-backend/models"
	"aurora-backend/repository"
	"aurora-backend/service"
	"aurora-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxPhotoSize caps profile image uploads at 5MB
const maxPhotoSize = 5 * 1024 * 1024

// tempUploadDir holds in-flight uploads before they reach storage
const tempUploadDir = "uploads_temp"

var imageFilenameRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)

// AuthHandler handles HTTP requests for accounts and profiles
type AuthHandler struct {
	authService *service.AuthService
	storage     storage.Storage
	// fallback takes the upload when the primary storage fails; nil when
	// the primary is already local.
	fallback storage.Storage
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, primary, fallback storage.Storage) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		storage:     primary,
		fallback:    fallback,
	}
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), service.SignupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, http.StatusBadRequest, "MISSING_FIELDS", "Name, email, and password required")
		case errors.Is(err, models.ErrDuplicateEmail):
			respondError(c, http.StatusConflict, "EMAIL_EXISTS", "Email already exists")
		default:
			log.Printf("Signup error: %v", err)
			respondError(c, http.StatusInternalServerError, "SIGNUP_FAILED", "Failed to create user")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    gin.H{"user": user},
	})
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, http.StatusBadRequest, "MISSING_FIELDS", "Email and password are required")
		case errors.Is(err, models.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
		default:
			log.Printf("Login error: %v", err)
			respondError(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to log in")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token": result.Token,
			"user":  result.User,
		},
	})
}

// GetUser handles GET /api/auth/user
func (h *AuthHandler) GetUser(c *gin.Context) {
	user := CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"name":        user.Name,
			"email":       user.Email,
			"photo":       user.Photo,
			"address":     user.Address,
			"phone":       user.Phone,
			"dateOfBirth": user.DateOfBirth,
		},
	})
}

// UpdateUserRequest represents the editable profile fields. Absent fields
// are left untouched.
type UpdateUserRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Photo       *string `json:"photo"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"dateOfBirth"`
}

// UpdateUser handles PUT /api/auth/user
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	user := CurrentUser(c)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if req.DateOfBirth != nil {
		if _, err := time.Parse("2006-01-02", *req.DateOfBirth); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "dateOfBirth must be in YYYY-MM-DD format")
			return
		}
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user.ID, repository.ProfileUpdate{
		Name:        req.Name,
		Email:       req.Email,
		Photo:       req.Photo,
		Address:     req.Address,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoUpdateFields):
			respondError(c, http.StatusBadRequest, "NO_UPDATE_FIELDS", "No valid update fields provided")
		case errors.Is(err, models.ErrDuplicateEmail):
			respondError(c, http.StatusConflict, "EMAIL_EXISTS", "Email already in use by another account")
		case errors.Is(err, models.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found for update")
		default:
			log.Printf("Update profile error for user %s: %v", user.ID, err)
			respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"user": updated},
	})
}

// UploadPhoto handles POST /api/auth/upload. The image lands in a temp file
// first; the temp file is removed on every exit path.
func (h *AuthHandler) UploadPhoto(c *gin.Context) {
	user := CurrentUser(c)

	fileHeader, err := c.FormFile("profileImage")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "No image file uploaded")
		return
	}

	if !imageFilenameRe.MatchString(fileHeader.Filename) {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only image files (jpg, jpeg, png, gif, webp) are allowed")
		return
	}

	if fileHeader.Size > maxPhotoSize {
		respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", fmt.Sprintf("File size exceeds maximum of %d bytes", maxPhotoSize))
		return
	}

	if err := os.MkdirAll(tempUploadDir, 0755); err != nil {
		log.Printf("Upload error creating temp dir: %v", err)
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store uploaded file")
		return
	}

	tempPath := filepath.Join(tempUploadDir, fmt.Sprintf("profile-%d%s", time.Now().UnixNano(), filepath.Ext(fileHeader.Filename)))
	if err := c.SaveUploadedFile(fileHeader, tempPath); err != nil {
		log.Printf("Upload error saving temp file: %v", err)
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store uploaded file")
		return
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			log.Printf("Error deleting temp file %s: %v", tempPath, err)
		}
	}()

	photoURL, err := h.storeTempFile(c, tempPath, fileHeader.Filename)
	if err != nil {
		log.Printf("Upload error for user %s: %v", user.ID, err)
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store uploaded file")
		return
	}

	if err := h.authService.UpdatePhoto(c.Request.Context(), user.ID, photoURL); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found during photo update")
			return
		}
		log.Printf("Photo update error for user %s: %v", user.ID, err)
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to save photo reference")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"photo": photoURL},
	})
}

// storeTempFile pushes the temp file into primary storage, falling back to
// local storage when the primary rejects it.
func (h *AuthHandler) storeTempFile(c *gin.Context, tempPath, filename string) (string, error) {
	fileID := uuid.New()

	upload := func(dest storage.Storage) (string, error) {
		f, err := os.Open(tempPath)
		if err != nil {
			return "", err
		}
		defer f.Close()

		storagePath, err := dest.Upload(c.Request.Context(), fileID, filename, f)
		if err != nil {
			return "", err
		}
		return dest.URL(storagePath), nil
	}

	url, err := upload(h.storage)
	if err != nil && h.fallback != nil {
		log.Printf("Primary storage upload failed, saving locally: %v", err)
		return upload(h.fallback)
	}
	return url, err
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
