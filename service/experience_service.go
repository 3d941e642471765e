package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"aurora-backend/models"
)

var (
	ErrEmptyExperience    = errors.New("experience text cannot be empty")
	ErrInvalidTaggedEmail = errors.New("invalid recipient email format")
)

var taggedEmailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// experienceListLimit caps the public feed at the latest posts
const experienceListLimit = 100

// ExperienceStore is the persistence surface the experience service needs.
// Implemented by repository.ExperienceRepository.
type ExperienceStore interface {
	Create(ctx context.Context, exp *models.Experience) error
	ListLatest(ctx context.Context, limit int) ([]*models.Experience, error)
}

// Notifier delivers a tag notification for a stored experience.
// Implemented by mailer.Mailer.
type Notifier interface {
	SendTagNotification(to string, exp *models.Experience) error
}

// ExperienceService handles experience posts and the optional tag
// notification side effect.
type ExperienceService struct {
	experiences ExperienceStore
	notifier    Notifier
}

// ExperienceServiceOption is a functional option for ExperienceService
type ExperienceServiceOption func(*ExperienceService)

// ExperienceWithStore sets the experience store
func ExperienceWithStore(store ExperienceStore) ExperienceServiceOption {
	return func(s *ExperienceService) {
		s.experiences = store
	}
}

// ExperienceWithNotifier sets the notification sender
func ExperienceWithNotifier(n Notifier) ExperienceServiceOption {
	return func(s *ExperienceService) {
		s.notifier = n
	}
}

// NewExperienceService creates a new experience service
func NewExperienceService(opts ...ExperienceServiceOption) *ExperienceService {
	s := &ExperienceService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitExperienceRequest represents a new post. Author identity comes from
// the authenticated user and is frozen into the post as a snapshot.
type SubmitExperienceRequest struct {
	Author             *models.User
	Text               string
	TaggedEmail        string
	MessageToRecipient string
}

// Submit validates and persists an experience. When a recipient is tagged,
// the notification is dispatched on a separate goroutine after the post is
// durable; its failure is logged and never affects the caller.
func (s *ExperienceService) Submit(ctx context.Context, req SubmitExperienceRequest) (*models.Experience, error) {
	if s.experiences == nil {
		return nil, errors.New("experience store not set")
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyExperience
	}

	tagged := strings.ToLower(strings.TrimSpace(req.TaggedEmail))
	if tagged != "" && !taggedEmailRe.MatchString(tagged) {
		return nil, ErrInvalidTaggedEmail
	}

	photo := req.Author.Photo
	if photo == "" {
		photo = models.DefaultProfilePhoto
	}

	exp := &models.Experience{
		Experience: text,
		UserID:     req.Author.ID,
		UserName:   req.Author.Name,
		UserEmail:  req.Author.Email,
		UserPhoto:  photo,
		CreatedAt:  time.Now(),
	}
	if tagged != "" {
		exp.TaggedEmail = &tagged
		if msg := strings.TrimSpace(req.MessageToRecipient); msg != "" {
			exp.MessageToRecipient = &msg
		}
	}

	if err := s.experiences.Create(ctx, exp); err != nil {
		return nil, err
	}

	if exp.TaggedEmail != nil && s.notifier != nil {
		// Fire and forget: the caller has their 201 regardless of how
		// the email turns out.
		go func(to string, exp *models.Experience) {
			if err := s.notifier.SendTagNotification(to, exp); err != nil {
				log.Printf("Failed to send tag notification to %s: %v", to, err)
			}
		}(*exp.TaggedEmail, exp)
	}

	return exp, nil
}

// List returns the latest experiences, newest first
func (s *ExperienceService) List(ctx context.Context) ([]*models.Experience, error) {
	if s.experiences == nil {
		return nil, errors.New("experience store not set")
	}
	return s.experiences.ListLatest(ctx, experienceListLimit)
}
