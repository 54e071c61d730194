package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	apierrors "github.com/coldreach/warmstack/api/errors"
	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/errors"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/internal/tracing"
)

type ProfilesHandler struct {
	profileRepository interfaces.WarmupProfileRepository
}

func NewProfilesHandler(repos *repository.Repositories) *ProfilesHandler {
	return &ProfilesHandler{
		profileRepository: repos.WarmupProfileRepository,
	}
}

type profileRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`

	Phase1Days      int `json:"phase1Days"`
	Phase1MinEmails int `json:"phase1MinEmails"`
	Phase1MaxEmails int `json:"phase1MaxEmails"`
	Phase2Days      int `json:"phase2Days"`
	Phase2MinEmails int `json:"phase2MinEmails"`
	Phase2MaxEmails int `json:"phase2MaxEmails"`
	Phase3Days      int `json:"phase3Days"`
	Phase3MinEmails int `json:"phase3MinEmails"`
	Phase3MaxEmails int `json:"phase3MaxEmails"`
	Phase4Days      int `json:"phase4Days"`
	Phase4MinEmails int `json:"phase4MinEmails"`
	Phase4MaxEmails int `json:"phase4MaxEmails"`
}

// List returns every ramp profile
func (h *ProfilesHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ProfilesHandler.List")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		profiles, err := h.profileRepository.List(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"profiles": profiles, "total": len(profiles)})
	}
}

// Get returns a single ramp profile
func (h *ProfilesHandler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ProfilesHandler.Get")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		profile, err := h.profileRepository.GetByID(ctx, c.Param("id"))
		if err != nil {
			if stderrors.Is(err, errors.ErrProfileNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// Create adds a new ramp profile
func (h *ProfilesHandler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ProfilesHandler.Create")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request profileRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if validationErrors := validateProfile(&request); validationErrors.HasErrors() {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErrors.Error(), "fields": validationErrors.Fields()})
			return
		}

		profile := profileFromRequest(&request)
		if err := h.profileRepository.Create(ctx, profile); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, profile)
	}
}

// Update replaces the parameters of a non-system profile
func (h *ProfilesHandler) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ProfilesHandler.Update")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		profile, err := h.profileRepository.GetByID(ctx, c.Param("id"))
		if err != nil {
			if stderrors.Is(err, errors.ErrProfileNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if profile.IsSystem {
			c.JSON(http.StatusForbidden, gin.H{"error": errors.ErrProfileProtected.Error()})
			return
		}

		var request profileRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErrors := validateProfile(&request); validationErrors.HasErrors() {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErrors.Error(), "fields": validationErrors.Fields()})
			return
		}

		updated := profileFromRequest(&request)
		updated.ID = profile.ID
		updated.IsSystem = profile.IsSystem
		updated.CreatedAt = profile.CreatedAt

		if err := h.profileRepository.Update(ctx, updated); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// Delete removes a non-system profile
func (h *ProfilesHandler) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ProfilesHandler.Delete")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		id := c.Param("id")
		profile, err := h.profileRepository.GetByID(ctx, id)
		if err != nil {
			if stderrors.Is(err, errors.ErrProfileNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if profile.IsSystem {
			c.JSON(http.StatusForbidden, gin.H{"error": errors.ErrProfileProtected.Error()})
			return
		}

		if err := h.profileRepository.Delete(ctx, id); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "profile deleted", "id": id})
	}
}

func validateProfile(request *profileRequest) *apierrors.MultiErrors {
	validationErrors := apierrors.NewMultiErrors()

	if request.Name == "" {
		validationErrors.Add("name", "name is required", nil)
	}

	phases := []struct {
		name     string
		days     int
		min, max int
	}{
		{"phase1", request.Phase1Days, request.Phase1MinEmails, request.Phase1MaxEmails},
		{"phase2", request.Phase2Days, request.Phase2MinEmails, request.Phase2MaxEmails},
		{"phase3", request.Phase3Days, request.Phase3MinEmails, request.Phase3MaxEmails},
		{"phase4", request.Phase4Days, request.Phase4MinEmails, request.Phase4MaxEmails},
	}
	for _, phase := range phases {
		if phase.days < 1 {
			validationErrors.Add(phase.name, "phase length must be at least one day", nil)
		}
		if phase.min < 1 || phase.max < phase.min {
			validationErrors.Add(phase.name, "email range must satisfy 1 <= min <= max", nil)
		}
	}
	return validationErrors
}

func profileFromRequest(request *profileRequest) *models.WarmupProfile {
	return &models.WarmupProfile{
		Name:            request.Name,
		Description:     request.Description,
		IsDefault:       request.IsDefault,
		Phase1Days:      request.Phase1Days,
		Phase1MinEmails: request.Phase1MinEmails,
		Phase1MaxEmails: request.Phase1MaxEmails,
		Phase2Days:      request.Phase2Days,
		Phase2MinEmails: request.Phase2MinEmails,
		Phase2MaxEmails: request.Phase2MaxEmails,
		Phase3Days:      request.Phase3Days,
		Phase3MinEmails: request.Phase3MinEmails,
		Phase3MaxEmails: request.Phase3MaxEmails,
		Phase4Days:      request.Phase4Days,
		Phase4MinEmails: request.Phase4MinEmails,
		Phase4MaxEmails: request.Phase4MaxEmails,
	}
}
