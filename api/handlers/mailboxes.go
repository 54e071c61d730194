package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	apierrors "github.com/coldreach/warmstack/api/errors"
	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/errors"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/services"
)

type MailboxesHandler struct {
	mailboxRepository interfaces.MailboxRepository
	profileRepository interfaces.WarmupProfileRepository
	emailSender       interfaces.EmailSender
}

func NewMailboxesHandler(s *services.Services, repos *repository.Repositories) *MailboxesHandler {
	return &MailboxesHandler{
		mailboxRepository: repos.MailboxRepository,
		profileRepository: repos.WarmupProfileRepository,
		emailSender:       s.EmailSender,
	}
}

type createMailboxRequest struct {
	EmailAddress    string  `json:"emailAddress"`
	DisplayName     string  `json:"displayName"`
	SmtpServer      string  `json:"smtpServer"`
	SmtpPort        int     `json:"smtpPort"`
	SmtpUsername    string  `json:"smtpUsername"`
	SmtpPassword    string  `json:"smtpPassword"`
	SmtpTLS         *bool   `json:"smtpTls"`
	WarmupProfileID *string `json:"warmupProfileId"`
}

type updateMailboxRequest struct {
	DisplayName     *string `json:"displayName"`
	SmtpServer      *string `json:"smtpServer"`
	SmtpPort        *int    `json:"smtpPort"`
	SmtpUsername    *string `json:"smtpUsername"`
	SmtpPassword    *string `json:"smtpPassword"`
	SmtpTLS         *bool   `json:"smtpTls"`
	IsActive        *bool   `json:"isActive"`
	WarmupProfileID *string `json:"warmupProfileId"`
}

// List returns all configured mailboxes
func (h *MailboxesHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "MailboxesHandler.List")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		mailboxes, err := h.mailboxRepository.GetMailboxes(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"mailboxes": mailboxes, "total": len(mailboxes)})
	}
}

// Get returns a single mailbox by id
func (h *MailboxesHandler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "MailboxesHandler.Get")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		mailbox, err := h.mailboxRepository.GetMailbox(ctx, c.Param("id"))
		if err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, mailbox)
	}
}

// Create registers a new mailbox for warmup
func (h *MailboxesHandler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "MailboxesHandler.Create")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request createMailboxRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if validationErrors := validateCreateMailbox(&request); validationErrors.HasErrors() {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErrors.Error(), "fields": validationErrors.Fields()})
			return
		}

		mailbox := &models.Mailbox{
			EmailAddress:    strings.ToLower(strings.TrimSpace(request.EmailAddress)),
			DisplayName:     strings.TrimSpace(request.DisplayName),
			SmtpServer:      request.SmtpServer,
			SmtpPort:        request.SmtpPort,
			SmtpUsername:    request.SmtpUsername,
			SmtpPassword:    request.SmtpPassword,
			SmtpTLS:         true,
			IsActive:        true,
			WarmupProfileID: request.WarmupProfileID,
		}
		if mailbox.SmtpPort == 0 {
			mailbox.SmtpPort = 587
		}
		if request.SmtpTLS != nil {
			mailbox.SmtpTLS = *request.SmtpTLS
		}

		if err := h.mailboxRepository.SaveMailbox(ctx, mailbox); err != nil {
			if stderrors.Is(err, errors.ErrMailboxExists) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"status": "mailbox added", "id": mailbox.ID})
	}
}

// Update modifies mailbox settings in place
func (h *MailboxesHandler) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "MailboxesHandler.Update")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		mailbox, err := h.mailboxRepository.GetMailbox(ctx, c.Param("id"))
		if err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var request updateMailboxRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		applyMailboxUpdate(mailbox, &request)

		if err := h.mailboxRepository.SaveMailbox(ctx, mailbox); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, mailbox)
	}
}

// Delete deactivates a mailbox; warmup history is kept
func (h *MailboxesHandler) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "MailboxesHandler.Delete")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		id := c.Param("id")
		if err := h.mailboxRepository.DeactivateMailbox(ctx, id); err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "mailbox deactivated", "id": id})
	}
}

// TestConnection runs an SMTP login against the mailbox provider and persists
// the outcome on the mailbox record
func (h *MailboxesHandler) TestConnection() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "MailboxesHandler.TestConnection")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		mailbox, err := h.mailboxRepository.GetMailbox(ctx, c.Param("id"))
		if err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		testErr := h.emailSender.TestConnection(ctx, mailbox)
		if testErr != nil {
			tracing.TraceErr(span, testErr)
		}

		if err := h.mailboxRepository.SaveMailbox(ctx, mailbox); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"connectionStatus": mailbox.ConnectionStatus,
			"connectionError":  mailbox.ConnectionError,
			"testedAt":         mailbox.LastConnectionTestAt,
		})
	}
}

// ApplyProfile attaches a ramp profile to the mailbox
func (h *MailboxesHandler) ApplyProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "MailboxesHandler.ApplyProfile")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		mailbox, err := h.mailboxRepository.GetMailbox(ctx, c.Param("id"))
		if err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var request struct {
			ProfileID string `json:"profileId"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if request.ProfileID == "" {
			mailbox.WarmupProfileID = nil
		} else {
			profile, err := h.profileRepository.GetByID(ctx, request.ProfileID)
			if err != nil {
				if stderrors.Is(err, errors.ErrProfileNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
					return
				}
				tracing.TraceErr(span, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			mailbox.WarmupProfileID = &profile.ID
		}

		if err := h.mailboxRepository.SaveMailbox(ctx, mailbox); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, mailbox)
	}
}

func validateCreateMailbox(request *createMailboxRequest) *apierrors.MultiErrors {
	validationErrors := apierrors.NewMultiErrors()

	address := strings.TrimSpace(request.EmailAddress)
	if address == "" {
		validationErrors.Add("emailAddress", "email address is required", nil)
	} else if !strings.Contains(address[1:], "@") {
		validationErrors.Add("emailAddress", "email address is not valid", nil)
	}
	if strings.TrimSpace(request.SmtpServer) == "" {
		validationErrors.Add("smtpServer", "smtp server is required", nil)
	}
	if strings.TrimSpace(request.SmtpUsername) == "" {
		validationErrors.Add("smtpUsername", "smtp username is required", nil)
	}
	if request.SmtpPassword == "" {
		validationErrors.Add("smtpPassword", "smtp password is required", nil)
	}
	if request.SmtpPort < 0 || request.SmtpPort > 65535 {
		validationErrors.Add("smtpPort", "smtp port is out of range", nil)
	}
	return validationErrors
}

func applyMailboxUpdate(mailbox *models.Mailbox, request *updateMailboxRequest) {
	if request.DisplayName != nil {
		mailbox.DisplayName = *request.DisplayName
	}
	if request.SmtpServer != nil {
		mailbox.SmtpServer = *request.SmtpServer
	}
	if request.SmtpPort != nil {
		mailbox.SmtpPort = *request.SmtpPort
	}
	if request.SmtpUsername != nil {
		mailbox.SmtpUsername = *request.SmtpUsername
	}
	if request.SmtpPassword != nil {
		mailbox.SmtpPassword = *request.SmtpPassword
	}
	if request.SmtpTLS != nil {
		mailbox.SmtpTLS = *request.SmtpTLS
	}
	if request.IsActive != nil {
		mailbox.IsActive = *request.IsActive
	}
	if request.WarmupProfileID != nil {
		if *request.WarmupProfileID == "" {
			mailbox.WarmupProfileID = nil
		} else {
			mailbox.WarmupProfileID = request.WarmupProfileID
		}
	}
}
