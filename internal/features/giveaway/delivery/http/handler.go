package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"giveaway-bot-backend/internal/common/config"
	"giveaway-bot-backend/internal/common/middleware"
	"giveaway-bot-backend/internal/features/giveaway/models"
	giveawayservice "giveaway-bot-backend/internal/features/giveaway/service"
)

type GiveawayHandler struct {
	service giveawayservice.GiveawayService
	config  *config.Config
}

func NewGiveawayHandler(service giveawayservice.GiveawayService, config *config.Config) *GiveawayHandler {
	return &GiveawayHandler{
		service: service,
		config:  config,
	}
}

func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup) {
	giveaways := router.Group("/giveaways")
	giveaways.Use(middleware.Identify())
	{
		giveaways.GET("", h.list)
		giveaways.GET("/:id", h.getByID)
		giveaways.POST("/:id/toggle", h.toggle)

		hostOnly := giveaways.Group("")
		hostOnly.Use(middleware.RequireHostPermission(h.config))
		{
			hostOnly.POST("", h.create)
			hostOnly.POST("/:id/end", h.end)
			hostOnly.POST("/:id/reroll", h.reroll)
			hostOnly.DELETE("/:id", h.delete)
		}
	}
}

func (h *GiveawayHandler) create(c *gin.Context) {
	var input models.GiveawayCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.HostID = middleware.CallerID(c)

	giveaway, err := h.service.Create(c.Request.Context(), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, giveaway)
}

func (h *GiveawayHandler) list(c *gin.Context) {
	giveaways, err := h.service.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"giveaways": giveaways, "count": len(giveaways)})
}

func (h *GiveawayHandler) getByID(c *gin.Context) {
	giveaway, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, giveaway)
}

func (h *GiveawayHandler) toggle(c *gin.Context) {
	result, err := h.service.ToggleEntry(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *GiveawayHandler) end(c *gin.Context) {
	id := c.Param("id")

	// End itself treats unknown ids as a no-op; the command surface reports
	// them as not found.
	if _, err := h.service.GetByID(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	winners, err := h.service.End(c.Request.Context(), id, true)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"giveaway_id": id, "winner_ids": winners})
}

type rerollRequest struct {
	WinnersCount    int   `json:"winner_count"`
	ExcludePrevious *bool `json:"exclude_previous"`
}

func (h *GiveawayHandler) reroll(c *gin.Context) {
	var input rerollRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	excludePrevious := true
	if input.ExcludePrevious != nil {
		excludePrevious = *input.ExcludePrevious
	}

	id := c.Param("id")
	winners, err := h.service.Reroll(c.Request.Context(), id, input.WinnersCount, excludePrevious)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"giveaway_id": id, "winner_ids": winners})
}

func (h *GiveawayHandler) delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GiveawayHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, giveawayservice.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, giveawayservice.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, giveawayservice.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrGiveawayEnded),
		errors.Is(err, models.ErrGiveawayNotEnded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidDuration),
		errors.Is(err, models.ErrEmptyPrize),
		errors.Is(err, models.ErrInvalidUserID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
