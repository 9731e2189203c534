package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-lab/learning-service/internal/services"
	"github.com/kotoba-lab/learning-service/internal/utils"
)

type DeckHandler struct {
	BaseHandler
	deckService services.DeckService
}

func NewDeckHandler(deckService services.DeckService, logger utils.Logger) *DeckHandler {
	return &DeckHandler{
		BaseHandler: NewBaseHandler(logger),
		deckService: deckService,
	}
}

// BuildDeck assembles a flashcard deck from a lesson's vocabulary and
// returns it together with its retrieval key.
func (h *DeckHandler) BuildDeck(c *gin.Context) {
	lessonID := parseIDParam(c, "id")
	if lessonID == 0 {
		return
	}

	h.LogRequest(c, "Building flashcard deck", "lesson_id", lessonID)

	deck, err := h.deckService.Build(c.Request.Context(), lessonID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deck)
}

// GetDeck fetches a previously built deck by its opaque key.
func (h *DeckHandler) GetDeck(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid key",
			Details: "deck key cannot be empty",
		})
		return
	}

	deck, err := h.deckService.Get(c.Request.Context(), key)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, deck)
}
