package apihandlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mw "github.com/AbdullahSoftDev/Daily-Dish-img/pkg/apihelpers/middlewares"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/personalization"
)

func (h *HttpEndpoints) AddPersonalizationAPI(rg *gin.RouterGroup) {
	meGroup := rg.Group("/me")
	meGroup.Use(mw.GetAndValidateUserJWT(h.tokenSignKey))
	{
		meGroup.GET("/favorites", h.getFavorites)
		meGroup.POST("/favorites/:dishID/toggle", h.toggleFavorite)

		meGroup.GET("/shopping-list", h.getShoppingList)
		meGroup.POST("/shopping-list", mw.RequirePayload(), h.addShoppingListItem)
		meGroup.POST("/shopping-list/from-dish/:dishID", h.addDishIngredients)
		meGroup.DELETE("/shopping-list/:index", h.removeShoppingListItem)
		meGroup.PUT("/shopping-list/:index/purchased", mw.RequirePayload(), h.markShoppingListItemPurchased)
	}

	// reviews are public to read, session-bound to write
	rg.GET("/dishes/:dishID/reviews", h.getDishReviews)
	rg.GET("/dishes/:dishID/rating", h.getDishRating)
	rg.POST("/dishes/:dishID/reviews",
		mw.RequirePayload(),
		mw.GetAndValidateUserJWT(h.tokenSignKey),
		h.addDishReview,
	)
}

func dishIDParam(c *gin.Context) (int, bool) {
	dishID, err := strconv.Atoi(c.Param("dishID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dish id"})
		return 0, false
	}
	return dishID, true
}

func (h *HttpEndpoints) getFavorites(c *gin.Context) {
	if _, ok := h.currentClaims(c); !ok {
		return
	}

	favorites, err := h.personalization.Favorites(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if favorites == nil {
		favorites = []personalization.FavoriteEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

func (h *HttpEndpoints) toggleFavorite(c *gin.Context) {
	if _, ok := h.currentClaims(c); !ok {
		return
	}
	dishID, ok := dishIDParam(c)
	if !ok {
		return
	}

	dish, err := h.catalog.ByID(dishID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	nowFavorite, err := h.personalization.ToggleFavorite(c.Request.Context(), dish.ID, dish.Name)
	if err != nil {
		slog.Warn("could not toggle favorite", slog.Int("dishID", dishID), slog.String("error", err.Error()))
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dishId": dishID, "isFavorite": nowFavorite})
}

func (h *HttpEndpoints) getShoppingList(c *gin.Context) {
	if _, ok := h.currentClaims(c); !ok {
		return
	}

	items, err := h.personalization.ShoppingList(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *HttpEndpoints) addShoppingListItem(c *gin.Context) {
	if _, ok := h.currentClaims(c); !ok {
		return
	}

	var req struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Quantity string `json:"quantity"`
		Force    bool   `json:"force"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := personalization.ShoppingItem{
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
	}

	ctx := c.Request.Context()
	if req.Force {
		if err := h.personalization.ForceAddToShoppingList(ctx, item); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": "added"})
		return
	}

	result, err := h.personalization.AddToShoppingList(ctx, item)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result.String()})
}

// addDishIngredients puts every ingredient of a dish on the shopping
// list, skipping the ones already there.
func (h *HttpEndpoints) addDishIngredients(c *gin.Context) {
	if _, ok := h.currentClaims(c); !ok {
		return
	}
	dishID, ok := dishIDParam(c)
	if !ok {
		return
	}

	dish, err := h.catalog.ByID(dishID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	force := c.Query("force") == "true"

	ctx := c.Request.Context()
	added, skipped := 0, 0
	for _, ingredient := range dish.Ingredients {
		item := personalization.ShoppingItem{
			Name:     ingredient,
			Category: dish.Name,
		}
		if force {
			if err := h.personalization.ForceAddToShoppingList(ctx, item); err != nil {
				abortWithError(c, err)
				return
			}
			added++
			continue
		}
		result, err := h.personalization.AddToShoppingList(ctx, item)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if result == personalization.ItemAdded {
			added++
		} else {
			skipped++
		}
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "skipped": skipped})
}

func (h *HttpEndpoints) removeShoppingListItem(c *gin.Context) {
	if _, ok := h.currentClaims(c); !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}

	removed, err := h.personalization.RemoveFromShoppingList(c.Request.Context(), index)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *HttpEndpoints) markShoppingListItemPurchased(c *gin.Context) {
	if _, ok := h.currentClaims(c); !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}

	var req struct {
		Purchased bool `json:"purchased"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.personalization.MarkPurchased(c.Request.Context(), index, req.Purchased); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item updated"})
}

func (h *HttpEndpoints) getDishReviews(c *gin.Context) {
	dishID, ok := dishIDParam(c)
	if !ok {
		return
	}

	reviews, err := h.personalization.GetDishReviews(c.Request.Context(), dishID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *HttpEndpoints) getDishRating(c *gin.Context) {
	dishID, ok := dishIDParam(c)
	if !ok {
		return
	}

	rating, err := h.personalization.GetDishRating(c.Request.Context(), dishID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *HttpEndpoints) addDishReview(c *gin.Context) {
	if _, ok := h.currentClaims(c); !ok {
		return
	}
	dishID, ok := dishIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.catalog.ByID(dishID); err != nil {
		abortWithError(c, err)
		return
	}

	review, err := h.personalization.AddReview(c.Request.Context(), dishID, req.Rating, req.Comment)
	if err != nil {
		slog.Warn("could not add review", slog.Int("dishID", dishID), slog.String("error", err.Error()))
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
