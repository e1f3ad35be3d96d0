package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/catalog"
)

func (h *HttpEndpoints) AddCatalogAPI(rg *gin.RouterGroup) {
	dishGroup := rg.Group("/dishes")
	{
		dishGroup.GET("", h.getDishes)
		dishGroup.GET("/:dishID", h.getDish)
	}
}

func (h *HttpEndpoints) getDishes(c *gin.Context) {
	dishes := h.catalog.All()
	if query := c.Query("search"); query != "" {
		dishes = h.catalog.Search(query)
	}
	// the type filter narrows the search result as well
	if dishType := c.Query("type"); dishType != "" {
		var filtered []catalog.Dish
		for _, d := range dishes {
			if d.Type == dishType {
				filtered = append(filtered, d)
			}
		}
		dishes = filtered
	}
	c.JSON(http.StatusOK, gin.H{"dishes": dishes})
}

func (h *HttpEndpoints) getDish(c *gin.Context) {
	dishID, ok := dishIDParam(c)
	if !ok {
		return
	}

	dish, err := h.catalog.ByID(dishID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}
