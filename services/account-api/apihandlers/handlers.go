package apihandlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/catalog"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/dualstore"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/personalization"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/session"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	tokenSignKey    string
	tokenExpiresIn  time.Duration
	identity        *usermanagement.IdentityService
	personalization *personalization.Service
	catalog         *catalog.Catalog
	sessions        *session.Broadcaster
	store           *dualstore.Adapter
}

func NewHTTPHandler(
	tokenSignKey string,
	tokenExpiresIn time.Duration,
	identity *usermanagement.IdentityService,
	personalizationService *personalization.Service,
	dishCatalog *catalog.Catalog,
	sessions *session.Broadcaster,
	store *dualstore.Adapter,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:    tokenSignKey,
		tokenExpiresIn:  tokenExpiresIn,
		identity:        identity,
		personalization: personalizationService,
		catalog:         dishCatalog,
		sessions:        sessions,
		store:           store,
	}
}
