package main

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/catalog"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/challenge"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/db"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/dualstore"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/messaging"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/personalization"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/session"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement"
	"github.com/AbdullahSoftDev/Daily-Dish-img/services/account-api/apihandlers"
)

func main() {
	localStore, err := dualstore.NewSQLiteStore(conf.LocalStorePath)
	if err != nil {
		slog.Error("Error opening local store", slog.String("error", err.Error()))
		return
	}

	// the remote store is optional at startup, the adapter falls back
	// to the local copy until the connection recovers
	var remoteStore dualstore.DocumentStore
	mongoStore, err := dualstore.NewMongoStore(db.DBConfigFromYamlObj(conf.DBConfigs.AccountDB))
	if err != nil {
		slog.Warn("Remote document store unavailable, starting degraded", slog.String("error", err.Error()))
	} else {
		remoteStore = mongoStore
		if err := mongoStore.CreateDefaultIndexes(); err != nil {
			slog.Error("Error ensuring document indexes", slog.String("error", err.Error()))
		}
	}

	store := dualstore.NewAdapter(remoteStore, localStore)

	var sender messaging.CodeSender
	if conf.MessagingConfigs.UseLogSender {
		sender = messaging.LogCodeSender{}
	} else {
		smtpSender, err := messaging.NewSmtpCodeSender(conf.MessagingConfigs.SmtpServers)
		if err != nil {
			slog.Error("Error setting up SMTP sender", slog.String("error", err.Error()))
			return
		}
		sender = smtpSender
	}

	sessions := session.NewBroadcaster()
	identityService := usermanagement.NewIdentityService(store, challenge.NewStore(localStore), sender, sessions)
	personalizationService := personalization.NewService(store, sessions)

	dishCatalog, err := catalog.Load()
	if err != nil {
		slog.Error("Error loading dish catalog", slog.String("error", err.Error()))
		return
	}

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.UserManagementConfig.UserJWTConfig.SignKey,
		conf.UserManagementConfig.UserJWTConfig.ExpiresIn,
		identityService,
		personalizationService,
		dishCatalog,
		sessions,
		store,
	)
	v1APIHandlers.AddAccountAuthAPI(v1Root)
	v1APIHandlers.AddPasswordResetAPI(v1Root)
	v1APIHandlers.AddPersonalizationAPI(v1Root)
	v1APIHandlers.AddCatalogAPI(v1Root)

	// Start the server
	slog.Info("Starting Account API on port " + conf.GinConfig.Port)
	if err := router.Run(":" + conf.GinConfig.Port); err != nil {
		slog.Error("Exited Account API", slog.String("error", err.Error()))
		return
	}
}
