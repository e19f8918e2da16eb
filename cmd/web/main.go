// cmd/web/main.go
package main

import (
	"context"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/viniciusmt/conciliaspc/internal/api/handlers"
	"github.com/viniciusmt/conciliaspc/internal/api/middleware"
	"github.com/viniciusmt/conciliaspc/internal/api/responses"
	"github.com/viniciusmt/conciliaspc/internal/core/auth"
	"github.com/viniciusmt/conciliaspc/internal/core/importer"
	"github.com/viniciusmt/conciliaspc/internal/core/verificacao"
	"github.com/viniciusmt/conciliaspc/internal/storage"
)

// initFirestoreClient inicializa o cliente do Firestore a partir do ambiente.
func initFirestoreClient(ctx context.Context, log *zap.SugaredLogger) *firestore.Client {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		projectID = "conciliaspc-db"
	}
	databaseID := os.Getenv("FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		databaseID = "conciliaspc-db"
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		log.Fatalw("erro ao inicializar cliente Firestore", "banco", databaseID, "erro", err)
	}
	log.Infow("conectado ao Firestore", "banco", databaseID)
	return client
}

func main() {
	responses.InitLogger()
	log := responses.Logger().Sugar()
	ctx := context.Background()

	firestoreClient := initFirestoreClient(ctx, log)
	defer firestoreClient.Close()

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET não configurado")
	}

	repo := storage.NewFirestoreRepository(firestoreClient)
	importService := importer.NewService(repo, log)
	verificationService := verificacao.NewService(repo, log)
	authService := auth.NewService(firestoreClient, jwtSecret, log)

	importHandler := handlers.NewImportHandler(importService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	authHandler := handlers.NewAuthHandler(authService)

	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/login", authHandler.Login)
		protected := apiV1.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.POST("/importacoes", importHandler.HandleImport)
			protected.GET("/importacoes/:id/verificacao", verificationHandler.HandleVerification)
			protected.GET("/importacoes/:id/divergencias", verificationHandler.HandleDivergences)
		}
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Infow("servidor iniciado", "porta", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalw("falha ao iniciar o servidor", "erro", err)
	}
}
