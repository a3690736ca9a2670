package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/JaThHu/Notizen-App/internal/auth"
	"github.com/JaThHu/Notizen-App/internal/comments"
	"github.com/JaThHu/Notizen-App/internal/config"
	"github.com/JaThHu/Notizen-App/internal/database"
	"github.com/JaThHu/Notizen-App/internal/notes"
	"github.com/JaThHu/Notizen-App/internal/router"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "notizen-api",
		Short:         "Notizen note-taking API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("disconnecting mongodb: %v", err)
		}
	}()

	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := auth.NewRepository(db)
	noteRepo := notes.NewRepository(db)
	commentRepo := comments.NewRepository(db)

	app := router.NewApp(cfg.CORSOrigin)

	r := &router.Router{
		Auth:     auth.NewHandler(userRepo, hasher, tokens),
		Notes:    notes.NewHandler(noteRepo, commentRepo),
		Comments: comments.NewHandler(commentRepo, noteRepo),
		AuthMW:   auth.Middleware(tokens),
	}
	r.RegisterRoutes(app)

	log.Println("listening on port", cfg.Port)
	return app.Listen(":" + cfg.Port)
}
