package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/dmitrijs2005/recipekeeper/internal/flagx"
	"github.com/dmitrijs2005/recipekeeper/internal/manage"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	name, args := flagx.Subcommand(os.Args[1:], config.FlagNames)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	us := services.NewUserService(db, rm, cfg)

	app := manage.NewApp(db, rm, us, os.Stdin, os.Stdout)
	if err := app.Run(ctx, name, args); err != nil {
		log.Printf("%v", err)
		db.Close()
		os.Exit(1)
	}

}
