// Command loadingredients imports the ingredient dictionary from a JSON file
// of the form [{"name": "...", "measurement_unit": "..."}]. Pairs of name and
// unit that already exist are skipped, so the import can be re-run.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/foodgram/internal/flagx"
	"github.com/dmitrijs2005/foodgram/internal/logging"
	"github.com/dmitrijs2005/foodgram/internal/server/config"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/foodgram/internal/server/services"
	"github.com/goccy/go-json"
)

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func readIngredients(r io.Reader) ([]*models.Ingredient, error) {
	var records []ingredientRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	out := make([]*models.Ingredient, 0, len(records))
	for _, rec := range records {
		out = append(out, &models.Ingredient{Name: rec.Name, MeasurementUnit: rec.MeasurementUnit})
	}
	return out, nil
}

func inputPath() string {
	var path string
	fs := flag.NewFlagSet("loadingredients", flag.ContinueOnError)
	fs.StringVar(&path, "i", "data/ingredients.json", "path to the ingredients JSON file")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-i"})); err != nil {
		panic(err)
	}
	return path
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	items, err := readIngredients(f)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	n, err := services.NewCatalogService(db, rm).ImportIngredients(ctx, items)
	if err != nil {
		return err
	}

	logger.Info(ctx, "Ingredients imported", "file", path, "read", len(items), "inserted", n)
	return nil
}

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogFormat, os.Stdout)

	if err := run(ctx, cfg, logger, inputPath()); err != nil {
		logger.Error(ctx, "import failed", "error", err)
		os.Exit(1)
	}
}
