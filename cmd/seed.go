package cmd

import (
	"context"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"mockinterview/internal/questionbank"
	"mockinterview/internal/repository"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the MongoDB question catalog with a file or the built-in catalog",
	Run: func(_ *cobra.Command, _ []string) {
		seed()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "question catalog in yaml or csv (default is the built-in catalog)")
}

func seed() {
	logger, cfg, secrets := setup()
	defer logger.Sync()

	var (
		bank *questionbank.Bank
		err  error
	)
	if seedFile != "" {
		bank, err = questionbank.LoadFile(afero.NewOsFs(), seedFile)
	} else {
		bank, err = questionbank.Default()
	}
	if err != nil {
		logger.Fatal("failed to load questions", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(secrets.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}

	repo := repository.NewQuestionRepo(client, cfg.Storage.Database)
	if err := repo.ReplaceAll(ctx, bank.All()); err != nil {
		logger.Fatal("failed to seed questions", zap.Error(err))
	}

	logger.Info("question catalog seeded",
		zap.String("database", cfg.Storage.Database),
		zap.Int("questions", bank.Len()),
	)
}
