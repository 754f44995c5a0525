package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mockinterview/internal/service"
)

var tokenUser string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for local testing",
	Run: func(_ *cobra.Command, _ []string) {
		logger, cfg, secrets := setup()
		defer logger.Sync()

		resp, err := service.NewAuthService(secrets.JWTSecret, cfg.Auth.TokenTTL).IssueToken(tokenUser)
		if err != nil {
			logger.Fatal("failed to issue token", zap.Error(err))
		}
		fmt.Printf("user: %s\ntoken: %s\n", resp.UserID, resp.Token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "user id (default is a random guest id)")
}
