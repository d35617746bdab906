package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatterbox-im/chatterbox/internal/config"
	"github.com/chatterbox-im/chatterbox/internal/usecase"
)

// tokenCmd mints a session token for local development. Production
// tokens come from the auth service that shares the HMAC secret.
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "issue a session token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.Load()
		if err != nil {
			return err
		}
		auth := usecase.NewAuthUsecase(conf)
		token, err := auth.IssueToken(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
