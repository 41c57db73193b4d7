package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Edelbertschen/taskfuchs-sub005/server/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint an access token for a user (development and scripting)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		if instanceProfile.Secret == "" {
			return errors.New("a secret is required to sign tokens, set --secret or TASKFUCHS_SECRET")
		}

		ttl, err := cmd.Flags().GetDuration("ttl")
		if err != nil {
			return err
		}
		var expiresAt time.Time
		if ttl > 0 {
			expiresAt = time.Now().Add(ttl)
		}

		token, err := auth.GenerateAccessToken(args[0], expiresAt, []byte(instanceProfile.Secret))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Duration("ttl", auth.AccessTokenDuration, "token lifetime, 0 for no expiry")
}
