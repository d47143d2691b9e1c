package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/utils"
)

var (
	tokenUser uint64
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token signed with JWT_SECRET",
	Long: `Mints an HS256 access token for ops and testing. In production the
identity layer issues tokens with the same secret.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tokenUser == 0 {
			return fmt.Errorf("--user is required")
		}
		if tokenRole != model.RoleCustomer && tokenRole != model.RoleOperator {
			return fmt.Errorf("--role must be %s or %s", model.RoleCustomer, model.RoleOperator)
		}
		cfg := config.Load()
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = time.Duration(cfg.AccessTTLMin) * time.Minute
		}
		tok, err := utils.NewAccessToken(cfg.JWTSecret, tokenUser, tokenRole, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Uint64Var(&tokenUser, "user", 0, "user id (sub claim)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", model.RoleCustomer, "CUSTOMER or OPERATOR")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default ACCESS_TOKEN_TTL_MIN)")
	rootCmd.AddCommand(tokenCmd)
}
