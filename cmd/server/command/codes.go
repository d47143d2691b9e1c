package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/log"
)

var rotateCodes bool

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Pass code maintenance",
}

var assignCodesCmd = &cobra.Command{
	Use:   "assign",
	Short: "Give pass codes to active users lacking one",
	Long: `Gives a unique six digit pass code to every active user without
one. With --rotate every active user gets a new code, except users
holding a reservation that has not ended yet.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		log.Setup(cfg.Env)
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		assign := a.codes.AssignMissing
		if rotateCodes {
			assign = a.codes.Rotate
		}
		n, err := assign(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %d user(s)\n", n)
		return nil
	},
}

func init() {
	assignCodesCmd.Flags().BoolVar(&rotateCodes, "rotate", false, "replace existing codes too")
	codesCmd.AddCommand(assignCodesCmd)
	rootCmd.AddCommand(codesCmd)
}
