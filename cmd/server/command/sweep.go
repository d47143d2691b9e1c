package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/log"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Complete expired reservations once",
	Long: `Moves every confirmed reservation whose window has ended to
completed, exactly as the background job does, and exits.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		log.Setup(cfg.Env)
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		n, err := a.sweeper.CompleteExpired(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "completed %d reservation(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
