package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/parking-spot-reservation/internal/utils"
)

var hashCost int

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key <device-key>",
	Short: "bcrypt a device key for DEVICE_KEY_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := utils.HashKey(args[0], hashCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

func init() {
	hashKeyCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	rootCmd.AddCommand(hashKeyCmd)
}
