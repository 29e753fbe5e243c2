package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/farellandr/eventhub/internal/auth"
	"github.com/spf13/cobra"
)

var hashCost int

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash of a password",
	Long: `Print the bcrypt hash of a password. The password is read from stdin
when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password given")
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("password must not be empty")
		}

		hasher, err := auth.NewPasswordHasher(hashCost)
		if err != nil {
			return err
		}
		hashed, err := hasher.Hash(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hashed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", auth.DefaultBcryptCost, "bcrypt cost factor")
}
