package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHashPasswordCmd(c *cli) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash an admin password for server.admin_password_hash",
		Long:  "Hashes a password with bcrypt and the configured pepper. The password is read from --password or, when omitted, from the first line of stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			pwCfg, err := c.cfg.Password()
			if err != nil {
				return err
			}
			hash, err := pwCfg.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password to hash (read from stdin when empty)")
	return cmd
}
