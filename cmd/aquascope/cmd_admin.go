package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aquascope/internal/auth"
	"aquascope/internal/model"
	"aquascope/internal/store"
)

var (
	createUserPassword string
	createUserAdmin    bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative operations on the database",
}

var createUserCmd = &cobra.Command{
	Use:   "create-user <email>",
	Short: "Create an account directly, bypassing the registration toggle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.ToLower(strings.TrimSpace(args[0]))
		if !strings.Contains(email, "@") {
			return fmt.Errorf("invalid email %q", email)
		}
		if createUserPassword == "" {
			return fmt.Errorf("--password is required")
		}
		hash, err := auth.HashPassword(createUserPassword)
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Database.Path, logger.Named("store"))
		if err != nil {
			return err
		}
		defer st.Close()

		u := &model.User{
			Email:          email,
			Username:       strings.SplitN(email, "@", 2)[0],
			HashedPassword: hash,
			IsAdmin:        createUserAdmin,
		}
		if err := st.CreateUser(cmd.Context(), u); err != nil {
			return err
		}
		logger.Info("user created",
			zap.String("email", u.Email),
			zap.Bool("admin", u.IsAdmin))
		return nil
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Database.Path, logger.Named("store"))
		if err != nil {
			return err
		}
		defer st.Close()

		u, err := st.UserByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(args[0])))
		if err != nil {
			return err
		}
		if u.IsAdmin {
			logger.Info("already an admin", zap.String("email", u.Email))
			return nil
		}
		u.IsAdmin = true
		if err := st.UpdateUser(cmd.Context(), u); err != nil {
			return err
		}
		logger.Info("user promoted", zap.String("email", u.Email))
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createUserPassword, "password", "", "password for the new account")
	createUserCmd.Flags().BoolVar(&createUserAdmin, "admin", false, "grant the admin role")
	adminCmd.AddCommand(createUserCmd)
	adminCmd.AddCommand(promoteCmd)
}
