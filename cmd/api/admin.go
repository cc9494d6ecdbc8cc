package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/taskboard-api/internal/auth"
	"github.com/jaekwang-park/taskboard-api/internal/config"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin identities",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(cmd.Help())
	},
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin identity if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		firstName, _ := cmd.Flags().GetString("first-name")
		if email == "" {
			return errors.New("--email flag is required")
		}
		if stdin, _ := cmd.Flags().GetBool("stdin"); stdin {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprint(os.Stderr, "Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return errors.New("password is required (use --password or --stdin)")
		}

		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.StoreDriver == config.StoreDriverMemory {
			return errors.New("admin create needs a persistent store; STORE_DRIVER is memory")
		}

		st, err := openStores(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.close()

		users := service.NewUserService(st.users, auth.NewPasswordHasher(cfg.BcryptCost))
		admin, created, err := users.EnsureAdmin(cmd.Context(), email, password, firstName)
		if err != nil {
			return err
		}

		if created {
			logger.Info("admin created", "user_id", admin.ID, "email", admin.Email)
		} else {
			logger.Info("admin already exists", "user_id", admin.ID, "email", admin.Email)
		}
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().String("email", "", "admin email address")
	adminCreateCmd.Flags().String("password", "", "admin password")
	adminCreateCmd.Flags().String("first-name", "Admin", "admin first name")
	adminCreateCmd.Flags().Bool("stdin", false, "read the password from stdin")
	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}
