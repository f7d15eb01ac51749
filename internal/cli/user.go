package cli

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/avolkau/librarium/internal/auth"
	"github.com/avolkau/librarium/internal/entities"
)

var (
	userName      string
	userLibraryID string
	userPassword  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account. The password is prompted for
interactively unless --password is given. A library ID is generated
when --library-id is omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createUser(entities.UserRoleAdmin)
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a student account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return createUser(entities.UserRoleStudent)
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, _, authService, err := openStores()
		if err != nil {
			return err
		}
		defer db.Close()

		accounts, err := authService.ListAccounts()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLIBRARY ID\tNAME\tROLE\tCREATED")
		for _, u := range accounts {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				u.ID, u.LibraryID, u.Name, u.Role, u.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <library-id>",
	Short: "Set a new password for an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, userRepo, _, authService, err := openStores()
		if err != nil {
			return err
		}
		defer db.Close()

		user, err := userRepo.GetUserByLibraryID(args[0])
		if err != nil {
			return err
		}

		password := userPassword
		if password == "" {
			password, err = promptPassword()
			if err != nil {
				return err
			}
		}

		if _, err := authService.UpdateAccount(user.ID, auth.AccountUpdate{Password: &password}); err != nil {
			return err
		}
		fmt.Printf("Password updated for %s (%s)\n", user.Name, user.LibraryID)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{userCreateAdminCmd, userCreateCmd} {
		cmd.Flags().StringVar(&userName, "name", "", "display name (required)")
		cmd.Flags().StringVar(&userLibraryID, "library-id", "", "library ID (generated when omitted)")
		cmd.Flags().StringVar(&userPassword, "password", "", "password (prompted when omitted)")
		cmd.MarkFlagRequired("name")
	}
	userResetPasswordCmd.Flags().StringVar(&userPassword, "password", "", "password (prompted when omitted)")

	userCmd.AddCommand(userCreateAdminCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userResetPasswordCmd)
}

func createUser(role entities.UserRole) error {
	db, _, _, authService, err := openStores()
	if err != nil {
		return err
	}
	defer db.Close()

	password := userPassword
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	user, err := authService.CreateAccount(userName, userLibraryID, password, role)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s account %s (library ID %s)\n", user.Role, user.Name, user.LibraryID)
	return nil
}

// promptPassword reads a password twice from the terminal with echo off.
func promptPassword() (string, error) {
	first, err := readPassword("Password: ")
	if err != nil {
		return "", err
	}
	second, err := readPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passwords do not match")
	}
	return first, nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
