package cli

import (
	"errors"
	"fmt"

	"github.com/averin/marque/pkg/vault"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var (
	lockIterations   int
	lockVaultPath    string
	lockPassphrase   string
	unlockVaultPath  string
	unlockPassphrase string
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Encrypt the database into a vault file",
	Long: `Encrypt the bookmark database with a passphrase and remove the plain
file. The vault sits next to the database until unlock restores it.`,
	Args: cobra.NoArgs,
	RunE: runLock,
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Decrypt the vault back into the database",
	Args:  cobra.NoArgs,
	RunE:  runUnlock,
}

func init() {
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)

	lockCmd.Flags().IntVar(&lockIterations, "iterations", vault.DefaultIterations, "PBKDF2 iteration count")
	lockCmd.Flags().StringVar(&lockVaultPath, "vault", "", "vault file (default is the database path plus .vault)")
	lockCmd.Flags().StringVar(&lockPassphrase, "passphrase", "", "passphrase (prompted when omitted)")

	unlockCmd.Flags().StringVar(&unlockVaultPath, "vault", "", "vault file (default is the database path plus .vault)")
	unlockCmd.Flags().StringVar(&unlockPassphrase, "passphrase", "", "passphrase (prompted when omitted)")
}

func runLock(cmd *cobra.Command, args []string) error {
	pw := lockPassphrase
	if pw == "" {
		first, err := promptPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		again, err := promptPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if first != again {
			return errors.New("passphrases do not match")
		}
		pw = first
	}
	if pw == "" {
		return errors.New("passphrase must not be empty")
	}

	v := vault.New(vault.Config{
		Iterations: lockIterations,
		Logger:     appLogger.GetZerolog(),
	})

	path := vaultPath(lockVaultPath)
	if err := v.Lock(cfg.DB.Path, path, pw); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "database locked into %s\n", path)
	return nil
}

func runUnlock(cmd *cobra.Command, args []string) error {
	pw := unlockPassphrase
	if pw == "" {
		var err error
		pw, err = promptPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
	}

	v := vault.New(vault.Config{
		Logger: appLogger.GetZerolog(),
	})

	path := vaultPath(unlockVaultPath)
	if err := v.Unlock(path, cfg.DB.Path, pw); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "database unlocked into %s\n", cfg.DB.Path)
	return nil
}

func vaultPath(override string) string {
	if override != "" {
		return override
	}
	return cfg.DB.Path + ".vault"
}

func promptPassphrase(prompt string) (string, error) {
	rl, err := readline.New(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to open prompt: %w", err)
	}
	defer rl.Close()

	pw, err := rl.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
