package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
)

func init() {
	rootCmd.AddCommand(keygenCmd, encryptCmd, decryptCmd)
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a CONFIG_ENC_KEY (base64, 32 bytes)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := cipher.GenerateKey()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt [plaintext]",
	Short: "Encrypt a value with CONFIG_ENC_KEY (reads stdin if no argument)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCipher(cmd, args, cipher.Encrypt)
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt [iv:tag:ciphertext]",
	Short: "Decrypt a value produced by encrypt",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCipher(cmd, args, cipher.Decrypt)
	},
}

func runCipher(cmd *cobra.Command, args []string, fn func(in, key string) (string, error)) error {
	key := strings.TrimSpace(os.Getenv("CONFIG_ENC_KEY"))
	if key == "" {
		return errors.New("CONFIG_ENC_KEY not set")
	}

	in, err := inputArg(cmd, args)
	if err != nil {
		return err
	}
	out, err := fn(in, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func inputArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	sc := bufio.NewScanner(cmd.InOrStdin())
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no input")
	}
	return sc.Text(), nil
}
