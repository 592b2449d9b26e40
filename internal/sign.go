package internal

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/config"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/middleware"
	"github.com/CovenantEyes/winsparkle/internal/utils"
	"github.com/CovenantEyes/winsparkle/internal/verify"
)

func NewSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <artifact>",
		Short: "Produce the feed signature for a release artifact",
		Long: `Sign an installer with an unencrypted armored OpenPGP private key and print
the detached signature to put in the appcast's signature attribute.

Examples:
  winsparkle sign --key release.asc setup-2.0.exe
  winsparkle sign --key release.asc --public-key-out public.asc setup-2.0.exe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyPath, _ := cmd.Flags().GetString("key")
			if keyPath == "" {
				return fmt.Errorf("--key is required")
			}
			raw, err := os.ReadFile(keyPath)
			if err != nil {
				return fmt.Errorf("failed to read key: %w", err)
			}
			signer, err := verify.NewSigner(string(raw))
			if err != nil {
				return err
			}
			if ok, err := utils.FileExists(args[0]); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("artifact %s does not exist", args[0])
			}

			armored, _ := cmd.Flags().GetBool("armor")
			var sig string
			if armored {
				sig, err = signer.SignArmored(args[0])
			} else {
				sig, err = signer.Sign(args[0])
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), sig)

			if out, _ := cmd.Flags().GetString("public-key-out"); out != "" {
				if err := utils.WriteFileAtomic(out, bytes.NewReader(signer.PublicKey()), 0o644); err != nil {
					return fmt.Errorf("failed to write public key: %w", err)
				}
				logger.Info("Public key written to %s", out)
			}
			return nil
		},
	}

	cmd.Flags().String("key", "", "Armored private key file")
	cmd.Flags().Bool("armor", false, "Print an armored signature block instead of base64")
	cmd.Flags().String("public-key-out", "", "Also write the armored public key here")
	return cmd
}

func NewVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <artifact> <signature>",
		Short: "Check an artifact against the configured public key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := middleware.Get[*config.Settings](cmd, middleware.CtxKeySettings)
			if err != nil {
				return err
			}
			v, err := verify.FromSources(settings.PublicKey, settings.PublicKeyFile)
			if err != nil {
				return err
			}
			if v == nil {
				return fmt.Errorf("no public_key or public_key_file configured")
			}
			if err := v.Verify(args[0], args[1]); err != nil {
				return err
			}
			logger.Success("Signature OK")
			return nil
		},
	}
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			config.PrintVersion(cmd.OutOrStdout())
		},
	}
}
