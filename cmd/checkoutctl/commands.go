package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/app"
	"github.com/aussiebroadwan/washpay/pkg/authsdk"
	"github.com/aussiebroadwan/washpay/pkg/cryptox"
	"github.com/aussiebroadwan/washpay/pkg/idx"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
	"github.com/spf13/cobra"
)

func signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a parameter set the way the gateway checks it",
		Long: `Computes hashExtended for the given fields. Pass every field with -p,
including hashExtended if the form carries it; it never takes part in its
own signature. The secret defaults to IPG_SHARED_SECRET.`,
		Example: `  checkoutctl sign --secret sharedsecret -p chargetotal=13.00 -p currency=978`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			pairs, _ := cmd.Flags().GetStringArray("param")
			showCanonical, _ := cmd.Flags().GetBool("canonical")

			if secret == "" {
				secret = os.Getenv("IPG_SHARED_SECRET")
			}
			if secret == "" {
				return errors.New("a shared secret is required (--secret or IPG_SHARED_SECRET)")
			}

			params := ipg.Params{}
			for _, pair := range pairs {
				key, value, ok := strings.Cut(pair, "=")
				if !ok || key == "" {
					return fmt.Errorf("invalid parameter %q, want key=value", pair)
				}
				params[key] = value
			}

			out := cmd.OutOrStdout()
			if showCanonical {
				fmt.Fprintln(out, ipg.Canonical(params))
			}
			fmt.Fprintln(out, ipg.Sign(params, secret))
			return nil
		},
	}

	cmd.Flags().StringP("secret", "s", "", "Shared secret")
	cmd.Flags().StringArrayP("param", "p", nil, "Field as key=value (repeatable)")
	cmd.Flags().Bool("canonical", false, "Also print the canonical string")

	return cmd
}

func paramsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Build and sign a payment request from the environment config",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			total, _ := cmd.Flags().GetFloat64("total")
			orderID, _ := cmd.Flags().GetString("order-id")

			cfg := app.LoadConfig()
			if cfg.SharedSecret == "" {
				return errors.New("IPG_SHARED_SECRET is required")
			}

			now := time.Now()
			if orderID == "" {
				orderID = idx.NewAt(now).String()
			}

			params, err := cfg.Gateway.Build(ipg.Selection{
				Kind:    ipg.ProductKind(kind),
				Total:   total,
				OrderID: orderID,
			}, now)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(params.Signed(cfg.SharedSecret).Strings())
		},
	}

	cmd.Flags().StringP("kind", "k", string(ipg.KindWashbook), "Product kind (washbook, membership)")
	cmd.Flags().Float64P("total", "t", 0, "Charge total")
	cmd.Flags().String("order-id", "", "Order id (default: a new ULID)")
	_ = cmd.MarkFlagRequired("total")

	return cmd
}

func tokenExpiredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token-expired TOKEN",
		Short: "Report whether an access token is expired or about to be",
		Long: `Prints "expired" when the token's exp claim is within the refresh skew
of now, and "valid" otherwise. A decodable token without exp is expired;
one that cannot be decoded at all is reported as valid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := "valid"
			if authsdk.IsAccessTokenExpired(args[0], time.Now()) {
				state = "expired"
			}
			fmt.Fprintln(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func keygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate key material for STORE_SEAL_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			size, _ := cmd.Flags().GetInt("size")
			key, err := cryptox.GenerateKey(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().IntP("size", "n", cryptox.KeySize256, "Key size in bytes")

	return cmd
}
