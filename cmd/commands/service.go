package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/authguard/authguard-terminal/internal/cli"
	"github.com/authguard/authguard-terminal/pkg/authcode"
	"github.com/authguard/authguard-terminal/pkg/models"
)

// ServiceListResult represents the output structure for service list
type ServiceListResult struct {
	Items []ServiceItem `json:"items" yaml:"items"`
	Count int           `json:"count" yaml:"count"`
}

// ServiceItem is a service as shown to the user. The secret is never listed.
type ServiceItem struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Issuer    string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Account   string `json:"account,omitempty" yaml:"account,omitempty"`
	Period    uint   `json:"period" yaml:"period"`
	Digits    int    `json:"digits" yaml:"digits"`
	Algorithm string `json:"algorithm" yaml:"algorithm"`
	Code      string `json:"code,omitempty" yaml:"code,omitempty"`
}

// clipboardWrite is replaced in tests
var clipboardWrite = clipboard.WriteAll

// now is replaced in tests
var now = time.Now

// NewServiceCommand creates the service command and its subcommands
func NewServiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"services", "svc"},
		Short:   "Manage authenticator services",
		Long: `Add, list and remove the TOTP services kept by authguard, or print
the current code of one of them.`,
	}

	cmd.AddCommand(newServiceAddCommand())
	cmd.AddCommand(newServiceListCommand())
	cmd.AddCommand(newServiceRemoveCommand())
	cmd.AddCommand(newServiceCodeCommand())
	return cmd
}

func newServiceAddCommand() *cobra.Command {
	var (
		name      string
		issuer    string
		account   string
		secret    string
		period    uint
		digits    int
		algorithm string
	)

	cmd := &cobra.Command{
		Use:   "add [otpauth-uri]",
		Short: "Add a service",
		Long: `Add a service from an otpauth:// URI or from explicit flags.

Examples:
  # Add from the URI encoded in a QR code
  authguard service add 'otpauth://totp/Example:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Example'

  # Add from a secret
  authguard service add --name GitHub --secret JBSWY3DPEHPK3PXP`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: requireDataDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc models.Service
			if len(args) == 1 {
				parsed, err := authcode.ParseURI(args[0])
				if err != nil {
					return err
				}
				svc = *parsed
				if name != "" {
					svc.Name = name
				}
			} else {
				if secret == "" {
					return fmt.Errorf("either an otpauth URI or --secret is required")
				}
				if name == "" && issuer == "" {
					return fmt.Errorf("--name or --issuer is required with --secret")
				}
				if err := cli.ValidateDigits(digits); err != nil {
					return err
				}
				alg, err := cli.ValidateAlgorithm(algorithm)
				if err != nil {
					return err
				}
				svc = models.Service{
					Name:      name,
					Issuer:    issuer,
					Account:   account,
					Secret:    authcode.NormalizeSecret(secret),
					Period:    period,
					Digits:    digits,
					Algorithm: alg,
				}
			}

			// Reject secrets that cannot produce a code before storing them
			if _, err := authcode.Generate(svc, now()); err != nil {
				return err
			}

			ctx, err := cli.NewCommandContext()
			if err != nil {
				return err
			}
			services, err := ctx.Services()
			if err != nil {
				return err
			}
			added, err := services.Add(commandContext(cmd), svc)
			if err != nil {
				return fmt.Errorf("failed to add service: %w", err)
			}

			cli.PrintSuccess("Added service %s (%s)", added.DisplayName(), shortID(added.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Service name")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Issuer shown next to the name")
	cmd.Flags().StringVar(&account, "account", "", "Account name")
	cmd.Flags().StringVar(&secret, "secret", "", "Base32 secret")
	cmd.Flags().UintVar(&period, "period", models.DefaultPeriod, "Code period in seconds")
	cmd.Flags().IntVar(&digits, "digits", models.DefaultDigits, "Code length (6 or 8)")
	cmd.Flags().StringVar(&algorithm, "algorithm", "SHA1", "Hash algorithm (SHA1, SHA256, SHA512)")
	return cmd
}

func newServiceListCommand() *cobra.Command {
	var (
		output    string
		showCodes bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List services",
		Long: `List every stored service.

Examples:
  # List with current codes
  authguard service list --codes

  # JSON output
  authguard service list -o json`,
		Args:    cobra.NoArgs,
		PreRunE: requireDataDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.ValidateOutputFormat(output); err != nil {
				return err
			}

			ctx, err := cli.NewCommandContext()
			if err != nil {
				return err
			}
			services, err := ctx.Services()
			if err != nil {
				return err
			}

			t := now()
			var result ServiceListResult
			for _, svc := range services.List() {
				item := ServiceItem{
					ID:        svc.ID,
					Name:      svc.Name,
					Issuer:    svc.Issuer,
					Account:   svc.Account,
					Period:    svc.Period,
					Digits:    svc.Digits,
					Algorithm: svc.Algorithm,
				}
				if item.Period == 0 {
					item.Period = models.DefaultPeriod
				}
				if item.Digits == 0 {
					item.Digits = models.DefaultDigits
				}
				if item.Algorithm == "" {
					item.Algorithm = "SHA1"
				}
				if showCodes {
					code, err := authcode.Generate(svc, t)
					if err != nil {
						cli.PrintWarning("Failed to generate code for %s: %v", svc.DisplayName(), err)
					} else {
						item.Code = code
					}
				}
				result.Items = append(result.Items, item)
			}
			result.Count = len(result.Items)

			switch strings.ToLower(output) {
			case "json", "yaml":
				return cli.OutputResults(cmd.OutOrStdout(), strings.ToLower(output), result)
			default:
				return outputServicesText(cmd, result, showCodes)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&showCodes, "codes", false, "Include the current code of each service")
	return cmd
}

func outputServicesText(cmd *cobra.Command, result ServiceListResult, showCodes bool) error {
	out := cmd.OutOrStdout()
	if result.Count == 0 {
		fmt.Fprintln(out, "No services found. Add one with 'authguard service add'.")
		return nil
	}

	table := cli.NewTableFormatter(out)
	columns := []string{"ID", "NAME", "ISSUER", "ACCOUNT"}
	if showCodes {
		columns = append(columns, "CODE")
	}
	table.Header(columns...)
	for _, item := range result.Items {
		row := []string{
			shortID(item.ID),
			cli.TruncateString(item.Name, 24),
			cli.TruncateString(item.Issuer, 20),
			cli.TruncateString(item.Account, 28),
		}
		if showCodes {
			row = append(row, cli.GroupDigits(item.Code))
		}
		table.Row(row...)
	}
	table.Flush()

	fmt.Fprintf(out, "\n%d service(s)\n", result.Count)
	return nil
}

func newServiceRemoveCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "remove <id|name>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a service",
		Long: `Remove a service by ID, ID prefix or name.

Removing a service cannot be undone. Make sure the account has another
second factor before removing it.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: requireDataDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cli.NewCommandContext()
			if err != nil {
				return err
			}
			services, err := ctx.Services()
			if err != nil {
				return err
			}
			svc, err := services.Find(args[0])
			if err != nil {
				return err
			}

			if !force {
				confirmed, err := cli.Confirm(fmt.Sprintf("Remove service '%s'? This cannot be undone.", svc.DisplayName()), false)
				if err != nil {
					return err
				}
				if !confirmed {
					cli.PrintInfo("Removal cancelled")
					return nil
				}
			}

			if err := services.Remove(commandContext(cmd), svc.ID); err != nil {
				return fmt.Errorf("failed to remove service: %w", err)
			}
			cli.PrintSuccess("Removed service %s", svc.DisplayName())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove without confirmation")
	return cmd
}

func newServiceCodeCommand() *cobra.Command {
	var copyCode bool

	cmd := &cobra.Command{
		Use:   "code <id|name>",
		Short: "Print the current code of a service",
		Long: `Print the current code of a service and how long it stays valid.

Examples:
  authguard service code github
  authguard service code github --copy`,
		Args:    cobra.ExactArgs(1),
		PreRunE: requireDataDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cli.NewCommandContext()
			if err != nil {
				return err
			}
			services, err := ctx.Services()
			if err != nil {
				return err
			}
			svc, err := services.Find(args[0])
			if err != nil {
				return err
			}

			t := now()
			code, err := authcode.Generate(svc, t)
			if err != nil {
				return err
			}
			remaining := authcode.Remaining(svc, t)

			fmt.Fprintln(cmd.OutOrStdout(), code)
			if copyCode {
				if err := clipboardWrite(code); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				cli.PrintSuccess("Code for %s copied to clipboard", svc.DisplayName())
			}
			cli.PrintInfo("Valid for %ds", int(remaining.Round(time.Second)/time.Second))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyCode, "copy", "c", false, "Copy the code to the clipboard")
	return cmd
}

// requireDataDir is the PreRunE shared by commands that need an initialized
// data directory
func requireDataDir(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewCommandContext()
	if err != nil {
		return err
	}
	return ctx.ValidateProject()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// commandContext returns cmd's context, or Background when run outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
