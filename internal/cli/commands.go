package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/auth"
	"github.com/mamadbah2/proporco/internal/config"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
	"github.com/mamadbah2/proporco/internal/service/finance"
	"github.com/mamadbah2/proporco/internal/service/reporting"
)

const dateLayout = "2006-01-02"

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the record store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts, func(cfg *config.Config, _ *store.Store, _ *zap.Logger) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", cfg.Database.Driver)
				return nil
			})
		},
	}
}

func newAccountCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage farm accounts",
	}

	var (
		name     string
		email    string
		whatsapp string
		digest   bool
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, email = strings.TrimSpace(name), strings.TrimSpace(email)
			if name == "" || email == "" {
				return errors.New("--name and --email are required")
			}
			acc := models.Account{
				ID:             uuid.NewString(),
				Name:           name,
				Email:          email,
				WhatsAppNumber: strings.TrimPrefix(strings.TrimSpace(whatsapp), "+"),
				DigestEnabled:  digest,
			}
			return withStore(cmd.Context(), opts, func(_ *config.Config, st *store.Store, _ *zap.Logger) error {
				if err := st.CreateAccount(cmd.Context(), &acc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created account %s\n", acc.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "Farm or operator name")
	create.Flags().StringVar(&email, "email", "", "Contact email")
	create.Flags().StringVar(&whatsapp, "whatsapp", "", "WhatsApp number in international format")
	create.Flags().BoolVar(&digest, "digest", true, "Send the weekly digest")

	cmd.AddCommand(create)
	return cmd
}

func newTokenCommand(opts *options) *cobra.Command {
	var (
		accountID string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts, func(cfg *config.Config, st *store.Store, _ *zap.Logger) error {
				acc, err := st.Account(cmd.Context(), accountID)
				if err != nil {
					return err
				}
				if ttl <= 0 {
					ttl = cfg.Auth.TokenTTL
				}
				token, err := auth.Issue(cfg.Auth.JWTSecret, acc.ID, ttl, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "Account id")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_TTL_HOURS)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newReportCommand(opts *options) *cobra.Command {
	var (
		accountID string
		from      string
		to        string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the financial digest for an account",
		Long:  "Print the financial digest for an account. Without --from and --to the period is the last seven days.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts, func(cfg *config.Config, st *store.Store, log *zap.Logger) error {
				loc, err := time.LoadLocation(cfg.Reporting.Timezone)
				if err != nil {
					return fmt.Errorf("load timezone %q: %w", cfg.Reporting.Timezone, err)
				}
				svc := reporting.NewService(st, log.Named("svc.reporting"),
					reporting.WithLocation(loc),
					reporting.WithAlertHorizon(cfg.Reporting.AlertHorizon))

				if _, err := st.Account(cmd.Context(), accountID); err != nil {
					return err
				}

				period := svc.LastSevenDays()
				if from != "" || to != "" {
					if period, err = parsePeriod(from, to, loc); err != nil {
						return err
					}
				}

				text, report, err := svc.Digest(cmd.Context(), accountID, period)
				if err != nil {
					return err
				}
				if !asJSON {
					fmt.Fprintln(cmd.OutOrStdout(), text)
					return nil
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			})
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "Account id")
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day, inclusive (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

// parsePeriod reads calendar days in loc. Either bound may be empty.
func parsePeriod(from, to string, loc *time.Location) (finance.Period, error) {
	var p finance.Period
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return p, fmt.Errorf("invalid --from %q (expected YYYY-MM-DD)", from)
		}
		p.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return p, fmt.Errorf("invalid --to %q (expected YYYY-MM-DD)", to)
		}
		p.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !p.From.IsZero() && !p.To.IsZero() && p.To.Before(p.From) {
		return p, errors.New("--to must not be before --from")
	}
	return p, nil
}
