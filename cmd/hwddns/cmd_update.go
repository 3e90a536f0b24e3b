package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/hwddns/internal/config"
)

func newCmdUpdate(g *globalOptions) *cobra.Command {
	var (
		recordType string
		value      string
	)

	cmd := &cobra.Command{
		Use:   "update [domain...]",
		Short: "Run one update cycle and exit",
		Long: "Update the given domains, or every configured domain when none are given.\n" +
			"Without --value, A and AAAA values are discovered from the public address.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}

			domains := selectDomains(cfg, args, strings.ToUpper(recordType), value)
			if len(domains) == 0 {
				return config.ErrNoDomains
			}
			if err := config.ValidateDomains(domains); err != nil {
				return err
			}

			release, err := acquireLock(cfg.LockFile, logger)
			if err != nil {
				return err
			}
			defer release()

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}

			_, err = a.cycle(cmd.Context(), domains)
			return err
		},
	}

	cmd.Flags().StringVarP(&recordType, "type", "t", "", "Record type for the given domains: A, AAAA, CNAME, TXT (default A)")
	cmd.Flags().StringVar(&value, "value", "", "Value to write instead of the discovered address")
	return cmd
}

// selectDomains returns args as domains of recordType when given, else the
// configured domains with recordType and value overriding when set.
func selectDomains(cfg *config.Config, args []string, recordType, value string) []config.Domain {
	if len(args) > 0 {
		t := recordType
		if t == "" {
			t = config.DefaultRecordType
		}
		out := make([]config.Domain, 0, len(args))
		for _, name := range args {
			out = append(out, config.Domain{Name: name, Type: t, Value: value})
		}
		return out
	}

	out := make([]config.Domain, 0, len(cfg.Domains))
	for _, d := range cfg.Domains {
		if recordType != "" {
			d.Type = recordType
		}
		if value != "" {
			d.Value = value
		}
		out = append(out, d)
	}
	slog.Debug("using configured domains", slog.Int("count", len(out)))
	return out
}
