package internal

import (
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/config"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/store"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show settings and stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, prefs, err := fromContext(cmd)
			if err != nil {
				return err
			}

			snapshot, err := prefs.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			if logger.JSON() {
				kv := []interface{}{"feed_url", settings.FeedURL, "app_version", settings.HostVersion()}
				for _, k := range sortedKeys(snapshot) {
					kv = append(kv, k, snapshot[k])
				}
				logger.Event("status", kv...)
				return nil
			}

			return renderStatus(settings, snapshot)
		},
	}
}

func renderStatus(settings *config.Settings, snapshot map[string]string) error {
	table := logger.CreateTable([]string{"Key", "Value", "Source"})

	rows := [][]string{
		{"feed_url", orNone(settings.FeedURL), "settings"},
		{"app_version", settings.HostVersion(), "settings"},
		{"state", settings.StateBackend + " " + settings.StatePath, "settings"},
		{"signature check", signatureMode(settings), "settings"},
	}
	for _, k := range sortedKeys(snapshot) {
		rows = append(rows, []string{k, displayPref(k, snapshot[k]), "preferences"})
	}

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			logger.LogError("Error appending to table: %v", err)
			return err
		}
	}
	return table.Render()
}

func signatureMode(s *config.Settings) string {
	switch {
	case s.PublicKey != "" || s.PublicKeyFile != "":
		return "required"
	case s.AllowUnsigned:
		return "disabled (allow_unsigned_updates)"
	default:
		return "no key: silent installs refused"
	}
}

func displayPref(key, value string) string {
	switch key {
	case store.KeyLastCheckTime:
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil && secs > 0 {
			return time.Unix(secs, 0).Format(time.RFC3339)
		}
	case store.KeyCheckInterval:
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
			return (time.Duration(secs) * time.Second).String()
		}
	}
	return value
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
