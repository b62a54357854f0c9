package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ErrStoreDisabled = errors.New("run store is disabled in config")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded fixture executions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadConfig()
		if err != nil {
			return err
		}
		if err := doc.SetupLogging(); err != nil {
			return err
		}
		st, err := doc.OpenStore()
		if err != nil {
			return err
		}
		if st == nil {
			return ErrStoreDisabled
		}
		defer func() { _ = st.Close() }()

		runs, err := st.List(viper.GetInt("limit"))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "RAN AT\tMETHOD\tPATH\tSTATUS\tRESULT")
		for _, r := range runs {
			result := "ok"
			if r.Failed {
				result = r.ErrorMessage
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", ranAt(r.RanAt), r.Method, r.Path, r.StatusCode, result)
		}
		return w.Flush()
	},
}

// ranAt shortens a stored RFC3339Nano timestamp to seconds.
func ranAt(v string) string {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return v
	}
	return t.Format(time.RFC3339)
}
