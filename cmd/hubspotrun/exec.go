package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loykin/hubspotrun/internal/handler"
	"github.com/loykin/hubspotrun/pkg/fixture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var execCmd = &cobra.Command{
	Use:   "exec <fixture>",
	Short: "Execute a fixture against the HubSpot API and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadConfig()
		if err != nil {
			return err
		}
		if err := doc.SetupLogging(); err != nil {
			return err
		}

		in, err := fixture.Load(args[0])
		if err != nil {
			return err
		}
		applyOverrides(&in)

		var ex handler.Executor = handler.Stub{}
		if !viper.GetBool("stub") {
			h, closeFn, err := newHandler(doc)
			if err != nil {
				return err
			}
			defer closeFn()
			ex = h
		}

		res, execErr := ex.Execute(commandContext(cmd), in)
		if err := writeJSON(cmd, res); err != nil {
			return err
		}
		return execErr
	},
}

// applyOverrides replaces connection info with --api-key / --api-location
// (or HUBSPOTRUN_API_KEY / HUBSPOTRUN_API_LOCATION) when given.
func applyOverrides(in *fixture.Input) {
	if k := strings.TrimSpace(viper.GetString("api_key")); k != "" {
		in.Info.APIKey = k
	}
	if l := strings.TrimSpace(viper.GetString("api_location")); l != "" {
		in.Info.APILocation = l
	}
}

// newHandler wires the configured client, auth, retry, limiter and run store.
func newHandler(doc *ConfigDoc) (*handler.Handler, func(), error) {
	client, err := doc.HTTPClient()
	if err != nil {
		return nil, nil, err
	}
	rc, err := doc.RetryConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := doc.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	opts := handler.Options{
		Client:  client,
		Env:     doc.GetEnv(),
		Auth:    doc.Auth,
		Retry:   rc,
		Limiter: doc.Limiter(),
	}
	if st != nil {
		opts.Recorder = st
	}
	return handler.New(opts), func() { _ = st.Close() }, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
