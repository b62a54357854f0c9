package main

import (
	"errors"
	"fmt"

	"github.com/loykin/hubspotrun/pkg/fixture"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <fixture>...",
	Short: "Check fixtures for structural errors and lossless round trips",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var errs []error
		for _, path := range args {
			if err := validateFile(path); err != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s\n", path)
				for _, e := range unwrapJoined(err) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  - %v\n", e)
				}
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				continue
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", path)
		}
		return errors.Join(errs...)
	},
}

func validateFile(path string) error {
	format, err := fixture.FormatFromPath(path)
	if err != nil {
		return err
	}
	in, err := fixture.Load(path)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	_, err = fixture.RoundTrip(in, format)
	return err
}

// unwrapJoined flattens an errors.Join tree one level for display.
func unwrapJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
