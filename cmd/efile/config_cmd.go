package main

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"efile/internal/filing/models"
	"efile/internal/filingconfig"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fee schedules and filing deadlines",
	}
	cmd.AddCommand(newConfigImportCmd(opts), newConfigShowCmd(opts))
	return cmd
}

func newConfigImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Load a YAML seed of fee schedules and deadlines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0])
			if err != nil {
				return err
			}
			entries, err := filingconfig.ParseSeed(bytes.NewReader(raw))
			if err != nil {
				return err
			}

			log := opts.logger()
			a, err := connect(cmd.Context(), opts.cfg, log)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.wire(); err != nil {
				return err
			}
			if err := filingconfig.Import(cmd.Context(), a.configStore, entries); err != nil {
				return err
			}
			log.InfoContext(cmd.Context(), "filing config imported", "entries", len(entries))
			return writeJSON(cmd.OutOrStdout(), map[string]int{"imported": len(entries)})
		},
	}
}

type configView struct {
	FilingType models.FilingType         `json:"filing_type"`
	Year       int                       `json:"year"`
	Fees       *filingconfig.FeeSchedule `json:"fees,omitempty"`
	Deadlines  map[string]string         `json:"deadlines,omitempty"`
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <filing-type> <year>",
		Short: "Print the fee schedule and deadlines configured for a form and year",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := models.FilingType(args[0])
			if !t.IsValid() {
				return fmt.Errorf("unknown filing type %q", args[0])
			}
			year, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid year %q: %w", args[1], err)
			}

			a, err := connect(cmd.Context(), opts.cfg, opts.logger())
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.wire(); err != nil {
				return err
			}

			view := configView{FilingType: t, Year: year, Deadlines: map[string]string{}}
			if fs, err := a.configs.FeeSchedule(cmd.Context(), t, year); err == nil {
				view.Fees = &fs
			}
			quarters := []models.Quarter{models.QuarterNone}
			if t.IsQuarterly() {
				quarters = []models.Quarter{models.Q1, models.Q2, models.Q3, models.Q4}
			}
			for _, q := range quarters {
				d, err := a.configs.Deadline(cmd.Context(), t, year, q)
				if err != nil {
					continue
				}
				label := string(q)
				if label == "" {
					label = "annual"
				}
				view.Deadlines[label] = d.String()
			}
			return writeJSON(cmd.OutOrStdout(), view)
		},
	}
}
