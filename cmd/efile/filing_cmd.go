package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"efile/internal/filing/document"
	"efile/internal/filing/models"
	filingservice "efile/internal/filing/service"
	id "efile/pkg/domain"
	"efile/pkg/requestcontext"
)

// filingOptions are shared by the filing subcommands.
type filingOptions struct {
	root  *rootOptions
	filer string
}

func newFilingCmd(root *rootOptions) *cobra.Command {
	opts := &filingOptions{root: root}
	cmd := &cobra.Command{
		Use:   "filing",
		Short: "Create, edit, file and administer lobbyist filings",
	}
	cmd.PersistentFlags().StringVar(&opts.filer, "filer", "", "Acting filer UUID")

	cmd.AddCommand(
		newFilingCreateCmd(opts),
		newFilingGetCmd(opts),
		newFilingUpdateCmd(opts),
		newFilingFinalizeCmd(opts),
		newFilingFeesCmd(opts),
		newFilingChainCmd(opts),
		newFilingListCmd(opts),
		newFilingTransitionCmd(opts, "lock", "Lock a filing against further edits", (*filingservice.Service).Lock),
		newFilingTransitionCmd(opts, "cancel", "Cancel a filing", (*filingservice.Service).Cancel),
	)
	return cmd
}

// run connects, wires the filing service and calls fn with a context carrying
// the acting filer.
func (o *filingOptions) run(cmd *cobra.Command, fn func(ctx context.Context, svc *filingservice.Service, filer id.FilerID) error) error {
	var filer id.FilerID
	if o.filer != "" {
		parsed, err := id.ParseFilerID(o.filer)
		if err != nil {
			return fmt.Errorf("invalid --filer: %w", err)
		}
		filer = parsed
	}

	a, err := connect(cmd.Context(), o.root.cfg, o.root.logger())
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.wire(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if !filer.IsNil() {
		ctx = requestcontext.WithFilerID(ctx, filer)
	}
	return fn(ctx, a.filings, filer)
}

func (o *filingOptions) requireFiler() error {
	if o.filer == "" {
		return fmt.Errorf("--filer is required")
	}
	return nil
}

func newFilingCreateCmd(opts *filingOptions) *cobra.Command {
	var (
		filingType string
		entity     string
		year       int
		quarter    string
		amends     string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a filing from its form template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireFiler(); err != nil {
				return err
			}
			req, err := buildCreateRequest(filingType, entity, year, quarter, amends)
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, svc *filingservice.Service, filer id.FilerID) error {
				req.FilerID = filer
				filingID, err := svc.Create(ctx, req)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]string{"filing_id": filingID.String()})
			})
		},
	}
	cmd.Flags().StringVar(&filingType, "type", "", "Filing type, e.g. ec601 (required)")
	cmd.Flags().StringVar(&entity, "entity", "", "Lobbying entity UUID (required)")
	cmd.Flags().IntVar(&year, "year", 0, "Filing year")
	cmd.Flags().StringVar(&quarter, "quarter", "", "Quarter for quarterly forms (Q1-Q4)")
	cmd.Flags().StringVar(&amends, "amends", "", "UUID of the filed filing being amended")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}

func buildCreateRequest(filingType, entity string, year int, quarter, amends string) (filingservice.CreateRequest, error) {
	var req filingservice.CreateRequest
	t, err := models.ParseFilingType(filingType)
	if err != nil {
		return req, err
	}
	entityID, err := id.ParseEntityID(entity)
	if err != nil {
		return req, fmt.Errorf("invalid --entity: %w", err)
	}
	q, err := models.ParseQuarter(quarter)
	if err != nil {
		return req, err
	}
	req = filingservice.CreateRequest{FilingType: t, EntityID: entityID, Year: year, Quarter: q}
	if amends != "" {
		prev, err := id.ParseFilingID(amends)
		if err != nil {
			return req, fmt.Errorf("invalid --amends: %w", err)
		}
		req.AmendsID = &prev
	}
	return req, nil
}

func newFilingGetCmd(opts *filingOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <filing-id>",
		Short: "Print a filing's document prepared for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filingID, err := id.ParseFilingID(args[0])
			if err != nil {
				return err
			}
			if err := opts.requireFiler(); err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, svc *filingservice.Service, filer id.FilerID) error {
				doc, err := svc.GetForEdit(ctx, filingID, filer)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), doc)
			})
		},
	}
}

func readDocument(path string) (document.Document, error) {
	raw, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return document.Decode(raw)
}

func newFilingUpdateCmd(opts *filingOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <filing-id>",
		Short: "Replace a filing's document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filingID, err := id.ParseFilingID(args[0])
			if err != nil {
				return err
			}
			if err := opts.requireFiler(); err != nil {
				return err
			}
			doc, err := readDocument(file)
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, svc *filingservice.Service, filer id.FilerID) error {
				if err := svc.Update(ctx, filingID, filer, doc); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]string{"filing_id": filingID.String(), "status": "saved"})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Document JSON file, - for stdin")
	return cmd
}

func newFilingFinalizeCmd(opts *filingOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "finalize <filing-id>",
		Short: "Validate, assess fees and file a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filingID, err := id.ParseFilingID(args[0])
			if err != nil {
				return err
			}
			if err := opts.requireFiler(); err != nil {
				return err
			}
			doc, err := readDocument(file)
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, svc *filingservice.Service, filer id.FilerID) error {
				res, err := svc.Finalize(ctx, filingID, filer, doc)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Document JSON file, - for stdin")
	return cmd
}

func newFilingFeesCmd(opts *filingOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fees <filing-id>",
		Short: "Compute the fees a filing would be assessed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filingID, err := id.ParseFilingID(args[0])
			if err != nil {
				return err
			}
			if err := opts.requireFiler(); err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, svc *filingservice.Service, filer id.FilerID) error {
				breakdown, err := svc.ComputeFees(ctx, filingID, filer)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), feesOutput{Breakdown: breakdown, Total: breakdown.Total().StringFixed(2)})
			})
		},
	}
}

type feesOutput struct {
	Breakdown any    `json:"breakdown"`
	Total     string `json:"total"`
}

func newFilingChainCmd(opts *filingOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chain <filing-id>",
		Short: "Print the amendment chain from the original to the given filing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filingID, err := id.ParseFilingID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, svc *filingservice.Service, _ id.FilerID) error {
				chain, err := svc.Chain(ctx, filingID)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), chain)
			})
		},
	}
}

func newFilingListCmd(opts *filingOptions) *cobra.Command {
	var statuses []string
	cmd := &cobra.Command{
		Use:   "list <entity-id>",
		Short: "List an entity's filings, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityID, err := id.ParseEntityID(args[0])
			if err != nil {
				return err
			}
			filter, err := parseStatuses(statuses)
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, svc *filingservice.Service, _ id.FilerID) error {
				filings, err := svc.List(ctx, entityID, filter...)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), filings)
			})
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only list filings in these statuses")
	return cmd
}

func parseStatuses(in []string) ([]models.Status, error) {
	out := make([]models.Status, 0, len(in))
	for _, s := range in {
		st := models.Status(s)
		if !st.IsValid() {
			return nil, fmt.Errorf("unknown status %q", s)
		}
		out = append(out, st)
	}
	return out, nil
}

type transitionFunc func(*filingservice.Service, context.Context, id.FilingID) (*models.Filing, error)

func newFilingTransitionCmd(opts *filingOptions, use, short string, transition transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <filing-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filingID, err := id.ParseFilingID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, svc *filingservice.Service, _ id.FilerID) error {
				f, err := transition(svc, ctx, filingID)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), f)
			})
		},
	}
}
