package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/feichai0017/clinical-doc-processor/config"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/patient"
	"github.com/feichai0017/clinical-doc-processor/internal/models"
	"github.com/feichai0017/clinical-doc-processor/internal/service/document"
	"github.com/feichai0017/clinical-doc-processor/internal/utils/validator"
	"github.com/feichai0017/clinical-doc-processor/pkg/converters"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

var (
	errProcessingFailed = errors.New("one or more documents failed")
	errInvalidPatient   = errors.New("patient data is invalid")
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "extract",
		Short:         "Extract patient identity fields from clinical documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./config.yaml, or $CONFIG_PATH)")

	cmd.AddCommand(
		newProcessCmd(opts),
		newValidateCmd(),
		newFormatsCmd(),
	)
	return cmd
}

func newProcessCmd(opts *rootOptions) *cobra.Command {
	var (
		extended bool
		pretty   bool
	)
	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: "Process documents and print one JSON result per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if extended {
				conf.Extraction.ExtendedFields = true
			}

			log, err := logger.NewFromConfig(conf.Log)
			if err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			defer log.Sync()

			svc, err := document.GetService(cmd.Context(), conf, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			results := svc.ProcessBatch(cmd.Context(), args)
			return writeResults(cmd.OutOrStdout(), results, pretty)
		},
	}
	cmd.Flags().BoolVar(&extended, "extended", false, "also extract medical record number and diagnosis")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Get(), nil
	}
	return config.Load(path)
}

func writeResults(w io.Writer, results []*models.ProcessingResult, pretty bool) error {
	return encodeResults(w, converters.NewJSONConverter(), results, pretty)
}

func encodeResults(w io.Writer, converter converters.DocumentConverter, results []*models.ProcessingResult, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}

	failed := 0
	for _, r := range results {
		doc, err := converter.Convert(r)
		if err != nil {
			return err
		}
		if doc.Status == converters.StatusFailed {
			failed++
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errProcessingFailed, failed, len(results))
	}
	return nil
}

type validationReport struct {
	Valid   bool                    `json:"valid"`
	Patient models.PatientFields    `json:"patient"`
	Errors  map[models.Field]string `json:"errors,omitempty"`
}

func newValidateCmd() *cobra.Command {
	var first, last, dob string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check patient data against storage rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := models.PatientFields{FirstName: first, LastName: last, DateOfBirth: dob}
			// 先统一日期格式, 无法识别时保留原值交给校验器报错
			if strings.TrimSpace(dob) != "" {
				if formatted, err := patient.ValidateDate(dob); err == nil {
					p.DateOfBirth = formatted
				}
			}

			problems := validator.ValidatePatient(p)
			report := validationReport{Valid: len(problems) == 0, Patient: p, Errors: problems}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.Valid {
				return errInvalidPatient
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&first, "first", "", "first name")
	cmd.Flags().StringVar(&last, "last", "", "last name")
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth (MM/DD/YYYY, MM/DD/YY or YYYY-MM-DD)")
	return cmd
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported file formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EXTENSION\tTYPE\tOCR\tPREPROCESSING\tDESCRIPTION")
			for _, f := range models.SupportedFormats() {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", f.Extension, f.Type, f.OCRRequired, f.Preprocessing, f.Description)
			}
			return tw.Flush()
		},
	}
}
