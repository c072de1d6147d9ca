package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/obesity-check/pkg/common/config"
	"github.com/synaptica-ai/obesity-check/pkg/common/database"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
	"github.com/synaptica-ai/obesity-check/pkg/gateway/httpclient"
	"github.com/synaptica-ai/obesity-check/pkg/questionnaire"
	"github.com/synaptica-ai/obesity-check/pkg/screening"
	"github.com/synaptica-ai/obesity-check/pkg/serving"
)

type artifactFlags struct {
	model    string
	encoders string
}

func (a *artifactFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.model, "model", "", "path to a model artifact (default: embedded)")
	cmd.Flags().StringVar(&a.encoders, "encoders", "", "path to a label encoder artifact (default: embedded)")
}

func (a *artifactFlags) load() (*serving.Bundle, error) {
	return serving.LoadBundle(a.model, a.encoders)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "obesity-cli",
		Short:         "Screen a lifestyle questionnaire for obesity risk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPredictCmd(), newFieldsCmd(), newInspectCmd(), newEventsCmd())
	return root
}

func newPredictCmd() *cobra.Command {
	var (
		artifacts artifactFlags
		strict    bool
		remote    string
		timeout   time.Duration
	)
	answers := make([]string, questionnaire.FieldCount)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the weight category for one set of answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw models.RawSubmission
			for _, f := range questionnaire.Fields() {
				raw.Set(f, answers[f])
			}

			if remote != "" {
				return predictRemote(cmd, httpclient.NewClient(remote, timeout), raw)
			}

			bundle, err := artifacts.load()
			if err != nil {
				return reportError(cmd, err.Error(), err)
			}
			svc := screening.NewService(bundle, screening.NewValidator(screening.WithStrictNumeric(strict)))
			assessment, err := svc.Assess(cmd.Context(), raw)
			if err != nil {
				return reportError(cmd, screening.UserMessage(err), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), assessment.Label)
			return nil
		},
	}
	artifacts.bind(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "reject non-numeric age, height or weight before translation")
	cmd.Flags().StringVar(&remote, "remote", "", "base URL of a running obesity-service; skips local artifacts")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout for --remote")
	for _, f := range questionnaire.Fields() {
		usage := "numeric answer"
		if f.Categorical() {
			usage = "one of: " + strings.Join(f.Vocabulary(), " | ")
		}
		cmd.Flags().StringVar(&answers[f], f.String(), "", usage)
	}
	return cmd
}

func predictRemote(cmd *cobra.Command, client *httpclient.Client, raw models.RawSubmission) error {
	assessment, err := client.Predict(cmd.Context(), raw)
	if err != nil {
		var apiErr *httpclient.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return reportError(cmd, apiErr.Message, err)
		}
		return reportError(cmd, err.Error(), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), assessment.Label)
	return nil
}

func newFieldsCmd() *cobra.Command {
	var (
		catalogPath string
		remote      string
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List questionnaire fields and their allowed answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			var form questionnaire.Form
			if remote != "" {
				remoteForm, err := httpclient.NewClient(remote, timeout).Questionnaire(cmd.Context())
				if err != nil {
					return reportError(cmd, err.Error(), err)
				}
				form = *remoteForm
			} else {
				catalog, err := questionnaire.LoadCatalog(catalogPath)
				if err != nil {
					return err
				}
				form = catalog.Form()
			}
			writeForm(cmd.OutOrStdout(), form)
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a questionnaire catalog (default: embedded)")
	cmd.Flags().StringVar(&remote, "remote", "", "base URL of a running obesity-service; lists the form it serves")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout for --remote")
	return cmd
}

func writeForm(out io.Writer, form questionnaire.Form) {
	for _, field := range form.Fields {
		fmt.Fprintf(out, "%-32s %-8s %s\n", field.Name, field.Kind, field.Label)
		for _, choice := range field.Choices {
			if choice == questionnaire.Placeholder {
				continue
			}
			fmt.Fprintf(out, "    - %s\n", choice)
		}
	}
}

// releaseLister is satisfied by serving.Repository.
type releaseLister interface {
	Recent(ctx context.Context, limit int) ([]serving.ModelRelease, error)
}

// openReleases connects to the release registry configured in the
// environment. The returned func closes the connection.
var openReleases = func(cfg *config.Config) (releaseLister, func(), error) {
	db, err := database.OpenPostgres(cfg)
	if err != nil {
		return nil, nil, err
	}
	return serving.NewRepository(db), func() { _ = database.ClosePostgres(db) }, nil
}

func newInspectCmd() *cobra.Command {
	var (
		artifacts artifactFlags
		releases  int
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the loaded model artifacts and their checksums",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := artifacts.load()
			if err != nil {
				return reportError(cmd, err.Error(), err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version:           %s\n", bundle.Version())
			fmt.Fprintf(out, "Algorithm:         %s\n", bundle.Model.Algorithm())
			fmt.Fprintf(out, "Trees:             %d\n", bundle.Model.TreeCount())
			fmt.Fprintf(out, "Model SHA256:      %s\n", bundle.Model.Checksum())
			fmt.Fprintf(out, "Encoders SHA256:   %s\n", bundle.Encoders.Checksum())
			fmt.Fprintf(out, "Features:          %s\n", strings.Join(bundle.Model.FeatureNames(), ", "))
			fmt.Fprintf(out, "Classes:           %s\n", strings.Join(bundle.Encoders.Target().Classes(), ", "))
			fmt.Fprintf(out, "Encoders:          %s\n", strings.Join(bundle.Encoders.Names(), ", "))

			if releases <= 0 {
				return nil
			}
			registry, closeRegistry, err := openReleases(config.Load())
			if err != nil {
				return reportError(cmd, err.Error(), err)
			}
			defer closeRegistry()
			rows, err := registry.Recent(cmd.Context(), releases)
			if err != nil {
				return reportError(cmd, err.Error(), err)
			}
			writeReleases(out, bundle.Version(), rows)
			return nil
		},
	}
	artifacts.bind(cmd)
	cmd.Flags().IntVar(&releases, "releases", 0, "also list this many recent releases from the registry")
	return cmd
}

// writeReleases lists rows newest first and marks those matching current.
func writeReleases(out io.Writer, current string, rows []serving.ModelRelease) {
	fmt.Fprintf(out, "Recent releases:   %d\n", len(rows))
	for _, r := range rows {
		marker := " "
		if r.Version == current {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s  %-28s %-14s %s\n", marker, r.LoadedAt.Format(time.RFC3339), r.Version, r.Algorithm, r.Host)
	}
}

// reportError prints msg for the user and returns err so the process exits
// non-zero.
func reportError(cmd *cobra.Command, msg string, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	return err
}
