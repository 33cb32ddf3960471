package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	infralogger "github.com/jonesrussell/north-cloud/films/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/films/internal/elasticsearch"
)

// ErrDeletionCancelled is returned when the user declines the delete prompt.
var ErrDeletionCancelled = errors.New("deletion cancelled by user")

func newIndexCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the films index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newIndexCreateCommand(a), newIndexDeleteCommand(a))
	return cmd
}

func newIndexCreateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create the films index with its mapping if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			index := a.cfg.Elasticsearch.Index
			created, err := client.EnsureIndex(cmd.Context(), index, elasticsearch.FilmsMapping())
			if err != nil {
				return fmt.Errorf("create index %s: %w", index, err)
			}

			if created {
				a.log.Info("Index created", infralogger.String("index", index))
			} else {
				a.log.Info("Index already exists", infralogger.String("index", index))
			}
			return nil
		},
	}
}

func newIndexDeleteCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the films index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index := a.cfg.Elasticsearch.Index

			interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
			if err := confirmDeletion(cmd.InOrStdin(), cmd.OutOrStdout(), index, force || !interactive); err != nil {
				return err
			}

			client, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			err = client.DeleteIndex(cmd.Context(), index)
			switch {
			case errors.Is(err, elasticsearch.ErrIndexNotFound):
				a.log.Warn("Index does not exist", infralogger.String("index", index))
				return nil
			case err != nil:
				return fmt.Errorf("delete index %s: %w", index, err)
			}

			a.log.Info("Index deleted", infralogger.String("index", index))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without confirmation")
	return cmd
}

// confirmDeletion prompts on out and reads the answer from in. skip bypasses the prompt.
func confirmDeletion(in io.Reader, out io.Writer, index string, skip bool) error {
	if skip {
		return nil
	}

	if _, err := fmt.Fprintf(out, "Index %q will be deleted. Are you sure you want to continue? (y/N): ", index); err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}

	var response string
	if _, err := fmt.Fscanln(in, &response); err != nil {
		if errors.Is(err, io.EOF) || response == "" {
			return ErrDeletionCancelled
		}
		return fmt.Errorf("failed to read user input: %w", err)
	}

	if !strings.EqualFold(response, "y") {
		return ErrDeletionCancelled
	}
	return nil
}
