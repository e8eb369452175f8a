//go:build cgo

package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amora-app/media-pipeline/internal/domain"
)

func newUploadCommand(c *cli) *cobra.Command {
	var (
		uploadContext string
		ownerID       int64
		voice         bool
		duration      float64
		contentType   string
	)

	cmd := &cobra.Command{
		Use:   "upload [file]",
		Short: "Process and store a local file",
		Long:  "Run a local file through the media pipeline and print the stored renditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ownerID <= 0 {
				return fmt.Errorf("--owner must be a positive integer")
			}

			data, err := c.adaptersFS().ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			options := domain.Options{}
			if voice {
				options[domain.OptionIsVoiceMessage] = true
			}
			if cmd.Flags().Changed("duration") {
				options[domain.OptionDurationHint] = strconv.FormatFloat(duration, 'f', -1, 64)
			}

			proc, err := c.newProcessor(cmd.Context())
			if err != nil {
				return err
			}

			result, err := proc.Process(cmd.Context(), &domain.UploadRequest{
				OwnerID:  ownerID,
				Context:  uploadContext,
				Body:     bytes.NewReader(data),
				MimeType: contentType,
				Size:     int64(len(data)),
				Filename: filepath.Base(args[0]),
				Options:  options,
			})
			if err != nil {
				return err
			}
			return c.print(result)
		},
	}

	cmd.Flags().StringVar(&uploadContext, "context", "uploads", "Upload context, e.g. profile or chat")
	cmd.Flags().Int64Var(&ownerID, "owner", 0, "Owning user id")
	cmd.Flags().BoolVar(&voice, "voice", false, "Treat audio as a voice message")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Duration hint in seconds")
	cmd.Flags().StringVar(&contentType, "type", "", "Declared content type; detected from content when empty")

	return cmd
}

func newDeleteCommand(c *cli) *cobra.Command {
	var urls []string

	cmd := &cobra.Command{
		Use:   "delete [key...]",
		Short: "Delete stored media",
		Long:  "Delete the given storage keys and public URLs and print which were deleted, missing or failed",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(urls) == 0 {
				return fmt.Errorf("requires at least one key or --url")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cleaner, err := c.newCleaner(cmd.Context())
			if err != nil {
				return err
			}

			targets := append([]string{}, args...)
			for _, rawURL := range urls {
				targets = append(targets, cleaner.KeyFromURL(rawURL))
			}

			result, err := cleaner.Delete(cmd.Context(), targets)
			if printErr := c.print(result); printErr != nil {
				return printErr
			}
			return err
		},
	}

	cmd.Flags().StringArrayVar(&urls, "url", nil, "Public URL of an object to delete; repeatable")

	return cmd
}

func newToolsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Report transcoder tool availability",
		Long:  "Resolve ffmpeg and ffprobe from the configured paths and print where they were found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := c.newTranscoder().Tools()
			if err != nil {
				return err
			}
			return c.print(tools)
		},
	}
}
