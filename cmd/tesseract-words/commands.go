package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/tesseract-words/internal/hocr"
	"github.com/ironsheep/tesseract-words/internal/imaging"
	"github.com/ironsheep/tesseract-words/internal/server"
	"github.com/ironsheep/tesseract-words/internal/words"
)

func newWordsCmd(a *app) *cobra.Command {
	var (
		format string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "words <image>",
		Short: "Print every recognized word with its bounding box and confidence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := a.extractor()
			if err != nil {
				return err
			}
			table, err := x.WordsFromFile(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			return a.writeTable(cmd, table, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: tsv or json (default from config)")
	cmd.Flags().StringVar(&name, "name", "", "base name of the saved hOCR file (default: image name)")
	return cmd
}

func newTextCmd(a *app) *cobra.Command {
	var (
		region string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "text <image>",
		Short: "Print the text of the words inside a region",
		Long: `Print the text of the words whose centers fall inside --region. Words on
the same line are joined with a space; a new line starts when two
consecutive boxes overlap too little vertically (see --line-factor).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rect, err := words.ParseRect(region)
			if err != nil {
				return err
			}
			x, err := a.extractor()
			if err != nil {
				return err
			}
			text, err := x.RegionTextFromFile(cmd.Context(), args[0], name, rect)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVarP(&region, "region", "r", "", "region as x,y,w,h (required)")
	cmd.Flags().StringVar(&name, "name", "", "base name of the saved hOCR file (default: image name)")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func newParseCmd(a *app) *cobra.Command {
	var (
		format string
		region string
	)
	cmd := &cobra.Command{
		Use:   "parse <file.hocr|->",
		Short: "Parse a saved hOCR document without running OCR",
		Long: `Parse a saved hOCR document ("-" reads stdin) and print the word table,
or with --region the reflowed text of that region.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				table words.Table
				err   error
			)
			if args[0] == "-" {
				table, err = hocr.Parse(cmd.InOrStdin())
			} else {
				table, err = hocr.ParseFile(args[0])
			}
			if err != nil {
				return err
			}
			a.logger.Debug().Str("source", args[0]).Int("words", len(table)).Msg("parsed hOCR")

			if region == "" {
				return a.writeTable(cmd, table, format)
			}
			rect, err := words.ParseRect(region)
			if err != nil {
				return err
			}
			text, err := a.reflowOptions().Apply(table, rect)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: tsv or json (default from config)")
	cmd.Flags().StringVarP(&region, "region", "r", "", "print the text of region x,y,w,h instead of the table")
	return cmd
}

func newOverlayCmd(a *app) *cobra.Command {
	var (
		region string
		out    string
		name   string
		labels bool
		crop   bool
		scale  float64
	)
	cmd := &cobra.Command{
		Use:   "overlay <image>",
		Short: "Draw the recognized word boxes and the region over the image",
		Long: `Draw every recognized word box over the image: words whose centers fall
inside --region in green, the others in red, and the region in blue. The
region text is printed to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rect, err := words.ParseRect(region)
			if err != nil {
				return err
			}
			x, err := a.extractor()
			if err != nil {
				return err
			}

			img, err := imaging.NewImageCache().Load(args[0])
			if err != nil {
				return err
			}
			table, err := x.WordsFromFile(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}

			opts := imaging.DefaultOverlayOptions()
			opts.Labels = labels
			ov, err := imaging.Overlay(img, table, rect, opts)
			if err != nil {
				return err
			}

			var result image.Image = ov.Image
			if crop {
				c, err := imaging.CropRect(ov.Image, rect, scale)
				if err != nil {
					return err
				}
				result = c.Image
			}
			if err := imaging.SaveOverlay(out, result); err != nil {
				return err
			}
			a.logger.Info().
				Str("out", out).
				Int("accepted", ov.Accepted).
				Int("rejected", ov.Rejected).
				Msg("overlay written")

			text, err := x.Reflow.Apply(table, rect)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVarP(&region, "region", "r", "", "region as x,y,w,h (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "overlay.png", "output image (.png, .jpg or .bmp)")
	cmd.Flags().StringVar(&name, "name", "", "base name of the saved hOCR file (default: image name)")
	cmd.Flags().BoolVar(&labels, "labels", false, "label each box with its word index")
	cmd.Flags().BoolVar(&crop, "crop", false, "write only the region")
	cmd.Flags().Float64Var(&scale, "scale", 1.0, "scale factor for --crop")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run the MCP (Model Context Protocol) server. Requests are read from stdin
and responses written to stdout, one JSON-RPC message per line; logs go to
stderr. Configure it in your MCP client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := a.extractor()
			if err != nil {
				return err
			}
			if info := x.Engine.Info(); !info.Available {
				a.logger.Warn().Str("engine", x.Engine.Name()).Str("error", info.Error).Msg("OCR engine unavailable, only hocr_* tools will work")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(x, a.logger)
			srv.Version = Version
			if err := srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && err != context.Canceled {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}

func versionText() string {
	return fmt.Sprintf("tesseract-words %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No configuration is needed to print the version.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), versionText())
			return err
		},
	}
}
