package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/tesseract-words/internal/config"
	"github.com/ironsheep/tesseract-words/internal/logging"
	"github.com/ironsheep/tesseract-words/internal/ocr"
	"github.com/ironsheep/tesseract-words/internal/reflow"
	"github.com/ironsheep/tesseract-words/internal/words"
)

// app carries the global flags and the state built from them before any
// subcommand runs.
type app struct {
	cfgFile    string
	envFile    string
	logLevel   string
	logFormat  string
	engine     string
	tesseract  string
	lang       string
	psm        int
	tessConfig string
	strict     bool
	lineFactor float64
	outDir     string

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tesseract-words",
		Short: "Word-level OCR with Tesseract hOCR and region text reflow",
		Long: `tesseract-words runs Tesseract in hOCR mode, turns the result into a table
of words with bounding boxes and confidences, and rebuilds the text of any
rectangle on the page, joining words on one line with spaces and starting a
new line when the boxes stop overlapping.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetVersionTemplate(versionText())

	f := root.PersistentFlags()
	f.StringVarP(&a.cfgFile, "config", "c", "", "YAML config file")
	f.StringVar(&a.envFile, "env-file", "", "dotenv file to load (default .env if present)")
	f.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	f.StringVar(&a.logFormat, "log-format", "", "log format: console or json")
	f.StringVar(&a.engine, "engine", "", "OCR backend: gosseract or cli")
	f.StringVar(&a.tesseract, "tesseract", "", "tesseract executable for the cli engine")
	f.StringVarP(&a.lang, "lang", "l", "", "Tesseract language(s), e.g. eng+deu")
	f.IntVar(&a.psm, "psm", 0, "page segmentation mode (0-13)")
	f.StringVar(&a.tessConfig, "tess-config", "", `extra tesseract options, e.g. "--psm 6 -c preserve_interword_spaces=1"`)
	f.BoolVar(&a.strict, "strict", false, "report reflow anomalies as errors")
	f.Float64Var(&a.lineFactor, "line-factor", 0, "same-line threshold multiplier (default 2)")
	f.StringVar(&a.outDir, "out-dir", "", "directory that receives <name>.hocr for every image")

	root.AddCommand(
		newWordsCmd(a),
		newTextCmd(a),
		newParseCmd(a),
		newOverlayCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and configures logging.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile, a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.OCR.Engine = a.engine
	}
	if flags.Changed("tesseract") {
		cfg.OCR.TesseractPath = a.tesseract
	}
	if flags.Changed("lang") {
		cfg.OCR.Language = a.lang
	}
	if flags.Changed("psm") {
		cfg.OCR.PageSegMode = a.psm
	}
	if flags.Changed("strict") {
		cfg.Reflow.Strict = a.strict
	}
	if flags.Changed("line-factor") {
		cfg.Reflow.LineFactor = a.lineFactor
	}
	if flags.Changed("out-dir") {
		cfg.Output.HOCRDir = a.outDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a.cfg = cfg
	a.logger = logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	a.logger.Debug().
		Str("engine", cfg.OCR.Engine).
		Str("lang", cfg.OCR.Language).
		Int("psm", cfg.OCR.PageSegMode).
		Float64("line_factor", cfg.Reflow.LineFactor).
		Bool("strict", cfg.Reflow.Strict).
		Msg("configuration loaded")
	return nil
}

// reflowOptions returns the configured reflow policy.
func (a *app) reflowOptions() reflow.Options {
	return reflow.Options{LineFactor: a.cfg.Reflow.LineFactor, Strict: a.cfg.Reflow.Strict}
}

// extractor builds an Extractor for the configured engine.
func (a *app) extractor() (*ocr.Extractor, error) {
	engine, err := ocr.NewEngine(a.cfg.OCR)
	if err != nil {
		return nil, err
	}

	opts := ocr.OptionsFromConfig(a.cfg.OCR)
	if a.tessConfig != "" {
		if opts, err = ocr.ParseConfigString(opts, a.tessConfig); err != nil {
			return nil, fmt.Errorf("--tess-config: %w", err)
		}
	}

	x := ocr.NewExtractor(engine)
	x.Options = opts
	x.HOCRDir = a.cfg.Output.HOCRDir
	x.Timeout = a.cfg.OCR.Timeout
	x.Reflow = a.reflowOptions()
	x.Logger = a.logger
	return x, nil
}

// writeTable prints t in the requested format, falling back to the
// configured one.
func (a *app) writeTable(cmd *cobra.Command, t words.Table, format string) error {
	if format == "" {
		format = a.cfg.Output.Format
	}
	switch strings.ToLower(format) {
	case "json":
		return words.WriteJSON(cmd.OutOrStdout(), t)
	case "tsv":
		return words.WriteTSV(cmd.OutOrStdout(), t)
	default:
		return fmt.Errorf("unknown format %q: want tsv or json", format)
	}
}
