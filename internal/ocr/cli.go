package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CLIEngine shells out to the tesseract binary.
type CLIEngine struct {
	// Path is the tesseract executable, looked up in $PATH when it has no
	// directory component.
	Path string
}

// NewCLIEngine returns an engine that runs the binary at path.
func NewCLIEngine(path string) *CLIEngine {
	if path == "" {
		path = "tesseract"
	}
	return &CLIEngine{Path: path}
}

// Name returns "cli".
func (e *CLIEngine) Name() string { return "cli" }

// HOCR runs "tesseract <image> <base> -l <lang> --psm N [-c k=v ...] hocr"
// in a scratch directory and returns the contents of <base>.hocr.
//
// Canceling ctx kills the process. Tesseract 3.x releases write <base>.html
// instead, which is read when no .hocr file exists.
//
// # Errors
//
//   - ErrEngineUnavailable when the executable cannot be found
//   - the context error when ctx ended before tesseract finished
//   - a failure carrying tesseract's stderr for a non-zero exit or missing output
func (e *CLIEngine) HOCR(ctx context.Context, imagePath string, opts Options) (string, error) {
	bin, err := exec.LookPath(e.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}

	ws, err := NewWorkspace("", "tesseract-cli")
	if err != nil {
		return "", err
	}
	defer ws.Close()

	base := ws.Path("out")
	cmd := exec.CommandContext(ctx, bin, e.args(imagePath, base, opts)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("tesseract interrupted: %w", ctxErr)
		}
		return "", fmt.Errorf("tesseract failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	// Tesseract 3.x wrote .html for the hocr config; newer releases write .hocr.
	for _, ext := range []string{".hocr", ".html"} {
		data, err := os.ReadFile(base + ext)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read tesseract output: %w", err)
		}
	}
	return "", fmt.Errorf("tesseract produced no hOCR output (stderr: %s)", strings.TrimSpace(stderr.String()))
}

func (e *CLIEngine) args(imagePath, base string, opts Options) []string {
	args := []string{
		imagePath, base,
		"-l", opts.language(),
		"--psm", strconv.Itoa(opts.PageSegMode),
	}
	keys := make([]string, 0, len(opts.Variables))
	for k := range opts.Variables {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		args = append(args, "-c", k+"="+opts.Variables[k])
	}
	return append(args, "hocr")
}

// Info runs "tesseract --version" and reports the first line.
func (e *CLIEngine) Info() Info {
	info := Info{Backend: "cli"}

	bin, err := exec.LookPath(e.Path)
	if err != nil {
		info.Error = err.Error()
		return info
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, bin, "--version").CombinedOutput()
	if err != nil {
		info.Error = fmt.Sprintf("%v: %s", err, strings.TrimSpace(string(out)))
		return info
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	info.Available = true
	info.Version = strings.TrimSpace(strings.TrimPrefix(line, "tesseract"))
	return info
}
