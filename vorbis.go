package soundextract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// VorbisRepackager converts a vendor Vorbis container at in into a standard
// Ogg Vorbis file at out.
type VorbisRepackager interface {
	Repackage(ctx context.Context, in, out string) error
}

// StreamRenumberer rewrites the granule positions of an Ogg file in place.
type StreamRenumberer interface {
	Renumber(ctx context.Context, path string) error
}

// Default tool names looked up in PATH.
const (
	ToolWW2Ogg = "ww2ogg"
	ToolRevorb = "revorb"
)

// ExecRepackager runs ww2ogg.
type ExecRepackager struct {
	Path string
	// Codebooks is an optional packed codebooks file passed as --pcb.
	Codebooks string
}

func (r *ExecRepackager) Repackage(ctx context.Context, in, out string) error {
	args := []string{in, "-o", out}
	if r.Codebooks != "" {
		args = append(args, "--pcb", r.Codebooks)
	}

	return runTool(ctx, r.Path, args...)
}

// ExecRenumberer runs revorb.
type ExecRenumberer struct {
	Path string
}

func (r *ExecRenumberer) Renumber(ctx context.Context, path string) error {
	return runTool(ctx, r.Path, path)
}

func runTool(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var out bytes.Buffer

	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", name, err)
		}

		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}

	return nil
}

// LookupTool resolves name, which may be a path or a bare command name.
func LookupTool(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoVorbisTool, err)
	}

	return p, nil
}

// NewExecTools looks up both Vorbis tools. Empty names fall back to the
// default tool names.
func NewExecTools(ww2ogg, revorb, codebooks string) (*ExecRepackager, *ExecRenumberer, error) {
	if ww2ogg == "" {
		ww2ogg = ToolWW2Ogg
	}

	if revorb == "" {
		revorb = ToolRevorb
	}

	repackPath, err := LookupTool(ww2ogg)
	if err != nil {
		return nil, nil, err
	}

	renumberPath, err := LookupTool(revorb)
	if err != nil {
		return nil, nil, err
	}

	return &ExecRepackager{Path: repackPath, Codebooks: codebooks}, &ExecRenumberer{Path: renumberPath}, nil
}
