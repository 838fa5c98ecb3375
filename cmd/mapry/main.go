// Package main provides the CLI entry point for mapry, a tool that
// generates object-graph type definitions, JSON parsers, and serializers
// for multiple target languages from a single schema document.
package main

import (
	"encoding/json"
	"fmt"
	"go/format"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
	"github.com/Parquery/mapry/gen/cppgen"
	"github.com/Parquery/mapry/gen/gogen"
	"github.com/Parquery/mapry/gen/pygen"
	ilog "github.com/Parquery/mapry/internal/log"
	"github.com/Parquery/mapry/schema"
	"github.com/Parquery/mapry/validate"
)

// Config holds CLI flag values for the mapry command.
type Config struct {
	Targets   []string
	OutDir    string
	CheckOnly bool
	LogLevel  string
	LogFormat string
	Go        *gogen.Config
	CPP       *cppgen.Config
}

// NewConfig returns a Config with sensible CLI defaults.
func NewConfig() *Config {
	return &Config{
		Targets:   []string{"go"},
		OutDir:    ".",
		LogLevel:  "info",
		LogFormat: "logfmt",
		Go:        gogen.NewConfig(),
		CPP:       cppgen.NewConfig(),
	}
}

// RegisterFlags adds the mapry command's flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringSliceVar(&c.Targets, "target", c.Targets,
		"comma-separated list of targets to generate (cpp, go, py)")
	flags.StringVar(&c.OutDir, "out", c.OutDir, "directory the generated files are written to")
	flags.BoolVar(&c.CheckOnly, "check", c.CheckOnly, "validate the schema without generating any code")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (logfmt, json)")

	c.Go.RegisterFlags(flags)
	c.CPP.RegisterFlags(flags)
}

func main() {
	cfg := NewConfig()

	rootCmd := &cobra.Command{
		Use:           "mapry [flags] <schema.yaml>",
		Short:         "Generate object-graph code from a mapry schema",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(cfg, args[0])
		},
	}

	cfg.RegisterFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *Config, schemaPath string) error {
	handler, err := ilog.CreateHandlerWithStrings(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}

	logger := slog.New(handler)

	jsonInstance, jsonData, err := decodeSchema(schemaPath)
	if err != nil {
		return err
	}

	if err := validateSchema(jsonInstance, schemaPath, logger); err != nil {
		return err
	}

	graph, err := schema.Load(jsonData)
	if err != nil {
		return fmt.Errorf("loading %s: %w", schemaPath, err)
	}

	logger.Info("schema valid", "graph", graph.Name, "classes", graph.Classes.Len(), "embeds", graph.Embeds.Len())

	if cfg.CheckOnly {
		return nil
	}

	for _, target := range cfg.Targets {
		if err := generateTarget(cfg, graph, strings.ToLower(strings.TrimSpace(target)), logger); err != nil {
			return err
		}
	}

	return nil
}

// decodeSchema reads a YAML or JSON schema document and decodes it into
// the generic any/map[string]any/[]any shape every validator and the
// loader expect. A JSON document is handed to the loader byte for byte,
// so its property order is kept. A YAML document is decoded into a
// generic map and re-encoded as JSON, which sorts object keys: the
// property order of a YAML schema is not preserved.
func decodeSchema(schemaPath string) (any, []byte, error) {
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading schema %s: %w", schemaPath, err)
	}

	jsonData := data
	if !json.Valid(data) {
		var instance any
		if err := yaml.Unmarshal(data, &instance); err != nil {
			return nil, nil, fmt.Errorf("parsing %s as YAML: %w", schemaPath, err)
		}

		jsonData, err = json.Marshal(instance)
		if err != nil {
			return nil, nil, fmt.Errorf("re-encoding %s: %w", schemaPath, err)
		}
	}

	var jsonInstance any
	if err := json.Unmarshal(jsonData, &jsonInstance); err != nil {
		return nil, nil, fmt.Errorf("re-decoding %s: %w", schemaPath, err)
	}

	return jsonInstance, jsonData, nil
}

func validateSchema(instance any, schemaPath string, logger *slog.Logger) error {
	structuralErrs, err := validate.Structural(instance, "#")
	if err != nil {
		return fmt.Errorf("structural validation of %s: %w", schemaPath, err)
	}

	if len(structuralErrs) > 0 {
		for _, e := range structuralErrs {
			logger.Error("structural validation failed", "ref", e.Ref, "message", e.Message)
		}

		return fmt.Errorf("%s failed structural validation with %d error(s)", schemaPath, len(structuralErrs))
	}

	semanticErrs := validate.Semantic(instance, "#")
	if len(semanticErrs) > 0 {
		for _, e := range semanticErrs {
			logger.Error("semantic validation failed", "ref", e.Ref, "message", e.Message)
		}

		return fmt.Errorf("%s failed semantic validation with %d error(s)", schemaPath, len(semanticErrs))
	}

	return nil
}

func generateTarget(cfg *Config, graph *mapry.Graph, target string, logger *slog.Logger) error {
	switch target {
	case "go":
		return generateGo(cfg, graph, logger)
	case "cpp":
		return generateCPP(cfg, graph, logger)
	case "py":
		return generatePy(cfg, graph, logger)
	default:
		return fmt.Errorf("%w: %q", gen.ErrUnknownTarget, target)
	}
}

// reportTargetErrors logs every §4.5 target-specific validation failure
// and, if any occurred, returns a summary error that aborts generation
// for that target.
func reportTargetErrors(target string, errs []*validate.TargetError, logger *slog.Logger) error {
	if len(errs) == 0 {
		return nil
	}

	for _, e := range errs {
		logger.Error("target validation failed", "target", target, "ref", e.Ref, "message", e.Message)
	}

	return fmt.Errorf("%s target failed validation with %d error(s)", target, len(errs))
}

func generateCPP(cfg *Config, graph *mapry.Graph, logger *slog.Logger) error {
	cfg.CPP.FromSettings(graph.CPP)

	if err := reportTargetErrors("cpp", cppgen.Validate(graph), logger); err != nil {
		return err
	}

	files, err := cppgen.Generate(graph, cfg.CPP)
	if err != nil {
		return fmt.Errorf("generating cpp code: %w", err)
	}

	outDir := cfg.OutDir

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	for name, src := range files {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(src), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}

		logger.Info("wrote generated file", "path", filepath.Join(outDir, name))
	}

	return nil
}

func generatePy(cfg *Config, graph *mapry.Graph, logger *slog.Logger) error {
	if err := reportTargetErrors("py", pygen.Validate(graph), logger); err != nil {
		return err
	}

	files, err := pygen.Generate(graph)
	if err != nil {
		return fmt.Errorf("generating py code: %w", err)
	}

	outDir := cfg.OutDir

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	for name, src := range files {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(src), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}

		logger.Info("wrote generated file", "path", filepath.Join(outDir, name))
	}

	return nil
}

func generateGo(cfg *Config, graph *mapry.Graph, logger *slog.Logger) error {
	if err := reportTargetErrors("go", gogen.Validate(graph), logger); err != nil {
		return err
	}

	files, err := gogen.Generate(graph, cfg.Go)
	if err != nil {
		return fmt.Errorf("generating go code: %w", err)
	}

	outDir := cfg.OutDir
	if graph.Go != nil && graph.Go.Package != "" {
		outDir = filepath.Join(cfg.OutDir, graph.Go.Package)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	for name, src := range files {
		if err := writeFormatted(outDir, name, src); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}

		logger.Info("wrote generated file", "path", filepath.Join(outDir, name))
	}

	return nil
}

// writeFormatted gofmt-formats generated Go source before writing it to
// disk. A formatting failure falls back to the raw source rather than
// aborting the whole run, so a bug in one emitter never blocks inspecting
// the rest of the output.
func writeFormatted(dir, name, src string) error {
	formatted, err := format.Source([]byte(src))
	if err != nil {
		formatted = []byte(src)
	}

	return os.WriteFile(filepath.Join(dir, name), formatted, 0o644)
}
