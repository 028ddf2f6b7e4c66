package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/pauta/pkg/browse"
	"github.com/coolbeans/pauta/pkg/document"
	"github.com/coolbeans/pauta/pkg/navindex"
)

var version = "0.1.0"

// Shared flags
var (
	configPath string
	debugMode  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pauta",
		Short: "Fiscal classification table browser engine",
		Long: `Pauta renders fiscal classification payloads into navigable,
anchor-addressable documents.

It takes search payloads (chapters, positions, or pre-rendered markup)
and produces:
  - Structured markup with stable anchor ids per position and chapter
  - Cross-reference links for code and note mentions
  - A flattened navigation index resolvable by code, query or anchor
  - Deterministic anchor scroll resolution against the rendered view`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(indexCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*zap.SugaredLogger, error) {
	if debugMode {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		return logger.Sugar(), nil
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// loadPayload reads a payload file, JSON by default, YAML by extension.
func loadPayload(path string) (document.Payload, error) {
	var payload document.Payload
	raw, err := os.ReadFile(path)
	if err != nil {
		return payload, fmt.Errorf("reading payload: %w", err)
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		if err := yaml.Unmarshal(raw, &payload); err != nil {
			return payload, fmt.Errorf("parsing payload %s: %w", path, err)
		}
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("parsing payload %s: %w", path, err)
	}
	return payload, nil
}

// cliEvents prints engine signals when debugging.
type cliEvents struct {
	log *zap.SugaredLogger

	settledOffset int
	settledOnce   bool
	activeAnchor  string
}

func (events *cliEvents) ContentReady(viewID string) {
	events.log.Debugw("content ready", "view", viewID)
}

func (events *cliEvents) ScrollSettled(viewID string, offset int) {
	events.settledOffset = offset
	events.settledOnce = true
	events.log.Debugw("scroll settled", "view", viewID, "offset", offset)
}

func (events *cliEvents) ActiveAnchor(anchorID string) {
	events.activeAnchor = anchorID
	events.log.Debugw("active anchor", "anchor", anchorID)
}

func renderCmd() *cobra.Command {
	var payloadPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a payload to final markup",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			config, err := browse.LoadConfig(configPath)
			if err != nil {
				return err
			}
			payload, err := loadPayload(payloadPath)
			if err != nil {
				return err
			}

			engine, err := browse.NewEngine(config, &cliEvents{log: log}, log)
			if err != nil {
				return err
			}
			engine.ShowPayload(payload)
			engine.Scheduler().Run()

			markup, err := engine.View().Document().Html()
			if err != nil {
				return fmt.Errorf("serializing rendered markup: %w", err)
			}
			if outputPath == "" {
				fmt.Println(markup)
				return nil
			}
			if err := os.WriteFile(outputPath, []byte(markup), 0644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			fmt.Printf("Rendered markup written to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadPath, "payload", "", "Payload file (JSON or YAML)")
	cmd.Flags().StringVar(&outputPath, "output", "", "Output file (default stdout)")
	cmd.MarkFlagRequired("payload")
	return cmd
}

func resolveCmd() *cobra.Command {
	var payloadPath string
	var query string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a query's anchor against the rendered payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			config, err := browse.LoadConfig(configPath)
			if err != nil {
				return err
			}
			payload, err := loadPayload(payloadPath)
			if err != nil {
				return err
			}
			if query != "" {
				payload.Query = query
			}

			events := &cliEvents{log: log}
			engine, err := browse.NewEngine(config, events, log)
			if err != nil {
				return err
			}
			engine.ShowPayload(payload)
			engine.Scheduler().Run()

			if !events.settledOnce {
				return fmt.Errorf("query %q did not resolve to any anchor", payload.Query)
			}
			fmt.Printf("Query:   %s\n", payload.Query)
			fmt.Printf("Anchor:  %s\n", events.activeAnchor)
			fmt.Printf("Offset:  %d\n", events.settledOffset)
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadPath, "payload", "", "Payload file (JSON or YAML)")
	cmd.Flags().StringVar(&query, "query", "", "Override the payload query")
	cmd.MarkFlagRequired("payload")
	return cmd
}

func indexCmd() *cobra.Command {
	var payloadPath string
	var query string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Print the flattened navigation index",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := browse.LoadConfig(configPath)
			if err != nil {
				return err
			}
			kind, err := config.Kind()
			if err != nil {
				return err
			}
			payload, err := loadPayload(payloadPath)
			if err != nil {
				return err
			}

			index := navindex.Build(payload.Chapters, kind)
			if index.Len() == 0 {
				fmt.Println("Index is empty")
				return nil
			}

			selected := -1
			if query != "" {
				row, ok := index.ResolveQuery(query)
				if !ok {
					return fmt.Errorf("query %q matches no index entry", query)
				}
				selected = row
			}

			for row := 0; row < index.Len(); row++ {
				entry := index.At(row)
				marker := "  "
				if row == selected {
					marker = "> "
				}
				if entry.Kind == navindex.EntryHeader {
					fmt.Printf("%s%s (%d)\n", marker, entry.Label(), entry.Count)
					continue
				}
				fmt.Printf("%s  %s  [%s]\n", marker, entry.Label(), entry.AnchorID())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadPath, "payload", "", "Payload file (JSON or YAML)")
	cmd.Flags().StringVar(&query, "query", "", "Highlight the entry this query resolves to")
	cmd.MarkFlagRequired("payload")
	return cmd
}
