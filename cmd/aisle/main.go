package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aisle-dev/aisle/internal/chat"
	"github.com/aisle-dev/aisle/internal/config"
	"github.com/aisle-dev/aisle/internal/llm"
	"github.com/aisle-dev/aisle/internal/logging"
	aislemcp "github.com/aisle-dev/aisle/internal/mcp"
	"github.com/aisle-dev/aisle/internal/sanitize"
	"github.com/aisle-dev/aisle/internal/server"
	"github.com/aisle-dev/aisle/internal/store"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := runMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "sanitize":
		if err := runSanitize(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "config":
		if err := runConfig(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Printf("aisle %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

type cliFlags struct {
	configPath string
	dbPath     string
	listen     string
	llmFlag    string
	logLevel   string
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			i++
			if i >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			return args[i], nil
		}

		var err error
		switch arg {
		case "--config":
			f.configPath, err = next()
		case "--db":
			f.dbPath, err = next()
		case "--listen":
			f.listen, err = next()
		case "--llm":
			f.llmFlag, err = next()
		case "--log-level":
			f.logLevel, err = next()
		default:
			return f, fmt.Errorf("unknown flag: %s", arg)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func resolve(f cliFlags) (config.ResolvedConfig, error) {
	return config.ResolveConfig(config.ResolveOptions{
		ConfigPath: f.configPath,
		CLILLM:     f.llmFlag,
		CLIDBPath:  f.dbPath,
		CLIListen:  f.listen,
	})
}

func openStore(resolved config.ResolvedConfig) (*store.Store, error) {
	dbPath := resolved.DBPath.Value
	if dbPath == "" {
		dbPath = store.DefaultDBPath
	}
	return store.Open(store.Config{DBPath: dbPath})
}

func buildProvider(resolved config.ResolvedConfig) (llm.Provider, error) {
	effective := resolved.EffectiveLLM("openai/gpt-4o-mini")
	cfg, err := llm.ParseLLMFlag(effective.Value)
	if err != nil {
		return nil, err
	}
	if key := resolved.APIKeyForProvider(cfg.Provider); key.Value != "" {
		cfg.APIKey = key.Value
	}
	return llm.NewProvider(cfg)
}

func runServe(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	resolved, err := resolve(f)
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{Level: f.logLevel, Service: "aisle"})

	st, err := openStore(resolved)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	provider, err := buildProvider(resolved)
	if err != nil {
		return err
	}
	log.Info("llm provider ready", "provider", provider.Name())

	srvCfg := server.Config{ListenAddr: resolved.ListenAddr.Value}
	if origins := strings.TrimSpace(resolved.CORSOrigins.Value); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				srvCfg.CORSOrigins = append(srvCfg.CORSOrigins, o)
			}
		}
	}
	if v := resolved.RateLimit.Value; v != "" {
		fmt.Sscanf(v, "%d", &srvCfg.RateLimit)
	}
	if v := resolved.RateWindow.Value; v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			srvCfg.RateWindow = d
		}
	}
	if v := resolved.SessionTTL.Value; v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			srvCfg.SessionTTL = d
		}
	}

	chatSvc := chat.NewService(st, provider, log)
	srv := server.New(srvCfg, st, chatSvc, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func runMCP(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	resolved, err := resolve(f)
	if err != nil {
		return err
	}

	st, err := openStore(resolved)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	srv := aislemcp.NewServer(aislemcp.ServerConfig{Store: st, Version: version})
	return aislemcp.ServeStdio(srv)
}

// runSanitize runs the pipeline on a file or stdin and prints the result.
// Useful for eyeballing what a given payload turns into.
func runSanitize(args []string) error {
	var path string
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return fmt.Errorf("unknown flag: %s", arg)
		}
		path = arg
	}

	var raw []byte
	var err error
	if path == "" || path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}

	res := sanitize.Sanitize(string(raw))

	out := map[string]any{
		"profile":      res.Profile,
		"vendors":      res.Vendors,
		"budget_items": res.BudgetItems,
		"tasks":        res.Tasks,
		"warnings":     res.Warnings,
	}
	if res.ParseError != "" {
		out["parse_error"] = res.ParseError
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runConfig(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	resolved, err := resolve(f)
	if err != nil {
		return err
	}

	// keys are secrets, show sources only
	redacted := resolved
	redacted.LLMKeys = map[string]config.ResolvedValue{}
	for provider, key := range resolved.LLMKeys {
		redacted.LLMKeys[provider] = config.ResolvedValue{Value: "(set)", Source: key.Source, From: key.From}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(redacted)
}

func printUsage() {
	fmt.Println(`aisle - wedding planning assistant

Usage:
  aisle serve [--config path] [--db path] [--listen addr] [--llm provider/model] [--log-level level]
  aisle mcp [--config path] [--db path]
  aisle sanitize [file|-]
  aisle config [--config path]
  aisle version

Commands:
  serve     Start the HTTP API server
  mcp       Serve planner tools over the Model Context Protocol (stdio)
  sanitize  Run a raw payload through the sanitization pipeline and print the result
  config    Print the resolved configuration and where each value came from
  version   Print the version`)
}
