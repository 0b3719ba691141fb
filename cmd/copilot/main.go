package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Handit-AI/invoice-copilot/internal/agent"
	"github.com/Handit-AI/invoice-copilot/internal/client"
	"github.com/Handit-AI/invoice-copilot/internal/config"
	"github.com/Handit-AI/invoice-copilot/internal/docs"
	"github.com/Handit-AI/invoice-copilot/internal/logging"
	"github.com/Handit-AI/invoice-copilot/internal/pinecone"
	"github.com/Handit-AI/invoice-copilot/internal/server"
	"github.com/Handit-AI/invoice-copilot/internal/tools"
	"github.com/Handit-AI/invoice-copilot/internal/workspace"

	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0"
	cfgFile   string
	model     string
	workspDir string
	addr      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "copilot",
		Short: "Agent backend for invoice analysis and report generation",
		Long: `Invoice Copilot answers questions about processed invoices and generates
report files from them. It drives an iterative agent loop: a language model
picks tools (semantic search, file operations, report generation) one at a
time until the request is satisfied.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/invoice-copilot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model to use (default from config)")
	rootCmd.PersistentFlags().StringVar(&workspDir, "workspace", "", "workspace root directory")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8000)")
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "chat [message]",
		Short: "Run a single request from the command line",
		Args:  cobra.ExactArgs(1),
		RunE:  runChat,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("copilot version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired components behind the commands.
type app struct {
	cfg      *config.Config
	llm      client.Client
	store    *docs.Store
	loop     *agent.Loop
	searcher *pinecone.Client
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Version = version
	if model != "" {
		cfg.Model.Name = model
	}
	if workspDir != "" {
		cfg.Workspace.Root = workspDir
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.File != "" {
		if err := logging.EnableFileLogging(cfg.Logging.File, level); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
	} else {
		logging.SetLevel(level)
	}

	llm, err := client.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	ws, err := workspace.New(cfg.Workspace.Root)
	if err != nil {
		return nil, err
	}

	store, err := docs.NewStore(filepath.Join(ws.Root(), cfg.Workspace.ProcessedDir))
	if err != nil {
		return nil, err
	}

	searcher := pinecone.New(pinecone.Config{
		APIKey:    cfg.Pinecone.APIKey,
		IndexHost: cfg.Pinecone.IndexHost,
		IndexName: cfg.Pinecone.IndexName,
		Namespace: cfg.Pinecone.Namespace,
	})

	registry, err := tools.DefaultRegistry(tools.Deps{
		LLM:       llm,
		Documents: store,
		Workspace: ws,
		Searcher:  searcher,
	})
	if err != nil {
		return nil, err
	}

	engine := agent.NewEngine(llm, registry)
	loop := agent.NewLoop(engine, registry, cfg.Agent.IterationTimeout)

	return &app{cfg: cfg, llm: llm, store: store, loop: loop, searcher: searcher}, nil
}

func (a *app) close() {
	a.store.Close()
	a.llm.Close()
	logging.Close()
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	srv := server.New(a.cfg, a.loop, a.searcher)
	return srv.ListenAndServe(ctx)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	outcome := a.loop.Run(ctx, agent.Request{
		Message:         args[0],
		MaxIterations:   a.cfg.Agent.MaxIterations,
		EnableDynamicUI: a.cfg.Agent.EnableDynamicUI,
	})

	fmt.Println(outcome.Response)
	if !outcome.Success {
		os.Exit(1)
	}
	return nil
}
