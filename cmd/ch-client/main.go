package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/TFMV/chdriver/backend/http"
	"github.com/TFMV/chdriver/driver"
	"github.com/TFMV/chdriver/driver/config"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type clientFlags struct {
	server   string
	scheme   string
	username string
	password string
	database string
	timeout  time.Duration
	verbose  bool
}

func main() {
	flags := &clientFlags{}

	rootCmd := &cobra.Command{
		Use:   "ch-client",
		Short: "Client for ClickHouse-compatible HTTP endpoints",
		Long: `ch-client connects to a ClickHouse-compatible HTTP endpoint and
executes SQL statements through the pooled-connection driver.

Examples:
  ch-client ping
  ch-client query "SELECT * FROM system.tables"
  ch-client --server ch.internal:8123 --user reader shell`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.server, "server", "localhost:8123", "server address (host:port)")
	rootCmd.PersistentFlags().StringVar(&flags.scheme, "scheme", "http", "connection scheme (http, https)")
	rootCmd.PersistentFlags().StringVar(&flags.username, "user", "", "username")
	rootCmd.PersistentFlags().StringVar(&flags.password, "password", "", "password (prompted when --user is set without it)")
	rootCmd.PersistentFlags().StringVar(&flags.database, "database", "default", "database name")
	rootCmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", config.DefaultTimeout, "per-statement timeout")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		createPingCommand(flags),
		createQueryCommand(flags),
		createShellCommand(flags),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(verbose bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("component", "ch-client").
		Logger()
}

// buildConfig resolves the connection config: file config first, then
// flag overrides
func buildConfig(flags *clientFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flags.server != "" {
		host, portStr, err := net.SplitHostPort(flags.server)
		if err != nil {
			return nil, fmt.Errorf("invalid --server value %q: %w", flags.server, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid --server port %q: %w", portStr, err)
		}
		cfg.Hostname = host
		cfg.Port = port
	}

	cfg.Scheme = flags.scheme
	cfg.Database = flags.database
	cfg.Timeout = flags.timeout

	if flags.username != "" {
		cfg.Username = flags.username
		cfg.Password = flags.password
		if cfg.Password == "" {
			password, err := promptPassword(flags.username)
			if err != nil {
				return nil, err
			}
			cfg.Password = password
		}
	}

	return cfg, cfg.Validate()
}

func promptPassword(username string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// connect builds the driver stack and establishes a verified connection
func connect(flags *clientFlags) (*driver.Conn, *driver.ConnState, error) {
	logger := setupLogger(flags.verbose)

	cfg, err := buildConfig(flags)
	if err != nil {
		return nil, nil, err
	}

	backendLogger := zap.NewNop()
	if flags.verbose {
		backendLogger, err = zap.NewDevelopment()
		if err != nil {
			return nil, nil, err
		}
	}

	conn, err := driver.New(&driver.Options{
		Backend: http.NewClient(&http.Options{Logger: backendLogger}),
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, err
	}

	state, err := conn.Connect(context.Background(), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.BaseURL(), err)
	}

	return conn, state, nil
}

func createPingCommand(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Verify the endpoint is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, state, err := connect(flags)
			if err != nil {
				return err
			}

			out := conn.Ping(context.Background(), state)
			if out.Directive != driver.DirectiveOK {
				return out.Err
			}

			pterm.Success.Printfln("%s is up", state.BaseURL)
			return nil
		},
	}
}

func createQueryCommand(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query [SQL]",
		Short: "Execute a SQL statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, state, err := connect(flags)
			if err != nil {
				return err
			}

			return runStatement(conn, state, args[0])
		},
	}
}

func createShellCommand(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive SQL shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, state, err := connect(flags)
			if err != nil {
				return err
			}

			return runShell(conn, state)
		},
	}
}

func runStatement(conn *driver.Conn, state *driver.ConnState, statement string) error {
	out := conn.Execute(context.Background(), driver.Query{Statement: statement}, driver.ExecutionParams{}, state)
	if out.Directive != driver.DirectiveOK {
		return out.Err
	}

	return displayResult(out.Result)
}

func displayResult(result *driver.ResultSet) error {
	if result == nil {
		fmt.Println("OK")
		return nil
	}

	if result.Command == driver.Updated {
		count := 0
		if result.RowCount == 1 && len(result.Rows[0]) == 1 {
			if n, ok := result.Rows[0][0].(int); ok {
				count = n
			}
		}
		pterm.Success.Printfln("OK, %d rows written", count)
		return nil
	}

	table := pterm.TableData{result.Columns}
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, val := range row {
			if val == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = fmt.Sprintf("%v", val)
			}
		}
		table = append(table, cells)
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
		return err
	}

	fmt.Printf("%d rows in set\n", result.RowCount)
	return nil
}

func runShell(conn *driver.Conn, state *driver.ConnState) error {
	fmt.Printf("Connected to %s\n", state.BaseURL)
	fmt.Println("Type 'exit' or 'quit' to leave")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("ch> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		}

		if err := runStatement(conn, state, line); err != nil {
			pterm.Error.Printfln("%v", err)
		}
	}

	return scanner.Err()
}
