package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vibesync/internal/credentials"
	"github.com/desertthunder/vibesync/internal/navigation"
	"github.com/desertthunder/vibesync/internal/repositories"
	"github.com/desertthunder/vibesync/internal/rooms"
	"github.com/desertthunder/vibesync/internal/services"
	"github.com/desertthunder/vibesync/internal/session"
	"github.com/desertthunder/vibesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	opts        RunnerOpts
	config      *shared.Config
	configPath  string
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	db          *sql.DB
	store       *credentials.Store
	nav         *navigation.Memory
	api         *services.APIService
	gateway     *session.Gateway
	comparisons *repositories.ComparisonRepository
	machine     *rooms.Machine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB // comparison history and the sqlite slot backend; opened from config when nil
	Store      *credentials.Store
	Navigator  *navigation.Memory
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout()}
	}

	r := &Runner{opts: opts, db: opts.DB}
	r.wire()
	return r
}

// wire builds the session and room components, keeping any that were provided in opts.
func (r *Runner) wire() {
	opts := r.opts
	r.config = opts.Config
	r.configPath = opts.ConfigPath
	r.httpClient = opts.HTTPClient
	r.logger = opts.Logger
	r.output = opts.Output

	r.store = opts.Store
	if r.store == nil {
		r.store = credentials.NewStore(r.backend(), r.logger.WithPrefix("credentials"))
	}

	r.nav = opts.Navigator
	if r.nav == nil {
		nav, err := navigation.Parse(r.config.Session.EntryURL, "")
		if err != nil {
			r.logger.Warn("invalid entry url, using /", "url", r.config.Session.EntryURL, "error", err)
			nav = navigation.NewMemory(nil, nil)
		}
		r.nav = nav
	}

	r.api = opts.API
	if r.api == nil {
		r.api = services.NewAPIService(services.APIOpts{
			BaseURL:    r.config.API.BaseURL,
			HTTPClient: r.httpClient,
			Store:      r.store,
			Navigator:  r.nav,
			RateLimit:  r.config.API.RateLimit,
			Logger:     r.logger.WithPrefix("api"),
		})
	}

	detector, err := session.NewDetector(r.config.Session.Mode)
	if err != nil {
		r.logger.Warn("falling back to handoff mode", "error", err)
		detector = session.HandoffDetector{}
	}
	r.gateway = session.NewGateway(detector, r.api, r.store, r.nav, r.logger)

	machineOpts := rooms.MachineOpts{Logger: r.logger}
	if r.db != nil {
		r.comparisons = repositories.NewComparisonRepository(r.db)
		machineOpts.Recorder = r.comparisons
	}
	r.machine = rooms.NewMachine(r.api, machineOpts)
}

// backend selects the credential slot backend. A nil backend keeps the credential in memory.
func (r *Runner) backend() credentials.Backend {
	slot := r.config.Storage.Slot
	if r.config.Storage.Backend == shared.StorageBackendSQLite {
		if r.db == nil {
			r.logger.Warn("sqlite credential storage unavailable, keeping credential in memory")
			return nil
		}
		return credentials.NewSlotBackend(repositories.NewSlotRepository(r.db), slot)
	}

	dir, err := r.config.Storage.ExpandDir()
	if err != nil {
		r.logger.Warn("credential directory unavailable, keeping credential in memory", "error", err)
		return nil
	}
	return credentials.NewFileBackend(dir, slot)
}

// SetLogger replaces the logger and rebuilds the components that log.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.opts.Logger = logger
	r.opts.Navigator = r.nav
	r.wire()
}

// Before opens the history database when needed and applies global flags.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.db == nil && r.opts.DB == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			r.logger.Warn("history database unavailable", "path", r.config.Database.Path, "error", err)
			return ctx, nil
		}
		r.db = db
		r.wire()
	}
	return ctx, nil
}

// Close releases the database opened by [Runner.Before].
func (r *Runner) Close() error {
	if r.db == nil || r.db == r.opts.DB {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, roomCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// history returns the comparison repository or an error when the database could not be opened.
func (r *Runner) history() (*repositories.ComparisonRepository, error) {
	if r.comparisons == nil {
		return nil, fmt.Errorf("%w: history database %s could not be opened", shared.ErrServiceUnavailable, r.config.Database.Path)
	}
	return r.comparisons, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
