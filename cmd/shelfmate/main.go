// Command shelfmate is a personal book recommendation engine. Reads and
// reviews are logged to a local data directory; recommendations combine the
// reading history with a semantic search over past reviews.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/shelfmate/shelfmate/internal/config"
	"github.com/shelfmate/shelfmate/internal/db/sqlite"
	"github.com/shelfmate/shelfmate/internal/domain"
	logpkg "github.com/shelfmate/shelfmate/internal/logger"
	readsrepo "github.com/shelfmate/shelfmate/internal/repository/reads"
	reviewsrepo "github.com/shelfmate/shelfmate/internal/repository/reviews"
	sessionsrepo "github.com/shelfmate/shelfmate/internal/repository/sessions"
	"github.com/shelfmate/shelfmate/internal/transport/googlebooks"
	openaix "github.com/shelfmate/shelfmate/internal/transport/openai"
	"github.com/shelfmate/shelfmate/internal/transport/openlibrary"
	lookupuc "github.com/shelfmate/shelfmate/internal/usecase/lookup"
	readsuc "github.com/shelfmate/shelfmate/internal/usecase/reads"
	recommenduc "github.com/shelfmate/shelfmate/internal/usecase/recommend"
	"github.com/shelfmate/shelfmate/internal/version"
)

var (
	accent  = color.New(color.FgMagenta)
	emph    = color.New(color.Bold)
	dim     = color.New(color.Faint)
	errText = color.New(color.FgRed)
)

// app bundles everything a subcommand needs.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	db        *sql.DB
	reads     *readsuc.Service
	recommend *recommenduc.Service
	lookup    *lookupuc.Service
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "version":
		fmt.Printf("shelfmate %s (%s, %s)\n", version.Version, version.Commit, version.Date)
		return
	case "help", "-h", "--help":
		usage()
		return
	}

	a, cleanup, err := newApp(cmd == "serve")
	if err != nil {
		errText.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	switch cmd {
	case "log":
		err = a.cmdLog(args)
	case "list":
		err = a.cmdList(args)
	case "show":
		err = a.cmdShow(args)
	case "search":
		err = a.cmdSearch(args)
	case "recommend":
		err = a.cmdRecommend(args)
	case "sessions":
		err = a.cmdSessions(args)
	case "serve":
		err = a.cmdServe(args)
	default:
		errText.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		errText.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp is the composition root: config, logger, database, repositories,
// transports, usecase services. jsonLogs switches zap to production output
// for the serve subcommand.
func newApp(jsonLogs bool) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, nil, err
	}

	logger, err := logpkg.New(jsonLogs, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlite.Open(cfg.DatabasePath())
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	readRepo := readsrepo.New(db)
	sessionRepo := sessionsrepo.New(db)
	reviewRepo := reviewsrepo.New(db)

	// Embedding and generation are only wired when a credential exists.
	// Everything else works without one.
	var embedder domain.Embedder
	var generator domain.Generator
	if cfg.OpenAIAPIKey != "" {
		embedder = openaix.NewEmbedder(openaix.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.EmbeddingModel,
			Logger: logger,
		})
		generator = openaix.NewRecommender(openaix.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.Model,
			Logger: logger,
		})
	}

	lookupSvc := lookupuc.New(googlebooks.New(cfg.GoogleBooksAPIKey), openlibrary.New(), logger)
	readSvc := readsuc.New(readRepo, reviewRepo, lookupSvc, embedder, logger)
	recommendSvc := recommenduc.New(readRepo, sessionRepo, reviewRepo, embedder, generator, logger)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		reads:     readSvc,
		recommend: recommendSvc,
		lookup:    lookupSvc,
	}
	cleanup := func() {
		_ = db.Close()
		_ = logger.Sync()
	}
	return a, cleanup, nil
}

func usage() {
	fmt.Println("shelfmate: your personal book recommendation engine")
	fmt.Println()
	fmt.Println("Usage: shelfmate <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  log <book name>   Log a book you've read (or are reading)")
	fmt.Println("  list              Show your reading history")
	fmt.Println("  show <id>         Show details of a specific read")
	fmt.Println("  search <query>    Search for books via Google Books / Open Library")
	fmt.Println("  recommend         Get personalized recommendations")
	fmt.Println("  sessions          View past recommendation sessions")
	fmt.Println("  serve             Run the HTTP API server")
	fmt.Println("  version           Print version information")
}
