package commands

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"convfs/internal/commands"
	"convfs/internal/config"
	"convfs/internal/dispatch"
	"convfs/internal/env"
	"convfs/internal/navigator"
	"convfs/internal/repl"
	"convfs/internal/repo"
	"convfs/internal/store"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive conversation shell",
	Long: `shell starts the POSIX-flavored REPL over the conversation VFS:
cd, ls, cat, grep, find, tree, paths and the tag/flag mutation commands,
piped together the usual shell way.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().Bool("fixture", false, "use an empty in-memory fixture repository instead of the SQLite store")
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	debug := viper.GetBool("debug")
	if debug {
		log.Printf("[shell] loaded config: cache.ttl=%s store.path=%s", cfg.Cache.TTL, cfg.Store.Path)
	}

	fixture, _ := cmd.Flags().GetBool("fixture")
	r, closeRepo, err := openRepository(cfg, fixture)
	if err != nil {
		return err
	}
	defer closeRepo()

	nav := navigator.New(r, cfg.Cache.TTL)

	environment := env.New()
	hc := &dispatch.HandlerContext{
		Ctx:  context.Background(),
		Nav:  nav,
		Repo: r,
		Env:  environment,
	}
	d := dispatch.New(hc)
	commands.Register(d)

	console := repl.New(d, environment, cfg.Shell.Prompt, os.Stdin, os.Stdout, os.Stderr)
	exitCode := console.Run(os.Stdin.Fd())
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

func openRepository(cfg *config.Config, fixture bool) (repo.Repository, func(), error) {
	if fixture {
		log.Printf("[shell] using in-memory fixture repository")
		return repo.NewMockRepository(), func() {}, nil
	}

	dbPath := cfg.Store.Path
	if db := viper.GetString("db"); db != "" {
		dbPath = db
	}
	if dbPath == "" {
		dbPath = config.DefaultStorePath()
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store at %s: %w", dbPath, err)
	}
	log.Printf("[store] opened %s", dbPath)
	return s, func() { s.Close() }, nil
}
