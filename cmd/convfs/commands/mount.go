package commands

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"convfs/internal/config"
	"convfs/internal/navigator"
	"convfs/pkg/fusebridge"
)

var mountCmd = &cobra.Command{
	Use:   "mount [mountpoint]",
	Short: "Mount the conversation tree VFS as a read-only FUSE filesystem",
	Long: `Mount exposes the same directory tree the shell walks (cd, ls, cat)
as a real kernel-level filesystem, read-only, at the given mountpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: runMount,
}

func init() {
	rootCmd.AddCommand(mountCmd)
	mountCmd.Flags().Bool("fixture", false, "use an empty in-memory fixture repository instead of the SQLite store")
}

func runMount(cmd *cobra.Command, args []string) error {
	mountpoint := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fixture, _ := cmd.Flags().GetBool("fixture")
	r, closeRepo, err := openRepository(cfg, fixture)
	if err != nil {
		return err
	}
	defer closeRepo()

	debug := viper.GetBool("debug")
	nav := navigator.New(r, cfg.Cache.TTL)
	convFS := fusebridge.New(nav, r, debug)

	server, err := convFS.Mount(mountpoint)
	if err != nil {
		return fmt.Errorf("failed to mount filesystem: %w", err)
	}

	log.Printf("Mounted convfs at %s", mountpoint)
	log.Printf("Press Ctrl+C to unmount")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Printf("Unmounting filesystem...")
	if err := server.Unmount(); err != nil {
		return fmt.Errorf("failed to unmount: %w", err)
	}

	log.Printf("Filesystem unmounted successfully")
	return nil
}
