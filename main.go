// Package main provides the entry point for the QuizBuzz CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/quizbuzz/internal/audio"
	"github.com/dgnsrekt/quizbuzz/internal/cache"
	"github.com/dgnsrekt/quizbuzz/internal/catalog"
	"github.com/dgnsrekt/quizbuzz/internal/segment"
	"github.com/dgnsrekt/quizbuzz/internal/sequencer"
	"github.com/dgnsrekt/quizbuzz/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	style      string
	width      uint
	mouse      bool
	showIndex  bool
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "quizbuzz [CATEGORY]",
		Short: "Practice quizbowl buzzing in the terminal",
		Long: paragraph(
			fmt.Sprintf("\nListen to quizbowl questions and %s as soon as you know the answer.", keyword("buzz")),
		),
		Example:          paragraph("quizbuzz\nquizbuzz science"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		expanded, err := homedir.Expand(style)
		if err != nil {
			return fmt.Errorf("invalid style path: %w", err)
		}
		if _, err := os.Stat(expanded); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if _, err := os.Stat(configFile); err == nil {
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("unable to read config file: %w", err)
			}
		}
	}

	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	showIndex = viper.GetBool("show_index")

	if viper.GetBool("debug") {
		setLogLevel("debug")
	} else {
		setLogLevel(viper.GetString("log.level"))
	}

	if v := viper.GetFloat64("audio.volume"); v < 0 || v > 1 {
		return fmt.Errorf("audio.volume must be between 0.0 and 1.0, got %v", v)
	}
	if r := viper.GetInt("audio.sample_rate"); r != 44100 && r != 48000 {
		return fmt.Errorf("audio.sample_rate must be 44100 or 48000, got %d", r)
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") && width == 0 {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = uint(min(w, 100)) //nolint:gosec
		}
	}
	return nil
}

func execute(_ *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("quizbuzz needs an interactive terminal")
	}

	var category string
	if len(args) == 1 {
		category = args[0]
	}
	return runTUI(category)
}

func runTUI(category string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or auto if unset
	if err := validateStyle(cfg.GlamourStyle); err != nil || cfg.GlamourStyle == "" {
		cfg.GlamourStyle = style
	}
	cfg.StartCategory = category
	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.ShowIndex = cfg.ShowIndex || showIndex

	s, err := loadSettings()
	if err != nil {
		return err
	}

	segments, err := cache.NewManager(s.Cache, log.Default())
	if err != nil {
		// playback works without a cache, just slower
		log.Warn("segment cache unavailable", "dir", s.Cache.DiskPath, "error", err)
		segments = nil
	}

	opts := []segment.Option{segment.WithLogger(log.Default()), segment.WithHTTPClient(s.Catalog.Client)}
	if segments != nil {
		defer segments.Close() //nolint:errcheck
		opts = append(opts, segment.WithCache(segments))
	}
	store, err := segment.NewStore(s.Segments, opts...)
	if err != nil {
		return err
	}

	device, err := audio.NewOtoDevice(s.Audio)
	if err != nil {
		return fmt.Errorf("unable to open audio device: %w", err)
	}
	engine := audio.NewEngine(store, device, audio.WithLogger(log.Default()))
	defer engine.Close() //nolint:errcheck

	loader := func(ctx context.Context, notify func(sequencer.Snapshot)) (ui.Session, []catalog.Category, error) {
		cat, err := catalog.Load(ctx, s.Catalog, log.Default())
		if err != nil {
			return nil, nil, err
		}
		seq := sequencer.New(engine, store, cat,
			sequencer.WithLogger(log.Default()),
			sequencer.WithNotify(notify),
		)
		return seq, cat.Categories(), nil
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, loader).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	setDefaults()
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path for the answer")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap answers at width (set to 0 to fit the terminal)")
	rootCmd.Flags().BoolVarP(&showIndex, "show-index", "i", false, "show the question number while playing")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support")
	_ = rootCmd.Flags().MarkHidden("mouse")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug output to the log file")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("show_index", rootCmd.Flags().Lookup("show-index"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)

	rootCmd.AddCommand(configCmd, cacheCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "quizbuzz")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "quizbuzz")}, dirs...)
	}

	if c := os.Getenv("QUIZBUZZ_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("quizbuzz")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("quizbuzz")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	configFile = filepath.Join(dirs[0], "quizbuzz.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
