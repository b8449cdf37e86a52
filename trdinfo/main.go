package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/proio-org/go-proio"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/decibelcooper/infogen"
	"github.com/decibelcooper/infogen/calib"
	"github.com/decibelcooper/infogen/config"
	"github.com/decibelcooper/infogen/proioevt"
	"github.com/decibelcooper/infogen/stats"
)

var _ pflag.Value = (*infogen.FloatArrayFlags)(nil)

var (
	cfgFile  string
	radii    infogen.FloatArrayFlags
	mcFlag   bool
	collFlag bool
	statsOut string
	maxEvts  int
	doProf   bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "trdinfo [flags] <proio-input-files>...",
		Short: "Build TRD track info records and run statistics from proio files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "TOML configuration file")
	flags.VarP(&radii, "radii", "r", "ITS, TPC and TRD boundary radii in cm")
	flags.BoolVar(&mcFlag, "mc", false, "require simulation truth")
	flags.BoolVar(&collFlag, "collision", false, "collision data (vertex and DCA cuts)")
	flags.StringVarP(&statsOut, "stats", "o", "", "output path of the statistics histogram")
	flags.IntVarP(&maxEvts, "nevents", "n", 0, "stop after this many events per file (0 for all)")
	flags.BoolVar(&doProf, "profile", false, "write a CPU profile")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return nil, err
		}
	}

	geo, err := radii.Geometry(cfg.Geometry)
	if err != nil {
		return nil, err
	}
	cfg.Geometry = geo
	if cmd.Flags().Changed("mc") {
		cfg.Run.MC = mcFlag
	}
	if cmd.Flags().Changed("collision") {
		cfg.Run.Collision = collFlag
	}
	if statsOut != "" {
		cfg.Run.StatsPath = statsOut
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, args []string) error {
	if doProf {
		defer profile.Start().Stop()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	debug, err := config.NewDebugStream(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to open debug stream: %w", err)
	}
	defer debug.Sync()

	var db *calib.DB
	if cfg.Run.OCDB != "" {
		if db, err = calib.Open(cfg.Run.OCDB); err != nil {
			return err
		}
	}

	conv := proioevt.NewConverter(cfg.Input, cfg.Geometry)
	gen := infogen.New(cfg.Options(log.Named("infogen"), debug))
	runner := infogen.NewRunner(gen, db, log.Named("runner"))

	entry := 0
	for _, filename := range args {
		n, err := processFile(runner, conv, filename, entry, log)
		entry += n
		if err != nil {
			return err
		}
	}

	if err := gen.Stats().Save(cfg.Run.StatsPath); err != nil {
		return err
	}
	log.Info("done", zap.Int("events", entry), zap.String("stats", cfg.Run.StatsPath))
	return nil
}

// processFile runs every event of filename through the runner. Only
// bootstrap and I/O failures are returned; event failures are logged.
func processFile(runner *infogen.Runner, conv *proioevt.Converter, filename string, entry int, log *zap.Logger) (int, error) {
	reader, err := proio.Open(filename)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	log = log.With(zap.String("file", filename))
	n := 0
	for event := range reader.ScanEvents() {
		if maxEvts > 0 && n >= maxEvts {
			continue
		}
		out, err := runner.Process(conv.Convert(event, entry+n))
		n++
		switch {
		case errors.Is(err, infogen.ErrBootstrap):
			return n, err
		case err != nil:
			log.Error("event skipped", zap.Int("ev", entry+n-1), zap.Error(err))
			continue
		}
		if !out.Selected {
			continue
		}
		c := out.Counts
		log.Debug("event",
			zap.Int("ev", entry+n-1),
			zap.Int("barrel", c[stats.Barrel]+c[stats.BarrelMC]),
			zap.Int("sa", c[stats.SA]+c[stats.SAMC]),
			zap.Int("kink", c[stats.Kink]+c[stats.KinkMC]),
			zap.Int("trackErrors", len(out.Errors)),
		)
	}
	return n, nil
}
