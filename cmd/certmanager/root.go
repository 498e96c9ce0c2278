package main

import (
	"context"
	"fmt"
	"io"

	"certmanager/internal/catalog"
	"certmanager/internal/config"
	"certmanager/internal/infra/db"
	"certmanager/internal/logging"
	"certmanager/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cli struct {
	v          *viper.Viper
	cfg        config.Config
	log        *logrus.Logger
	out        io.Writer
	configFile string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	app := &cli{v: config.NewViper(), out: out}

	root := &cobra.Command{
		Use:   "certmanager",
		Short: "Track CMMC Level 2 / NIST SP 800-171 control compliance",
		Long: `certmanager keeps the 110 CMMC Level 2 controls in a database, records
assessment findings and self-reported implementation status, and stores
notes and evidence files per control.`,
		SilenceUsage:      true,
		PersistentPreRunE: app.load,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "config file (default ./certmanager.yaml or /etc/certmanager/certmanager.yaml)")
	flags.String("database-url", "", "database URL, sqlite:///path or postgres://... (env DATABASE_URL)")
	flags.String("upload-dir", "", "evidence upload directory (env UPLOAD_DIR)")
	flags.String("log-level", "", "log level (env LOG_LEVEL)")
	flags.String("log-format", "", "log format, text or json (env LOG_FORMAT)")
	for key, name := range map[string]string{
		config.KeyDatabaseURL: "database-url",
		config.KeyUploadDir:   "upload-dir",
		config.KeyLogLevel:    "log-level",
		config.KeyLogFormat:   "log-format",
	} {
		_ = app.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		newServeCmd(app),
		newSeedCmd(app),
		newImportCmd(app),
		newOrphansCmd(app),
	)
	return root
}

func (a *cli) load(cmd *cobra.Command, args []string) error {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.log = logging.New(cfg.LogLevel, cfg.LogFormat)
	return nil
}

// openStore connects and migrates.
func (a *cli) openStore() (*db.Store, error) {
	store, err := db.NewStore(a.cfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return store, nil
}

func (a *cli) seed(ctx context.Context, store *db.Store) (int, error) {
	controls, err := catalog.Controls()
	if err != nil {
		return 0, err
	}
	svc := usecase.NewCatalogService(db.NewControlRepository(store.DB), a.log)
	return svc.Seed(ctx, controls)
}
