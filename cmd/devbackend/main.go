package main

import (
	"errors"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jask/coursedesk/internal/devbackend"
	"github.com/jask/coursedesk/internal/logging"
	"github.com/jask/coursedesk/internal/seed"
)

func main() {
	var (
		addr     string
		ttl      time.Duration
		noSeed   bool
		logLevel string
	)
	cmd := &cobra.Command{
		Use:          "devbackend",
		Short:        "In-memory course enrollment backend for local development",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			log, flush, err := logging.New(logging.Options{Level: logLevel, Path: "stderr", Format: "console"})
			if err != nil {
				return err
			}
			defer flush()

			secret := os.Getenv("COURSEDESK_AUTH_SECRET")
			if secret == "" {
				secret = "dev-secret"
				log.Warnw("COURSEDESK_AUTH_SECRET not set, signing with a fixed dev secret")
			}

			store := devbackend.NewStore()
			if !noSeed {
				s, err := seed.Seed(store, rand.New(rand.NewSource(time.Now().UnixNano())))
				if err != nil {
					return err
				}
				log.Infow("seeded", "teacher", s.Teacher.Username, "student", s.Student.Username,
					"password", seed.Password, "courses", len(s.Courses))
			}

			srv := devbackend.New(store, []byte(secret), ttl, log)
			log.Infow("listening", "addr", addr)
			if err := http.ListenAndServe(addr, srv.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&ttl, "token-ttl", 24*time.Hour, "credential lifetime")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "start with an empty store")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
