package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/cohorthub/internal/config"
	"github.com/geocoder89/cohorthub/internal/observability"
	"github.com/geocoder89/cohorthub/internal/seed"
	"github.com/spf13/cobra"
)

const defaultSeedTimeout = 30 * time.Second

type seedConfig struct {
	cohortsFile  string
	studentsFile string
	timeout      time.Duration
}

func NewSeedCmd() *cobra.Command {
	sc := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load cohorts and students from JSON files",
		Long: `Upserts cohorts, then inserts students. Students whose email or phone
already exists are skipped, so the command can be re-run safely.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, sc)
		},
	}

	cmd.Flags().StringVar(&sc.cohortsFile, "cohorts", "", "cohorts JSON file")
	cmd.Flags().StringVar(&sc.studentsFile, "students", "", "students JSON file")
	cmd.Flags().DurationVar(&sc.timeout, "timeout", defaultSeedTimeout, "timeout for database operations")

	return cmd
}

func runSeed(cmd *cobra.Command, sc *seedConfig) error {
	if sc.cohortsFile == "" && sc.studentsFile == "" {
		return errors.New("nothing to seed: pass --cohorts and/or --students")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("seed needs STORE_DRIVER=postgres; use serve --seed-cohorts for the memory store")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), sc.timeout)
	defer cancel()

	log := observability.NewLogger(cfg.Env)

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := runSeedFiles(ctx, d, sc.cohortsFile, sc.studentsFile)
	if err != nil {
		return err
	}

	cmd.Printf("seeded %d cohorts, %d students (%d skipped)\n", res.Cohorts, res.Students, res.Skipped)
	return nil
}

func runSeedFiles(ctx context.Context, d *deps, cohortsFile, studentsFile string) (seed.Result, error) {
	var (
		cohorts  []seed.CohortRecord
		students []seed.StudentRecord
	)

	if cohortsFile != "" {
		f, err := openFile(cohortsFile)
		if err != nil {
			return seed.Result{}, err
		}
		defer f.Close()

		if cohorts, err = seed.DecodeCohorts(f); err != nil {
			return seed.Result{}, err
		}
	}

	if studentsFile != "" {
		f, err := openFile(studentsFile)
		if err != nil {
			return seed.Result{}, err
		}
		defer f.Close()

		if students, err = seed.DecodeStudents(f); err != nil {
			return seed.Result{}, err
		}
	}

	return d.seeder().Run(ctx, cohorts, students)
}
