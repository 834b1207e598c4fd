package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jorgecardleitao/private-jets/internal/aircraft"
	"github.com/jorgecardleitao/private-jets/internal/common"
	"github.com/jorgecardleitao/private-jets/internal/db"
	"github.com/jorgecardleitao/private-jets/internal/db/repositories"
	"github.com/jorgecardleitao/private-jets/internal/etl"
	"github.com/jorgecardleitao/private-jets/internal/logging"
	"github.com/jorgecardleitao/private-jets/internal/ops"
	"github.com/jorgecardleitao/private-jets/internal/storage"
	"github.com/jorgecardleitao/private-jets/internal/trace"
)

// job is the surface every pipeline stage exposes to the command line.
type job interface {
	Run(ctx context.Context) error
	RunScheduled(ctx context.Context, interval time.Duration)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: etl <job> [flags]

Jobs:
  aircraft   snapshot the worldwide aircraft registry
  positions  fetch and decode month positions for the tracked fleet
  legs       segment stored positions into legs and publish the datasets

Run "etl <job> -h" for the job's flags.
`)
}

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// A missing .env is fine; all configuration has flag defaults.
	_ = godotenv.Load()

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}
	if err := logging.Init(appEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name := os.Args[1]

	flags := flag.NewFlagSet(name, flag.ExitOnError)
	var (
		accessKey = flags.String("access-key", os.Getenv("SPACES_ACCESS_KEY"),
			"object storage access key; grants write access")
		secretKey = flags.String("secret-access-key", os.Getenv("SPACES_SECRET_ACCESS_KEY"),
			"object storage secret key")
		endpoint = flags.String("endpoint", storage.DefaultEndpoint, "object storage endpoint")
		region   = flags.String("region", storage.DefaultRegion, "object storage region")
		bucket   = flags.String("bucket", storage.DefaultBucket, "object storage bucket")
		cacheDir = flags.String("cache-dir", "database", "local dataset directory")
		noRemote = flags.Bool("no-remote", false,
			"work only against the local dataset directory")
		from = flags.String("from", "2019-01", "first month to process (yyyy-mm)")
		to   = flags.String("to", time.Now().UTC().Format("2006-01"),
			"last month to process (yyyy-mm)")
		country = flags.String("country", "",
			"restrict the fleet to one country of registration")
		workers = flags.Int("workers", 10, "concurrent aircraft-months")
		rps     = flags.Float64("rate", 5, "max upstream requests per second")
		dsn     = flags.String("db", os.Getenv("DATABASE_URL"),
			"Postgres DSN for the relational mirror (optional)")
		redisAddr = flags.String("redis", os.Getenv("REDIS_ADDR"),
			"Redis address for the cross-instance run lock (optional)")
		opsAddr = flags.String("ops-addr", "",
			"serve /health, /status and /metrics on this address (optional)")
		every = flags.Duration("every", 0,
			"rerun the job on this interval instead of exiting")
		datasetURL = flags.String("dataset-url",
			"https://private-jets.fra1.digitaloceanspaces.com",
			"public base URL of the published datasets")
	)
	if err := flags.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	if (*accessKey == "") != (*secretKey == "") {
		log.Fatalf("Both --access-key and --secret-access-key are required for write access")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, *noRemote, storage.S3Config{
		Endpoint:  *endpoint,
		Region:    *region,
		Bucket:    *bucket,
		AccessKey: *accessKey,
		SecretKey: *secretKey,
	}, *cacheDir)

	var legRepo *repositories.LegRepository
	var aircraftRepo *repositories.AircraftRepository
	if *dsn != "" {
		if err := db.InitPostgres(*dsn); err != nil {
			log.Fatalf("Failed to connect to Postgres (sqlx): %v", err)
		}
		gormDB, err := db.InitPostgresORM(*dsn)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres (GORM): %v", err)
		}
		legRepo = repositories.NewLegRepository(gormDB)
		aircraftRepo = repositories.NewAircraftRepository(db.DB)
	}

	var guard etl.RunGuard
	if *redisAddr != "" {
		guard = common.NewRunLock(common.NewRedisClient(*redisAddr), 6*time.Hour)
	}

	tracker := ops.NewTracker()
	if *opsAddr != "" {
		server := ops.NewServer(*opsAddr, tracker, db.DB)
		go func() {
			if err := server.Serve(ctx); err != nil {
				logging.Error("Ops server failed", "error", err.Error())
			}
		}()
	}

	cache := common.NewCacheService(1800, 3600)
	registry := aircraft.NewRegistryService(store, cache)
	fleet := etl.NewFleet(store, registry, *country)

	var j job
	switch name {
	case "aircraft":
		client, err := aircraft.NewRegistryClient(*rps)
		if err != nil {
			log.Fatalf("Failed to build registry client: %v", err)
		}
		aj := etl.NewAircraftJob(store, client, aircraftRepo, tracker)
		aj.Guard = guard
		j = aj
	case "positions":
		fromMonth, toMonth := parseMonth(*from), parseMonth(*to)
		pj := etl.NewPositionsJob(store, trace.NewClient(*rps), fleet, fromMonth, toMonth, *workers, tracker)
		pj.Guard = guard
		j = pj
	case "legs":
		lj := etl.NewLegsJob(store, fleet, legRepo, *datasetURL, *workers, tracker)
		lj.Guard = guard
		j = lj
	default:
		usage()
		os.Exit(2)
	}

	logging.Info("Pipeline starting",
		"job", name,
		"environment", appEnv,
		"remote", !*noRemote,
	)

	if *every > 0 {
		j.RunScheduled(ctx, *every)
		return
	}
	if err := j.Run(ctx); err != nil {
		logging.Error("Job failed", "job", name, "error", err.Error())
		logging.Close()
		os.Exit(1)
	}
}

// openStore wires the two-tier dataset store: the shared object storage
// (unless --no-remote) over the local directory.
func openStore(ctx context.Context, noRemote bool, cfg storage.S3Config, cacheDir string) *storage.Store {
	var remote storage.Backend
	if !noRemote {
		s3, err := storage.NewS3(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		if s3.CanPut() {
			if err := s3.EnsureBucket(ctx); err != nil {
				log.Fatalf("Failed to ensure bucket: %v", err)
			}
		}
		remote = s3
	}
	return storage.NewStore(remote, storage.NewDisk(cacheDir))
}

func parseMonth(value string) time.Time {
	month, err := time.Parse("2006-01", value)
	if err != nil {
		log.Fatalf("Invalid month %q, want yyyy-mm: %v", value, err)
	}
	return month
}
