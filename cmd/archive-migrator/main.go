// The archive migrator allow us to migrate all the game archives saved on
// disk to a storage provider such as S3.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	"github.com/schollz/progressbar/v3"

	"github.com/mlx-launcher/mlx/bundles/games"
	"github.com/mlx-launcher/mlx/storage"
)

const (
	maxParallelUploads = 15
)

func main() {
	src, dst, db := setup()
	defer gz.Close(db)

	run(src, dst, db)
}

func run(src, dst storage.Bucket, db *gorm.DB) {
	started := time.Now()

	// Get the list of games whose archives live in the source bucket.
	gameList, err := getGamesToUpload(db)
	if err != nil {
		log.Panicln("Failed to get games:", err)
	}
	totalSize := len(gameList)

	// Channel to request archive uploads
	c := make(chan *games.Game, totalSize)

	// Channel to handle errors
	e := make(chan errorUploading, totalSize)

	log.Println("Processing game archives")
	for i := range gameList {
		c <- &gameList[i]
	}

	// Listen for exit signal from when all archives have been uploaded
	exit := make(chan struct{}, 1)

	// Begin parallel uploads and keep track of them using the progress bar.
	// It will send a single item to the exit channel once it finished.
	bar := newProgressBar(totalSize, exit)
	for i := 0; i < maxParallelUploads; i++ {
		go upload(c, e, src, dst, bar)
	}

	// Listen for Interrupt and Terminate signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	fails := make([]errorUploading, 0, totalSize)

	for {
		select {
		case failed := <-e:
			fails = append(fails, failed)
		case sig := <-sigs:
			log.Panicln("Signal received:", sig.String())
		case <-exit:
			log.Println("Game archives were migrated. Took:", time.Since(started).Seconds(), "seconds")
			if len(fails) > 0 {
				log.Printf("However, the following archives returned an error while uploading them:")
				for _, fail := range fails {
					log.Printf("Game [%s]: %s - Error: %s\n", *fail.Game.Name,
						*fail.Game.FileName, fail.Error)
				}
			}
			return
		}
	}
}

func setup() (storage.Bucket, storage.Bucket, *gorm.DB) {
	db, err := setupDB()
	if err != nil {
		log.Fatalln("Failed to set up to MySQL database conn:", err)
	}

	src, err := storage.NewDiskBucket(os.Getenv("MLX_RESOURCE_DIR"))
	if err != nil {
		log.Fatalln("Failed to open the source archive dir:", err)
	}

	dst := storage.NewS3Bucket(os.Getenv("AWS_S3_BUCKET"))
	return src, dst, db
}

func newProgressBar(size int, exit chan struct{}) *progressbar.ProgressBar {
	return progressbar.NewOptions(size,
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Uploading archives"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			exit <- struct{}{}
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func setupDB() (*gorm.DB, error) {
	// Initialize database
	cfg, err := gz.NewDatabaseConfigFromEnvVars()
	if err != nil {
		return nil, err
	}
	db, err := gz.InitDbWithCfg(&cfg)
	if err != nil {
		return nil, err
	}
	return db, err
}

type errorUploading struct {
	Error error
	Game  *games.Game
}

func getGamesToUpload(db *gorm.DB) (games.Games, error) {
	var list games.Games
	if err := db.Model(&games.Game{}).Where("file_name IS NOT NULL AND file_name != ''").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func upload(c chan *games.Game, e chan errorUploading, src, dst storage.Bucket,
	bar *progressbar.ProgressBar) {
	for !bar.IsFinished() {
		game := <-c
		if err := uploadArchive(context.Background(), src, dst, game); err != nil {
			e <- errorUploading{
				Error: err,
				Game:  game,
			}
		}
		_ = bar.Add(1)
	}
}

func uploadArchive(ctx context.Context, src, dst storage.Bucket, game *games.Game) error {
	f, _, err := src.Open(ctx, *game.FileName)
	if err != nil {
		log.Printf("Failed to open archive for %s: %s\n", *game.Name, err)
		return err
	}
	defer gz.Close(f)

	if err := dst.Store(ctx, f, *game.FileName); err != nil {
		log.Printf("Failed to upload archive for %s: %s\n", *game.Name, err)
		return err
	}
	return nil
}
