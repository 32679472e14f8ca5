package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"picboard/pkg/cache"
	"picboard/pkg/config"
	"picboard/pkg/database"
	"picboard/pkg/logger"
	"picboard/pkg/s3"
	"picboard/pkg/upload"
	submissionCache "picboard/services/submission/internal/repo/cache"
	"picboard/services/submission/internal/repo/persistent"
	"picboard/services/submission/internal/usecase"
)

const cataasURL = "https://cataas.com/cat"

func main() {
	var (
		count     int
		perSubmit int
		source    string
	)
	flag.IntVar(&count, "count", 5, "number of submissions to create")
	flag.IntVar(&perSubmit, "images", 2, "multiple images per submission")
	flag.StringVar(&source, "source", cataasURL, "URL returning a random image")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		panic(err)
	}
	if err := s3Client.EnsureBucket(context.Background(), cfg.S3BucketName); err != nil {
		log.Error("Failed to ensure bucket: %v", err)
		panic(err)
	}

	var listCache usecase.ListCache
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Redis unavailable, list cache will not be invalidated: %v", err)
	} else {
		defer redisClient.Close()
		listCache = submissionCache.NewSubmissionCache(redisClient, cfg.ListCacheTTL)
	}

	uploader := upload.New(s3Client, upload.WithConcurrency(cfg.UploadConcurrency), upload.WithLogger(log))
	policy := upload.Policy{MaxFileSize: cfg.UploadMaxFileSize(), MaxFiles: cfg.UploadMaxFiles}
	submissionUseCase := usecase.NewSubmissionUseCase(persistent.NewSubmissionRepository(db), uploader, cfg.S3BucketName, policy, listCache, nil, log)

	s := &seeder{
		useCase:    submissionUseCase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		source:     source,
		logger:     log,
		pause:      200 * time.Millisecond,
	}

	created := s.Seed(context.Background(), count, perSubmit)
	log.Info("Database seeded successfully! Created %d of %d submissions", created, count)
}

type seeder struct {
	useCase    usecase.SubmissionUseCase
	httpClient *http.Client
	source     string
	logger     *logger.Logger
	pause      time.Duration
}

// Seed creates count submissions and returns how many succeeded. Failures are
// logged and skipped.
func (s *seeder) Seed(ctx context.Context, count, perSubmit int) int {
	created := 0
	for i := 0; i < count; i++ {
		if err := s.createSubmission(ctx, i, perSubmit); err != nil {
			s.logger.Error("Failed to create submission %d: %v", i+1, err)
			continue
		}
		created++
		if s.pause > 0 {
			time.Sleep(s.pause)
		}
	}
	return created
}

func (s *seeder) createSubmission(ctx context.Context, index, perSubmit int) error {
	single, err := s.fetchImage(ctx, fmt.Sprintf("seed_%d_cover.jpg", index))
	if err != nil {
		return err
	}

	multiple := make([]*upload.File, 0, perSubmit)
	for j := 0; j < perSubmit; j++ {
		file, err := s.fetchImage(ctx, fmt.Sprintf("seed_%d_%d.jpg", index, j))
		if err != nil {
			return err
		}
		multiple = append(multiple, file)
	}

	submission, err := s.useCase.Submit(ctx, usecase.SubmitInput{
		Title:          fmt.Sprintf("Cat Submission #%d", index+1),
		Description:    fmt.Sprintf("A cute cat from CATAAS API! Submission #%d", index+1),
		SingleImage:    single,
		MultipleImages: multiple,
	})
	if err != nil {
		return err
	}

	s.logger.Info("Created submission: %s (%s)", submission.Title, submission.ID)
	return nil
}

func (s *seeder) fetchImage(ctx context.Context, name string) (*upload.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	s.logger.Debug("Fetching image from %s", s.source)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("received empty image data")
	}

	return &upload.File{
		Name:        name,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
