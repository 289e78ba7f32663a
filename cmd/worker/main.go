package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"mutasiku/internal/app"
	"mutasiku/internal/config"
	"mutasiku/internal/jobs"
	"mutasiku/internal/jobs/inmemory"
	"mutasiku/internal/logger"
)

// gmail watch registrations expire after about a week; re-arm daily.
const watchRearmInterval = 24 * time.Hour

func main() {
	log := logger.New("worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runtime, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build processing runtime")
	}
	defer runtime.Close()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.QueueWorkers, jobStore)

	log.Info().Msg("Starting worker service")

	handler := func(ctx context.Context, job jobs.Job) error {
		mailboxJob, ok := job.(*jobs.ProcessMailboxJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", mailboxJob.JobID).
			Str("label_id", mailboxJob.LabelID).
			Msg("Processing mailbox job")

		report, err := runtime.Processor.ProcessMailbox(ctx, mailboxJob.LabelID, mailboxJob.MaxMessages)
		if err != nil {
			log.Error().Err(err).Str("job_id", mailboxJob.JobID).Msg("Mailbox run failed")
			return err
		}
		mailboxJob.Report = report

		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	// Poll schedule. Push notifications via the API server cover the
	// low-latency path; the cron poll catches anything a push missed.
	schedule := cron.New()
	_, err = schedule.AddFunc(cfg.PollCron, func() {
		job := &jobs.ProcessMailboxJob{
			LabelID:     runtime.LabelID,
			MaxMessages: cfg.MaxMessages,
		}
		if err := jobQueue.PublishProcessMailbox(ctx, job); err != nil {
			log.Error().Err(err).Msg("Failed to enqueue scheduled mailbox job")
			return
		}
		log.Info().Str("job_id", job.JobID).Msg("Scheduled mailbox job enqueued")
	})
	if err != nil {
		log.Fatal().Err(err).Str("cron", cfg.PollCron).Msg("Invalid poll schedule")
	}
	schedule.Start()

	if cfg.PubSubTopic != "" {
		rearmWatch(ctx, runtime, cfg.PubSubTopic, log)
	}

	log.Info().Str("cron", cfg.PollCron).Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	schedule.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}

// rearmWatch registers the Gmail push channel now and keeps re-registering
// until the context ends.
func rearmWatch(ctx context.Context, runtime *app.Runtime, topic string, log zerolog.Logger) {
	register := func() {
		if _, err := runtime.Mail.Watch(ctx, runtime.LabelID, topic); err != nil {
			log.Error().Err(err).Msg("Failed to register gmail watch")
		}
	}
	register()

	go func() {
		ticker := time.NewTicker(watchRearmInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				register()
			}
		}
	}()
}
