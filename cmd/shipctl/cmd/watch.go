package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shipgen/shipctl/internal/metrics"
	"github.com/shipgen/shipctl/internal/notify"
	"github.com/shipgen/shipctl/internal/track"
)

var (
	watchInterval   time.Duration
	watchListenAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch <job-id> [job-id...]",
	Short: "Track several jobs until they finish",
	Long: `Watch mode runs one poller per job and keeps going until every job
reaches a terminal state. While running it serves Prometheus metrics on
/metrics and a liveness probe on /healthz.

A failed poll stops tracking for that job only; the others continue.

Example:
  shipctl watch 1f6d6c7a 9e2b04d1
  shipctl watch --poll-interval 5s --listen :9105 1f6d6c7a`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "poll-interval", track.DefaultPollInterval, "how often to poll each job")
	watchCmd.Flags().StringVar(&watchListenAddr, "listen", ":9105", "address for the metrics endpoint")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := logrus.WithField("component", "watch")

	client := newClient()
	m := metrics.New()

	notifier := notify.NewQueue(notify.DefaultTTL)
	notifier.SetSink(func(n notify.Notification) {
		m.NotificationPushed()
		printNotification(n)
	})

	tracker := track.New(track.Config{
		Service:  client,
		Notifier: notifier,
		Metrics:  m,
		Interval: watchInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := mux.NewRouter()
	router.Handle("/metrics", m.Handler())
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"active_jobs": tracker.ActiveCount(),
			"tracked":     tracker.Store().Len(),
		})
	})

	server := &http.Server{Addr: watchListenAddr, Handler: router}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.WithFields(logrus.Fields{
		"jobs":   len(args),
		"listen": watchListenAddr,
	}).Info("watch started")

	var wg sync.WaitGroup
	for _, jobID := range args {
		done, err := tracker.Follow(ctx, jobID)
		if err != nil {
			// Duplicate ids on the command line hit the per-job
			// single-poller guard.
			logger.WithField("job_id", jobID).WithError(err).Warn("not tracking")
			continue
		}

		wg.Add(1)
		go func(id string, done <-chan error) {
			defer wg.Done()
			if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
				logger.WithField("job_id", id).WithError(err).Error("tracking ended")
				return
			}
			logger.WithField("job_id", id).Info("job finished")
		}(jobID, done)
	}

	wg.Wait()

	if ctx.Err() != nil {
		fmt.Println("watch interrupted")
		return nil
	}

	for _, job := range tracker.Store().Values() {
		d := job.Status.Display()
		fmt.Printf("%s %s  %s\n", d.Badge, shortID(job.JobID), d.Label)
	}
	return nil
}
