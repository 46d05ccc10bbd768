package cron

import (
	"context"
	"encoding/json"
	"log"

	"resolvo/config"
	"resolvo/models"
	"resolvo/services/notification"

	"github.com/hibiken/asynq"
)

const TypeNotificationDispatch = "notification:dispatch"

// AsynqDispatcher implements notification.Dispatcher by enqueueing delivery
// tasks on the Redis-backed queue. Enqueue failures are the caller's to log;
// delivery failures are retried by the worker.
type AsynqDispatcher struct {
	client *asynq.Client
}

// NewAsynqDispatcher builds the enqueue side of the dispatch pipeline.
func NewAsynqDispatcher() *AsynqDispatcher {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	return &AsynqDispatcher{client: client}
}

// Dispatch enqueues the notification for asynchronous delivery.
func (d *AsynqDispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeNotificationDispatch, payload)
	_, err = d.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
	return err
}

// InitDispatchWorker runs the async worker in background, draining the
// notification queue and delivering through the notification service.
func InitDispatchWorker(notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNotificationDispatch, handleDispatchTask(notifSvc))

	go func() {
		log.Println("[DispatchWorker] starting async worker...")
		if err := srv.Run(mux); err != nil {
			log.Printf("[DispatchWorker] worker stopped: %v", err)
		}
	}()
}

func handleDispatchTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var n models.Notification
		if err := json.Unmarshal(t.Payload(), &n); err != nil {
			log.Printf("[DispatchWorker] dropping malformed task: %v", err)
			return nil
		}
		return notifSvc.Send(ctx, n)
	}
}
