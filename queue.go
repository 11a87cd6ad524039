/*
Copyright 2024 Arigo Pay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package arigopay

import (
	"context"
	"encoding/json"
	"log"

	"github.com/arigohub24/arigo-pay/config"
	redis_db "github.com/arigohub24/arigo-pay/internal/redis-db"

	"github.com/arigohub24/arigo-pay/model"
	"github.com/hibiken/asynq"
)

// Queue represents a queue for handling submission and webhook tasks.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// SubmissionPayload is the task body for a queued submission.
type SubmissionPayload struct {
	SessionID string `json:"session_id"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// EnqueueSubmission queues the gateway submission for a session. The task ID
// is the session ID so a session can never have two submission tasks pending
// at once.
func (q *Queue) EnqueueSubmission(ctx context.Context, session *model.WizardSession) error {
	ctx, span := tracer.Start(ctx, "Adding submission to redis queue")
	defer span.End()

	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(SubmissionPayload{SessionID: session.SessionID})
	if err != nil {
		return err
	}

	taskOptions := []asynq.Option{
		asynq.TaskID(session.SessionID),
		asynq.Queue(cfg.Queue.SubmissionQueue),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
	}
	task := asynq.NewTask(cfg.Queue.SubmissionQueue, payload, taskOptions...)
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued submission: %+v", session.SessionID)

	return nil
}
