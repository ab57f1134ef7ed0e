package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/campus-coins/backend/internal/application/adapter"
	"github.com/campus-coins/backend/internal/domain/entity"
	domainerror "github.com/campus-coins/backend/internal/domain/error"
)

const (
	redisJobKeyPrefix       = "email:job:"
	redisRecipientKeyPrefix = "email:recipient:"
	redisPendingKey         = "email:queue:pending"
	redisSentKey            = "email:queue:sent"
)

// redisEmailJob is the JSON document stored for each job.
type redisEmailJob struct {
	ID             uuid.UUID         `json:"id"`
	TemplateType   string            `json:"template_type"`
	RecipientEmail string            `json:"recipient_email"`
	RecipientName  string            `json:"recipient_name"`
	Subject        string            `json:"subject"`
	TemplateData   map[string]string `json:"template_data"`
	Status         string            `json:"status"`
	Attempts       int               `json:"attempts"`
	MaxAttempts    int               `json:"max_attempts"`
	LastError      string            `json:"last_error,omitempty"`
	ProviderID     string            `json:"provider_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	ScheduledAt    time.Time         `json:"scheduled_at"`
	ProcessedAt    *time.Time        `json:"processed_at,omitempty"`
}

func newRedisEmailJob(job *entity.EmailJob) redisEmailJob {
	return redisEmailJob{
		ID:             job.ID,
		TemplateType:   string(job.TemplateType),
		RecipientEmail: job.RecipientEmail,
		RecipientName:  job.RecipientName,
		Subject:        job.Subject,
		TemplateData:   job.TemplateData,
		Status:         string(job.Status),
		Attempts:       job.Attempts,
		MaxAttempts:    job.MaxAttempts,
		LastError:      job.LastError,
		ProviderID:     job.ProviderID,
		CreatedAt:      job.CreatedAt,
		ScheduledAt:    job.ScheduledAt,
		ProcessedAt:    job.ProcessedAt,
	}
}

func (j redisEmailJob) toEntity() *entity.EmailJob {
	return &entity.EmailJob{
		ID:             j.ID,
		TemplateType:   entity.EmailTemplateType(j.TemplateType),
		RecipientEmail: j.RecipientEmail,
		RecipientName:  j.RecipientName,
		Subject:        j.Subject,
		TemplateData:   j.TemplateData,
		Status:         entity.EmailStatus(j.Status),
		Attempts:       j.Attempts,
		MaxAttempts:    j.MaxAttempts,
		LastError:      j.LastError,
		ProviderID:     j.ProviderID,
		CreatedAt:      j.CreatedAt,
		ScheduledAt:    j.ScheduledAt,
		ProcessedAt:    j.ProcessedAt,
	}
}

// redisEmailQueueRepository implements adapter.EmailQueueRepository on Redis.
// Pending and sent jobs are indexed in sorted sets scored by unix milliseconds.
type redisEmailQueueRepository struct {
	client *redis.Client
}

// NewRedisEmailQueueRepository creates a Redis-backed email queue.
func NewRedisEmailQueueRepository(client *redis.Client) adapter.EmailQueueRepository {
	return &redisEmailQueueRepository{client: client}
}

func jobKey(id uuid.UUID) string {
	return redisJobKeyPrefix + id.String()
}

func recipientKey(email string) string {
	return redisRecipientKeyPrefix + email
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// Create adds a new email job to the queue.
func (r *redisEmailQueueRepository) Create(ctx context.Context, job *entity.EmailJob) error {
	if err := r.save(ctx, job, true); err != nil {
		return domainerror.NewEmailError(domainerror.ErrCodeEmailQueueFailed, "failed to create email job", err)
	}
	return nil
}

// Update saves changes to an email job and moves it between indexes.
func (r *redisEmailQueueRepository) Update(ctx context.Context, job *entity.EmailJob) error {
	return r.save(ctx, job, false)
}

func (r *redisEmailQueueRepository) save(ctx context.Context, job *entity.EmailJob, isNew bool) error {
	payload, err := json.Marshal(newRedisEmailJob(job))
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	id := job.ID.String()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, jobKey(job.ID), payload, 0)
		if isNew {
			pipe.SAdd(ctx, recipientKey(job.RecipientEmail), id)
		}

		switch job.Status {
		case entity.EmailStatusPending:
			pipe.ZAdd(ctx, redisPendingKey, redis.Z{Score: score(job.ScheduledAt), Member: id})
		default:
			pipe.ZRem(ctx, redisPendingKey, id)
		}

		if job.Status == entity.EmailStatusSent && job.ProcessedAt != nil {
			pipe.ZAdd(ctx, redisSentKey, redis.Z{Score: score(*job.ProcessedAt), Member: id})
		}
		return nil
	})
	return err
}

// GetPendingJobs retrieves jobs whose scheduled time has passed, oldest first.
func (r *redisEmailQueueRepository) GetPendingJobs(ctx context.Context, limit int) ([]*entity.EmailJob, error) {
	ids, err := r.client.ZRangeByScore(ctx, redisPendingKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(time.Now().UTC().UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	jobs, err := r.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	pending := jobs[:0]
	for _, job := range jobs {
		if job.Status == entity.EmailStatusPending {
			pending = append(pending, job)
		}
	}
	return pending, nil
}

// GetByID retrieves a specific job by its ID.
func (r *redisEmailQueueRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EmailJob, error) {
	payload, err := r.client.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainerror.ErrEmailJobNotFound
		}
		return nil, err
	}
	return decodeRedisEmailJob(payload)
}

// GetByRecipient retrieves jobs for a specific email address, newest first.
func (r *redisEmailQueueRepository) GetByRecipient(ctx context.Context, email string) ([]*entity.EmailJob, error) {
	ids, err := r.client.SMembers(ctx, recipientKey(email)).Result()
	if err != nil {
		return nil, err
	}

	jobs, err := r.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// DeleteOldSentJobs removes sent jobs processed more than olderThanDays ago.
func (r *redisEmailQueueRepository) DeleteOldSentJobs(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	ids, err := r.client.ZRangeByScore(ctx, redisSentKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil || len(ids) == 0 {
		return 0, err
	}

	jobs, err := r.load(ctx, ids)
	if err != nil {
		return 0, err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, job := range jobs {
			pipe.Del(ctx, jobKey(job.ID))
			pipe.SRem(ctx, recipientKey(job.RecipientEmail), job.ID.String())
		}
		members := make([]any, len(ids))
		for i, id := range ids {
			members[i] = id
		}
		pipe.ZRem(ctx, redisSentKey, members...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(jobs)), nil
}

// load fetches jobs by ID, skipping IDs whose document has expired or been removed.
func (r *redisEmailQueueRepository) load(ctx context.Context, ids []string) ([]*entity.EmailJob, error) {
	if len(ids) == 0 {
		return []*entity.EmailJob{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisJobKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]*entity.EmailJob, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		job, err := decodeRedisEmailJob([]byte(s))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func decodeRedisEmailJob(payload []byte) (*entity.EmailJob, error) {
	var doc redisEmailJob
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal email job: %w", err)
	}
	return doc.toEntity(), nil
}
