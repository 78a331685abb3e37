package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

const (
	metaExpiresAt = "expires-at"
	metaFilename  = "filename"
	metaCreatedAt = "created-at"

	lifecycleRuleID = "paper2deck-artifacts"
)

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Secure    bool
	Prefix    string
	// MaxAge bounds objects whose expiry metadata is missing or unreadable.
	MaxAge time.Duration
}

// S3Store keeps artifacts as bucket objects. Single delivery is enforced
// per process; run one replica when using it.
type S3Store struct {
	client *minio.Client
	bucket string
	prefix string
	maxAge time.Duration
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*idLock
}

type idLock struct {
	sync.Mutex
	refs int
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = "artifacts"
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultTTL
	}

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
		maxAge: maxAge,
		now:    time.Now,
		locks:  make(map[string]*idLock),
	}, nil
}

func (s *S3Store) key(id string) string {
	return s.prefix + "/" + id
}

func (s *S3Store) Put(ctx context.Context, id string, a domain.Artifact, ttl time.Duration) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(id), bytes.NewReader(a.Data), int64(len(a.Data)), minio.PutObjectOptions{
		ContentType: a.ContentType,
		UserMetadata: map[string]string{
			metaExpiresAt: s.now().Add(ttl).UTC().Format(time.RFC3339Nano),
			metaCreatedAt: a.CreatedAt.UTC().Format(time.RFC3339Nano),
			metaFilename:  url.QueryEscape(a.Filename),
		},
	})
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}

func (s *S3Store) TakeOnce(ctx context.Context, id string) (domain.Artifact, error) {
	unlock := s.lock(id)
	defer unlock()

	key := s.key(id)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return domain.Artifact{}, domain.ErrNotFound
		}
		return domain.Artifact{}, fmt.Errorf("stat object: %w", err)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, metaValue(info.UserMetadata, metaExpiresAt))
	if err != nil || !s.now().Before(expiresAt) {
		_ = s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
		return domain.Artifact{}, domain.ErrNotFound
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return domain.Artifact{}, domain.ErrNotFound
		}
		return domain.Artifact{}, fmt.Errorf("read object: %w", err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return domain.Artifact{}, fmt.Errorf("remove object: %w", err)
	}

	filename, err := url.QueryUnescape(metaValue(info.UserMetadata, metaFilename))
	if err != nil || filename == "" {
		filename = id + ".pptx"
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, metaValue(info.UserMetadata, metaCreatedAt))

	return domain.Artifact{
		Filename:    filename,
		ContentType: info.ContentType,
		Data:        data,
		CreatedAt:   createdAt,
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.key(id), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// Sweep removes expired objects under the prefix, including ones nobody
// downloaded. It returns how many were removed.
func (s *S3Store) Sweep(ctx context.Context) (int, error) {
	// releases the lister goroutine on early return
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	removed := 0
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return removed, fmt.Errorf("list objects: %w", obj.Err)
		}
		id := strings.TrimPrefix(obj.Key, s.prefix+"/")

		gone, err := s.removeIfExpired(ctx, id, obj.LastModified)
		if err != nil {
			return removed, err
		}
		if gone {
			removed++
		}
	}
	return removed, nil
}

func (s *S3Store) removeIfExpired(ctx context.Context, id string, modified time.Time) (bool, error) {
	unlock := s.lock(id)
	defer unlock()

	key := s.key(id)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, metaValue(info.UserMetadata, metaExpiresAt))
	if err != nil {
		expiresAt = modified.Add(s.maxAge)
	}
	if s.now().Before(expiresAt) {
		return false, nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("remove object: %w", err)
	}
	return true, nil
}

// EnsureLifecycle adds a one-day expiration rule for the prefix, keeping any
// other rules on the bucket. It backs up Sweep when the process is down.
func (s *S3Store) EnsureLifecycle(ctx context.Context) error {
	cfg, err := s.client.GetBucketLifecycle(ctx, s.bucket)
	if err != nil {
		if minio.ToErrorResponse(err).Code != "NoSuchLifecycleConfiguration" {
			return fmt.Errorf("get lifecycle: %w", err)
		}
		cfg = lifecycle.NewConfiguration()
	}

	rule := lifecycle.Rule{
		ID:         lifecycleRuleID,
		Status:     "Enabled",
		RuleFilter: lifecycle.Filter{Prefix: s.prefix + "/"},
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(1)},
	}

	rules := make([]lifecycle.Rule, 0, len(cfg.Rules)+1)
	for _, r := range cfg.Rules {
		if r.ID != lifecycleRuleID {
			rules = append(rules, r)
		}
	}
	cfg.Rules = append(rules, rule)

	if err := s.client.SetBucketLifecycle(ctx, s.bucket, cfg); err != nil {
		return fmt.Errorf("set lifecycle: %w", err)
	}
	return nil
}

func (s *S3Store) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &idLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// metaValue looks a key up ignoring the canonical casing S3 applies.
func metaValue(meta map[string]string, key string) string {
	for k, v := range meta {
		k = strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-")
		if k == key {
			return v
		}
	}
	return ""
}
