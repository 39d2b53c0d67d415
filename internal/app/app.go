// Package app wires configuration into concrete stores and services.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"yatube/internal/pkg"
	"yatube/internal/repository"
	"yatube/internal/repository/memory"
	"yatube/internal/repository/rdb"
	yredis "yatube/internal/repository/redis"
	"yatube/internal/router"
	"yatube/internal/service"
	"yatube/internal/storage"
	"yatube/pkg/config"
	"yatube/pkg/logging"
)

// Stores holds one implementation of every repository
type Stores struct {
	Users    repository.UserRepository
	Groups   repository.GroupRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Follows  repository.FollowRepository
	Outbox   repository.OutboxRepository

	PageCache repository.PageCache
	Sessions  repository.SessionStore
	Images    storage.ImageStore
	Media     http.FileSystem

	Ping    func(ctx context.Context) error
	closers []func() error
}

// Open builds the stores selected by cfg
func Open(cfg *config.Config) (*Stores, error) {
	s := &Stores{}
	if err := s.openDatabase(cfg); err != nil {
		return nil, err
	}
	if err := s.openCache(cfg); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.openImages(cfg); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stores) openDatabase(cfg *config.Config) error {
	if cfg.Database.Driver == "memory" {
		users, groups, posts, comments, follows, outbox := memory.NewStore().Repositories()
		s.Users, s.Groups, s.Posts, s.Comments, s.Follows, s.Outbox = users, groups, posts, comments, follows, outbox
		return nil
	}

	db, err := rdb.Open(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	s.closers = append(s.closers, func() error { return rdb.Close(db) })
	s.Users = &rdb.UserRepository{DB: db}
	s.Groups = &rdb.GroupRepository{DB: db}
	s.Posts = &rdb.PostRepository{DB: db}
	s.Comments = &rdb.CommentRepository{DB: db}
	s.Follows = &rdb.FollowRepository{DB: db}
	s.Outbox = &rdb.OutboxRepository{DB: db}
	s.Ping = func(ctx context.Context) error { return rdb.Health(ctx, db) }
	return nil
}

func (s *Stores) openCache(cfg *config.Config) error {
	if !cfg.Redis.Enabled {
		s.PageCache = memory.NewPageCache(cfg.Cache.Size, cfg.Cache.IndexTTL)
		s.Sessions = memory.NewSessionStore(cfg.Auth.MaxSessions, cfg.Auth.TokenTTL)
		return nil
	}
	client, err := yredis.New(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	s.closers = append(s.closers, client.Close)
	s.PageCache = &yredis.PageCache{Client: client}
	s.Sessions = &yredis.SessionStore{Client: client, TTL: cfg.Auth.TokenTTL}
	return nil
}

func (s *Stores) openImages(cfg *config.Config) error {
	switch cfg.Storage.Backend {
	case "s3":
		store, err := storage.NewS3Store(cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.MediaURL)
		if err != nil {
			return fmt.Errorf("open s3 storage: %w", err)
		}
		s.Images = store
	default:
		store := storage.NewLocalStore(cfg.Storage.Dir, cfg.Storage.MediaURL)
		s.Images = store
		s.Media = store.FileSystem()
	}
	return nil
}

// Close releases connections in reverse order of opening
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Services bundles the business layer over one set of stores
type Services struct {
	Posts   *service.PostService
	Follows *service.FollowService
	Users   *service.UserService
	Groups  *service.GroupService
}

func NewServices(cfg *config.Config, s *Stores) *Services {
	tokens := pkg.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.MaxAge)
	return &Services{
		Posts:   service.NewPostService(s.Posts, s.Comments, s.Users, s.Groups, s.Follows, s.Images, cfg.Server.PostsPerPage),
		Follows: service.NewFollowService(s.Follows, s.Users),
		Users:   service.NewUserService(s.Users, s.Sessions, tokens),
		Groups:  service.NewGroupService(s.Groups),
	}
}

// RouterDeps assembles the HTTP layer inputs
func RouterDeps(cfg *config.Config, s *Stores, svc *Services) router.Deps {
	return router.Deps{
		Posts:        svc.Posts,
		Follows:      svc.Follows,
		Users:        svc.Users,
		Groups:       svc.Groups,
		PageCache:    s.PageCache,
		Media:        s.Media,
		Ping:         s.Ping,
		Metrics:      cfg.Telemetry.Enabled && cfg.Telemetry.PrometheusEnabled,
		Auth:         cfg.Auth,
		Cache:        cfg.Cache,
		MediaURL:     cfg.Storage.MediaURL,
		ServiceName:  cfg.Telemetry.ServiceName,
		SecureCookie: strings.HasPrefix(cfg.Server.BaseURL, "https://"),
	}
}

// OutboxSender combines the configured sinks. The log sink is always on.
func OutboxSender(cfg *config.Config, s *Stores) (service.Sender, func() error) {
	senders := []service.Sender{service.LogSender(logging.WithComponent("outbox_log"))}
	closeFn := func() error { return nil }

	if cfg.Kafka.Enabled {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		senders = append(senders, service.KafkaSender(producer))
		closeFn = producer.Close
	}
	if cfg.SMTP.Enabled {
		mail := service.NewEmailService(pkg.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, s.Users, cfg.Server.BaseURL)
		senders = append(senders, mail.Notify)
	}
	logging.GetLogger().Info("outbox sinks configured",
		zap.Bool("kafka", cfg.Kafka.Enabled), zap.Bool("smtp", cfg.SMTP.Enabled))
	return service.MultiSender(senders...), closeFn
}

// RequireSharedCache fails when the page cache lives inside the server process,
// where another process cannot reach it. Such a server clears it on SIGHUP.
func RequireSharedCache(cfg *config.Config) error {
	if !cfg.Redis.Enabled {
		return errors.New("page cache is in-process: set redis.url, or send SIGHUP to the server to clear it")
	}
	return nil
}

// RequireSharedDatabase fails for the memory driver, whose data only the server sees
func RequireSharedDatabase(cfg *config.Config) error {
	if cfg.Database.Driver == "memory" {
		return errors.New("database driver memory is private to the server process: use mysql or postgres")
	}
	return nil
}

// ClearCacheOn purges cache every time a signal arrives, until ctx is done
func ClearCacheOn(ctx context.Context, cache repository.PageCache, signals <-chan os.Signal) {
	log := logging.WithComponent("page_cache")
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			if err := cache.Clear(ctx); err != nil {
				log.Error("page cache clear failed", zap.Stringer("signal", sig), zap.Error(err))
				continue
			}
			log.Info("page cache cleared", zap.Stringer("signal", sig))
		}
	}
}
