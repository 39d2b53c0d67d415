package service

import (
	"context"
	"fmt"
	"strings"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository"
)

// Mailer delivers one HTML message
type Mailer func(cfg pkg.SMTPConfig, to, subject, htmlBody string) error

// EmailService mails authors about new followers and comments
type EmailService struct {
	emailCfg pkg.SMTPConfig
	users    repository.UserRepository
	baseURL  string
	send     Mailer
}

func NewEmailService(cfg pkg.SMTPConfig, users repository.UserRepository, baseURL string) *EmailService {
	return &EmailService{
		emailCfg: cfg,
		users:    users,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		send:     pkg.SendEmail,
	}
}

// Notify is an outbox Sender. Unfollows and self-comments send nothing.
func (s *EmailService) Notify(ctx context.Context, ob *model.SocialOutbox) error {
	if ob.EventType == model.EventUnfollow || ob.ActorID == ob.TargetID {
		return nil
	}
	actor, err := s.users.FindByID(ctx, ob.ActorID)
	if err != nil {
		return fmt.Errorf("load actor: %w", err)
	}
	target, err := s.users.FindByID(ctx, ob.TargetID)
	if err != nil {
		return fmt.Errorf("load target: %w", err)
	}

	switch ob.EventType {
	case model.EventFollow:
		html := pkg.FollowerHTML(actor.Username, fmt.Sprintf("%s/profile/%s/", s.baseURL, actor.Username))
		return s.send(s.emailCfg, target.Email, "New follower on Yatube", html)
	case model.EventComment:
		html := pkg.CommentHTML(actor.Username, fmt.Sprintf("%s/posts/%d/", s.baseURL, ob.PostID))
		return s.send(s.emailCfg, target.Email, "New comment on your post", html)
	default:
		return nil
	}
}
