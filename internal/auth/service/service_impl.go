package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/smallbiznis/zoonova/internal/auth/domain"
	"github.com/smallbiznis/zoonova/internal/auth/password"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/internal/config"
	"github.com/smallbiznis/zoonova/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	sessionTokenBytes = 32
	defaultSessionTTL = time.Hour
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	Sessions domain.SessionRepository
	Hasher   *password.Hasher
}

type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	repo       domain.Repository
	sessions   domain.SessionRepository
	hasher     *password.Hasher
	sessionTTL time.Duration
	validate   *validator.Validate
}

func New(p Params) domain.Service {
	ttl := p.Config.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Service{
		log:        p.Log.Named("auth.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		repo:       p.Repo,
		sessions:   p.Sessions,
		hasher:     p.Hasher,
		sessionTTL: ttl,
		validate:   validator.New(),
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := s.normalizeEmail(req.Email)
	if err != nil || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(req.Password, admin.PasswordHash) {
		s.log.Info("login rejected", zap.Int64("admin_id", admin.ID))
		return nil, domain.ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:         s.genID.Generate().Int64(),
		AdminID:    admin.ID,
		TokenHash:  hashToken(rawToken),
		UserAgent:  truncate(strings.TrimSpace(req.UserAgent), 500),
		IPAddress:  truncate(strings.TrimSpace(req.IPAddress), 64),
		ExpiresAt:  now.Add(s.sessionTTL),
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, admin.ID, map[string]any{"last_login_at": now}); err != nil {
		s.log.Warn("record last login", zap.Int64("admin_id", admin.ID), zap.Error(err))
	}
	admin.LastLoginAt = &now

	return &domain.LoginResult{
		Token:     rawToken,
		ExpiresAt: session.ExpiresAt,
		Admin:     toAdminResponse(admin),
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	session, err := s.lookup(ctx, rawToken)
	if err != nil {
		return err
	}
	err = s.sessions.RevokeSession(ctx, session.AdminID, session.ID, s.clock.Now())
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Identity, error) {
	session, err := s.lookup(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if !now.Before(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	admin, err := s.repo.FindByID(ctx, session.AdminID)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	if err := s.sessions.UpdateLastSeen(ctx, session.ID, now); err != nil {
		return nil, err
	}

	return &domain.Identity{
		AdminID:     admin.ID,
		SessionID:   session.ID,
		Email:       admin.Email,
		IsSuperuser: admin.IsSuperuser,
	}, nil
}

func (s *Service) Me(ctx context.Context, adminID int64) (*domain.AdminResponse, error) {
	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	resp := toAdminResponse(admin)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.AdminResponse, error) {
	admins, err := s.repo.List(ctx, domain.AdminFilter{IsActive: req.IsActive, IsSuperuser: req.IsSuperuser})
	if err != nil {
		return nil, err
	}
	return lo.Map(admins, func(a domain.Admin, _ int) domain.AdminResponse { return toAdminResponse(&a) }), nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.AdminResponse, error) {
	email, err := s.normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Password) < password.MinLength {
		return nil, domain.ErrWeakPassword
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrAdminExists
	} else if !errors.Is(err, domain.ErrAdminNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	admin := &domain.Admin{
		ID:           s.genID.Generate().Int64(),
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hashed,
		IsActive:     true,
		IsSuperuser:  req.IsSuperuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAdminExists
		}
		return nil, err
	}

	s.log.Info("admin created",
		zap.Int64("admin_id", admin.ID),
		zap.String("role", admin.Role()),
	)
	resp := toAdminResponse(admin)
	return &resp, nil
}

// ToggleActive flips is_active. Deactivation revokes every live session of
// the target.
func (s *Service) ToggleActive(ctx context.Context, actorID int64, targetID string) (*domain.AdminResponse, error) {
	id, err := parseID(targetID)
	if err != nil {
		return nil, err
	}
	if id == actorID {
		return nil, domain.ErrCannotToggleSelf
	}

	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	admin.IsActive = !admin.IsActive
	admin.UpdatedAt = now
	if err := s.repo.UpdateFields(ctx, id, map[string]any{
		"is_active":  admin.IsActive,
		"updated_at": now,
	}); err != nil {
		return nil, err
	}
	if !admin.IsActive {
		if _, err := s.sessions.RevokeAll(ctx, id, now); err != nil {
			return nil, err
		}
	}

	resp := toAdminResponse(admin)
	return &resp, nil
}

func (s *Service) ChangePassword(ctx context.Context, adminID int64, req domain.ChangePasswordRequest) error {
	if req.OldPassword == "" || len(req.NewPassword) < password.MinLength {
		return domain.ErrWeakPassword
	}

	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(req.OldPassword, admin.PasswordHash) {
		return domain.ErrWrongPassword
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdateFields(ctx, adminID, map[string]any{
		"password_hash": hashed,
		"updated_at":    s.clock.Now(),
	})
}

func (s *Service) Sessions(ctx context.Context, adminID int64) ([]domain.SessionResponse, error) {
	sessions, err := s.sessions.ListActive(ctx, adminID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return lo.Map(sessions, func(sess domain.Session, _ int) domain.SessionResponse {
		return domain.SessionResponse{
			ID:         snowflake.ID(sess.ID).String(),
			IPAddress:  sess.IPAddress,
			UserAgent:  sess.UserAgent,
			CreatedAt:  sess.CreatedAt,
			LastSeenAt: sess.LastSeenAt,
			ExpiresAt:  sess.ExpiresAt,
		}
	}), nil
}

func (s *Service) RevokeSession(ctx context.Context, adminID int64, sessionID string) error {
	id, err := parseID(sessionID)
	if err != nil {
		return err
	}
	return s.sessions.RevokeSession(ctx, adminID, id, s.clock.Now())
}

func (s *Service) LogoutAll(ctx context.Context, adminID int64) (int64, error) {
	return s.sessions.RevokeAll(ctx, adminID, s.clock.Now())
}

// Bootstrap seeds a superuser when the admins table is empty. It reports
// whether an account was created.
func (s *Service) Bootstrap(ctx context.Context, email, pass string) (bool, error) {
	if strings.TrimSpace(email) == "" || pass == "" {
		return false, nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.Create(ctx, domain.CreateRequest{
		Email:       email,
		Password:    pass,
		IsSuperuser: true,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) lookup(ctx context.Context, rawToken string) (*domain.Session, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}
	session, err := s.sessions.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}
	return session, nil
}

func (s *Service) normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := s.validate.Var(email, "required,email,max=254"); err != nil {
		return "", err
	}
	return email, nil
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id.Int64() <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func toAdminResponse(a *domain.Admin) domain.AdminResponse {
	return domain.AdminResponse{
		ID:          snowflake.ID(a.ID).String(),
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		FullName:    a.FullName(),
		IsActive:    a.IsActive,
		IsSuperuser: a.IsSuperuser,
		Role:        a.Role(),
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
	}
}
