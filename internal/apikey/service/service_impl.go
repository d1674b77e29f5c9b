package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/apikey/domain"
	"github.com/helioscrm/helios/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("apikey.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Issue(ctx context.Context, req domain.IssueKeyRequest) (domain.IssueKeyResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.IssueKeyResponse{}, domain.ErrInvalidName
	}
	if req.OrgID == 0 {
		return domain.IssueKeyResponse{}, domain.ErrInvalidOrg
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return domain.IssueKeyResponse{}, err
	}
	secret := domain.KeyPrefix + hex.EncodeToString(buf)

	key := domain.APIKey{
		ID:        s.genID.Generate(),
		OrgID:     req.OrgID,
		Name:      name,
		KeyHash:   domain.HashAPIKey(secret),
		Scopes:    req.Scopes,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &key); err != nil {
		return domain.IssueKeyResponse{}, err
	}

	s.log.Info("api key issued",
		zap.String("key_id", key.ID.String()),
		zap.String("org_id", key.OrgID.String()),
	)

	return domain.IssueKeyResponse{Key: key, Secret: secret}, nil
}

func (s *Service) Resolve(ctx context.Context, raw string) (domain.APIKey, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, domain.KeyPrefix) {
		return domain.APIKey{}, domain.ErrInvalidKey
	}

	key, err := s.repo.FindByHash(ctx, s.db, domain.HashAPIKey(raw))
	if err != nil {
		return domain.APIKey{}, err
	}
	if key == nil || !key.Active() {
		return domain.APIKey{}, domain.ErrInvalidKey
	}

	now := time.Now().UTC()
	key.LastUsedAt = &now
	if err := s.repo.Update(ctx, s.db, key); err != nil {
		// Authentication already succeeded; a stale last_used_at is
		// not worth failing the request over.
		s.log.Warn("failed to touch api key", zap.Error(err))
	}

	return *key, nil
}

func (s *Service) Revoke(ctx context.Context, id snowflake.ID) error {
	key, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if key == nil || key.OrgID != orgcontext.OrgIDFromContext(ctx) {
		return domain.ErrNotFound
	}
	if key.RevokedAt != nil {
		return nil
	}

	now := time.Now().UTC()
	key.RevokedAt = &now
	return s.repo.Update(ctx, s.db, key)
}
