package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spacesedan/paperboy/internal/clients"
	"github.com/spacesedan/paperboy/internal/models"
	"github.com/valkey-io/valkey-go"
)

const VALKEY_FAVORITES_PREFIX = "paperboy:favorites"

// ValkeyFavorites keeps favorite payloads in a hash and their order in a
// sorted set scored by a monotonically increasing counter.
type ValkeyFavorites struct {
	vc       *clients.ValkeyClient
	dataKey  string
	orderKey string
	seqKey   string
}

func NewValkeyFavorites(vc *clients.ValkeyClient, prefix string) *ValkeyFavorites {
	if prefix == "" {
		prefix = VALKEY_FAVORITES_PREFIX
	}
	return &ValkeyFavorites{
		vc:       vc,
		dataKey:  prefix + ":data",
		orderKey: prefix + ":order",
		seqKey:   prefix + ":seq",
	}
}

// favoriteSteps are the individual writes an insert is made of.
type favoriteSteps interface {
	claimPayload(ctx context.Context, id, payload string) (bool, error)
	ensureOrdered(ctx context.Context, id string) error
	releasePayload(ctx context.Context, id string) error
}

// insertFavorite stores the payload and makes sure the id has an order entry.
// A payload written by this call is released again when ordering fails, so a
// retry starts clean. A payload that already existed without an order entry
// gets one.
func insertFavorite(ctx context.Context, s favoriteSteps, id, payload string) error {
	added, err := s.claimPayload(ctx, id, payload)
	if err != nil {
		return err
	}
	if err := s.ensureOrdered(ctx, id); err != nil {
		if added {
			if rerr := s.releasePayload(ctx, id); rerr != nil {
				slog.Error("[ValkeyFavorites] Failed to release payload",
					slog.String("id", id), slog.String("error", rerr.Error()))
			}
		}
		return err
	}
	return nil
}

func (v *ValkeyFavorites) Insert(ctx context.Context, fav models.Favorite) error {
	payload, err := json.Marshal(fav)
	if err != nil {
		return fmt.Errorf("[ValkeyFavorites] marshal favorite: %w", err)
	}
	return insertFavorite(ctx, v, fav.ID, string(payload))
}

func (v *ValkeyFavorites) claimPayload(ctx context.Context, id, payload string) (bool, error) {
	added, err := v.vc.DoWithRetry(ctx,
		v.vc.B().Hsetnx().Key(v.dataKey).Field(id).Value(payload).Build(), 3).AsInt64()
	if err != nil {
		return false, fmt.Errorf("[ValkeyFavorites] hsetnx: %w", err)
	}
	return added == 1, nil
}

func (v *ValkeyFavorites) ensureOrdered(ctx context.Context, id string) error {
	_, err := v.vc.DoWithRetry(ctx, v.vc.B().Zscore().Key(v.orderKey).Member(id).Build(), 3).AsFloat64()
	if err == nil {
		return nil
	}
	if !valkey.IsValkeyNil(err) {
		return fmt.Errorf("[ValkeyFavorites] zscore: %w", err)
	}

	seq, err := v.vc.DoWithRetry(ctx, v.vc.B().Incr().Key(v.seqKey).Build(), 3).AsInt64()
	if err != nil {
		return fmt.Errorf("[ValkeyFavorites] incr: %w", err)
	}

	err = v.vc.DoWithRetry(ctx,
		v.vc.B().Zadd().Key(v.orderKey).Nx().ScoreMember().ScoreMember(float64(seq), id).Build(), 3).Error()
	if err != nil {
		return fmt.Errorf("[ValkeyFavorites] zadd: %w", err)
	}
	return nil
}

func (v *ValkeyFavorites) releasePayload(ctx context.Context, id string) error {
	err := v.vc.DoWithRetry(ctx, v.vc.B().Hdel().Key(v.dataKey).Field(id).Build(), 3).Error()
	if err != nil {
		return fmt.Errorf("[ValkeyFavorites] hdel: %w", err)
	}
	return nil
}

func (v *ValkeyFavorites) Delete(ctx context.Context, id string) error {
	completed := []valkey.Completed{
		v.vc.B().Hdel().Key(v.dataKey).Field(id).Build(),
		v.vc.B().Zrem().Key(v.orderKey).Member(id).Build(),
	}
	for _, res := range v.vc.DoMultiWithRetry(ctx, completed, 3) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("[ValkeyFavorites] delete: %w", err)
		}
	}
	return nil
}

func (v *ValkeyFavorites) All(ctx context.Context) ([]models.Favorite, error) {
	ids, err := v.vc.DoWithRetry(ctx,
		v.vc.B().Zrange().Key(v.orderKey).Min("0").Max("-1").Build(), 3).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("[ValkeyFavorites] zrange: %w", err)
	}

	favs := []models.Favorite{}
	if len(ids) == 0 {
		return favs, nil
	}

	values, err := v.vc.DoWithRetry(ctx,
		v.vc.B().Hmget().Key(v.dataKey).Field(ids...).Build(), 3).ToArray()
	if err != nil {
		return nil, fmt.Errorf("[ValkeyFavorites] hmget: %w", err)
	}

	for i, msg := range values {
		if msg.IsNil() {
			// removed between ZRANGE and HMGET
			slog.Warn("[ValkeyFavorites] Missing payload for favorite", slog.String("id", ids[i]))
			continue
		}
		raw, err := msg.ToString()
		if err != nil {
			return nil, fmt.Errorf("[ValkeyFavorites] read payload: %w", err)
		}
		var f models.Favorite
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			slog.Error("[ValkeyFavorites] Invalid payload", slog.String("id", ids[i]), slog.String("error", err.Error()))
			continue
		}
		favs = append(favs, f)
	}
	return favs, nil
}

// reset removes every favorite key under the prefix.
func (v *ValkeyFavorites) reset(ctx context.Context) error {
	return v.vc.DoWithRetry(ctx, v.vc.B().Del().Key(v.dataKey, v.orderKey, v.seqKey).Build(), 3).Error()
}
