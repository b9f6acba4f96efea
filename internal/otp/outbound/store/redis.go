package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gocontact/internal/otp/entity"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
)

// KEYS[1] gate key, KEYS[2] code set key.
// ARGV: id, issued ms, expires ms, cutoff ms, cooldown ms.
var scriptInsertIfNoRecentIssuance = redis.NewScript(`
local last = redis.call('GET', KEYS[1])
if last and tonumber(last) > tonumber(ARGV[4]) then
	return 0
end
if tonumber(ARGV[5]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[5])
end
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1] .. ':' .. ARGV[2])
local ttl = tonumber(ARGV[3]) - tonumber(ARGV[2])
if ttl < 1 then
	ttl = 1
end
if redis.call('PTTL', KEYS[2]) < ttl then
	redis.call('PEXPIRE', KEYS[2], ttl)
end
return 1
`)

// Redis stores one sorted set per (email, digest) scored by expiry, so ZPOPMAX
// consumes the latest-expiring match in one command. Key TTLs remove expired
// data, which makes DeleteExpired a no-op.
type Redis struct {
	tracer
	client redis.UniversalClient
	uid    uid.NumberID
}

func NewRedis(client redis.UniversalClient, uid uid.NumberID, ins instrument.Instrumentation) *Redis {
	return &Redis{tracer: tracer{ins: ins}, client: client, uid: uid}
}

// The braces keep both keys of one email in the same cluster slot.
func gateKey(email string) string {
	return "otp:{" + email + "}:issued"
}

func codeKey(email, digest string) string {
	return "otp:{" + email + "}:code:" + digest
}

func (r *Redis) InsertIfNoRecentIssuance(ctx context.Context, in entity.Issuance) (ok bool, err error) {
	ctx, span := r.startSpan(ctx, "Redis.InsertIfNoRecentIssuance")
	defer func() { r.endSpan(span, err) }()

	res, err := scriptInsertIfNoRecentIssuance.Run(ctx, r.client,
		[]string{gateKey(in.Email), codeKey(in.Email, in.CodeDigest)},
		r.uid.Generate(),
		in.IssuedAt.UnixMilli(),
		in.ExpiresAt.UnixMilli(),
		in.Cutoff.UnixMilli(),
		in.IssuedAt.Sub(in.Cutoff).Milliseconds(),
	).Int64()
	if err != nil {
		return false, err
	}

	return res == 1, nil
}

func (r *Redis) FindAndDeleteMatching(ctx context.Context, email, digest string) (rec *entity.OtpRecord, err error) {
	ctx, span := r.startSpan(ctx, "Redis.FindAndDeleteMatching")
	defer func() { r.endSpan(span, err) }()

	zs, err := r.client.ZPopMax(ctx, codeKey(email, digest), 1).Result()
	if err != nil {
		return nil, err
	}
	if len(zs) == 0 {
		return nil, goerror.ErrNotFound
	}

	member, _ := zs[0].Member.(string)
	id, issuedMs, err := parseMember(member)
	if err != nil {
		return nil, err
	}

	return &entity.OtpRecord{
		ID:         id,
		Email:      email,
		CodeDigest: digest,
		IssuedAt:   time.UnixMilli(issuedMs),
		ExpiresAt:  time.UnixMilli(int64(zs[0].Score)),
	}, nil
}

func (r *Redis) DeleteExpired(ctx context.Context, _ time.Time) (int64, error) {
	_, span := r.startSpan(ctx, "Redis.DeleteExpired")
	defer span.End()

	return 0, nil
}

func parseMember(member string) (id, issuedMs int64, err error) {
	idStr, issuedStr, ok := strings.Cut(member, ":")
	if !ok {
		return 0, 0, fmt.Errorf("store: malformed otp member %q", member)
	}

	if id, err = strconv.ParseInt(idStr, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("store: malformed otp id: %w", err)
	}
	if issuedMs, err = strconv.ParseInt(issuedStr, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("store: malformed otp issued time: %w", err)
	}

	return id, issuedMs, nil
}
