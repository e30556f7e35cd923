package attrs

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Set proxies a Redis set. Members pass through the attribute filter on
// add, membership test and delete.
type Set struct {
	collection
}

// Add inserts members and returns how many were new.
func (s *Set) Add(ctx context.Context, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	filtered, err := s.members.applyAll(members)
	if err != nil {
		return 0, err
	}
	n, err := s.conn.SAdd(ctx, s.key, toAnySlice(filtered)...).Result()
	if err != nil {
		return 0, s.wrap("add", err)
	}
	return n, nil
}

// IsMember reports whether the filtered member is present.
func (s *Set) IsMember(ctx context.Context, member string) (bool, error) {
	member, err := s.members.apply(member)
	if err != nil {
		return false, err
	}
	ok, err := s.conn.SIsMember(ctx, s.key, member).Result()
	if err != nil {
		return false, s.wrap("ismember", err)
	}
	return ok, nil
}

// Delete removes members and returns how many were present.
func (s *Set) Delete(ctx context.Context, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	filtered, err := s.members.applyAll(members)
	if err != nil {
		return 0, err
	}
	n, err := s.conn.SRem(ctx, s.key, toAnySlice(filtered)...).Result()
	if err != nil {
		return 0, s.wrap("delete", err)
	}
	return n, nil
}

// Members returns the members sorted, since Redis sets are unordered.
func (s *Set) Members(ctx context.Context) ([]string, error) {
	members, err := s.conn.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, s.wrap("members", err)
	}
	sort.Strings(members)
	return members, nil
}

// Len returns the set cardinality.
func (s *Set) Len(ctx context.Context) (int64, error) {
	n, err := s.conn.SCard(ctx, s.key).Result()
	if err != nil {
		return 0, s.wrap("len", err)
	}
	return n, nil
}

// Replace swaps the content for members in one transaction.
func (s *Set) Replace(ctx context.Context, members []string) error {
	filtered, err := s.members.applyAll(members)
	if err != nil {
		return err
	}
	_, err = s.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(filtered) > 0 {
			pipe.SAdd(ctx, s.key, toAnySlice(filtered)...)
		}
		return nil
	})
	if err != nil {
		return s.wrap("replace", err)
	}
	return nil
}
