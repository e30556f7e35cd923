package attrs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ScoredMember is one sorted set entry.
type ScoredMember struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// SortedSet proxies a Redis sorted set. Members pass through the attribute
// filter; scores are stored as given.
type SortedSet struct {
	collection
}

// Add sets the score of member and reports whether it was new.
func (z *SortedSet) Add(ctx context.Context, member string, score float64) (bool, error) {
	n, err := z.Merge(ctx, map[string]float64{member: score})
	return n > 0, err
}

// Merge sets the score of every member in scores and returns how many were
// new.
func (z *SortedSet) Merge(ctx context.Context, scores map[string]float64) (int64, error) {
	if len(scores) == 0 {
		return 0, nil
	}
	entries, err := z.entries(scores)
	if err != nil {
		return 0, err
	}
	n, err := z.conn.ZAdd(ctx, z.key, entries...).Result()
	if err != nil {
		return 0, z.wrap("add", err)
	}
	return n, nil
}

// Score returns the score of member and whether it is present.
func (z *SortedSet) Score(ctx context.Context, member string) (float64, bool, error) {
	member, err := z.members.apply(member)
	if err != nil {
		return 0, false, err
	}
	score, err := z.conn.ZScore(ctx, z.key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, z.wrap("score", err)
	}
	return score, true, nil
}

// Rank returns the zero-based ascending rank of member and whether it is
// present.
func (z *SortedSet) Rank(ctx context.Context, member string) (int64, bool, error) {
	member, err := z.members.apply(member)
	if err != nil {
		return 0, false, err
	}
	rank, err := z.conn.ZRank(ctx, z.key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, z.wrap("rank", err)
	}
	return rank, true, nil
}

// IsMember reports whether the filtered member is present.
func (z *SortedSet) IsMember(ctx context.Context, member string) (bool, error) {
	_, ok, err := z.Score(ctx, member)
	return ok, err
}

// Increment adds by to the score of member, creating it at by when absent,
// and returns the new score.
func (z *SortedSet) Increment(ctx context.Context, member string, by float64) (float64, error) {
	member, err := z.members.apply(member)
	if err != nil {
		return 0, err
	}
	score, err := z.conn.ZIncrBy(ctx, z.key, by, member).Result()
	if err != nil {
		return 0, z.wrap("increment", err)
	}
	return score, nil
}

// Range returns entries by ascending rank, start..stop inclusive.
func (z *SortedSet) Range(ctx context.Context, start, stop int64) ([]ScoredMember, error) {
	entries, err := z.conn.ZRangeWithScores(ctx, z.key, start, stop).Result()
	if err != nil {
		return nil, z.wrap("range", err)
	}
	return scoredMembers(entries), nil
}

// RangeByScore returns entries with min <= score <= max in ascending order.
func (z *SortedSet) RangeByScore(ctx context.Context, min, max float64) ([]ScoredMember, error) {
	entries, err := z.conn.ZRangeByScoreWithScores(ctx, z.key, &redis.ZRangeBy{
		Min: formatScore(min),
		Max: formatScore(max),
	}).Result()
	if err != nil {
		return nil, z.wrap("rangebyscore", err)
	}
	return scoredMembers(entries), nil
}

// Members returns the members by ascending score.
func (z *SortedSet) Members(ctx context.Context) ([]string, error) {
	members, err := z.conn.ZRange(ctx, z.key, 0, -1).Result()
	if err != nil {
		return nil, z.wrap("members", err)
	}
	return members, nil
}

// Delete removes members and returns how many were present.
func (z *SortedSet) Delete(ctx context.Context, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	filtered, err := z.members.applyAll(members)
	if err != nil {
		return 0, err
	}
	n, err := z.conn.ZRem(ctx, z.key, toAnySlice(filtered)...).Result()
	if err != nil {
		return 0, z.wrap("delete", err)
	}
	return n, nil
}

// Len returns the sorted set cardinality.
func (z *SortedSet) Len(ctx context.Context) (int64, error) {
	n, err := z.conn.ZCard(ctx, z.key).Result()
	if err != nil {
		return 0, z.wrap("len", err)
	}
	return n, nil
}

// Replace swaps the content for scores in one transaction.
func (z *SortedSet) Replace(ctx context.Context, scores map[string]float64) error {
	entries, err := z.entries(scores)
	if err != nil {
		return err
	}
	_, err = z.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, z.key)
		if len(entries) > 0 {
			pipe.ZAdd(ctx, z.key, entries...)
		}
		return nil
	})
	if err != nil {
		return z.wrap("replace", err)
	}
	return nil
}

// entries filters the members in sorted input order. When several inputs
// filter to the same member, the last one in that order sets the score.
func (z *SortedSet) entries(scores map[string]float64) ([]redis.Z, error) {
	inputs := make([]string, 0, len(scores))
	for member := range scores {
		inputs = append(inputs, member)
	}
	sort.Strings(inputs)

	entries := make([]redis.Z, 0, len(inputs))
	position := make(map[string]int, len(inputs))
	for _, member := range inputs {
		filtered, err := z.members.apply(member)
		if err != nil {
			return nil, err
		}
		if i, seen := position[filtered]; seen {
			entries[i].Score = scores[member]
			continue
		}
		position[filtered] = len(entries)
		entries = append(entries, redis.Z{Score: scores[member], Member: filtered})
	}
	return entries, nil
}

func scoredMembers(entries []redis.Z) []ScoredMember {
	out := make([]ScoredMember, len(entries))
	for i, entry := range entries {
		out[i] = ScoredMember{Member: fmt.Sprint(entry.Member), Score: entry.Score}
	}
	return out
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}
