package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BailinYe/resume-modifier/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// 去重锁在 Redis 中的过期时间
	dedupLockTTL = 5 * time.Second
	// Redis key 前缀
	dedupLockKeyPrefix = "dedup:lock:"
)

// Resolution 去重判定结果
type Resolution struct {
	IsDuplicate bool
	DisplayName string
	Sequence    int
	// OriginalID 组内序号 0 记录的 ID，非重复时为空
	OriginalID *string
	// Warning 查询或加锁降级时附带的警告
	Warning *Warning
}

// Locker 短时互斥锁，序列化同一 (owner, hash) 的序号分配
type Locker interface {
	// Lock 返回解锁函数；加锁失败返回错误，调用方降级继续
	Lock(ctx context.Context, key string) (func(), error)
}

// redisLocker 基于 Redis SET NX 的锁实现
type redisLocker struct {
	client *redis.Client
}

// NewRedisLocker 创建 Redis 锁
func NewRedisLocker(client *redis.Client) Locker {
	return &redisLocker{client: client}
}

// 仅持有者可释放
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock 自旋获取锁，TTL 兜底防止持有者崩溃后死锁
func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	fullKey := dedupLockKeyPrefix + key

	deadline := time.Now().Add(2 * time.Second)
	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, dedupLockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire dedup lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("dedup lock busy: %s", key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	unlock := func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = unlockScript.Run(unlockCtx, l.client, []string{fullKey}, token).Err()
	}
	return unlock, nil
}

// Resolver 重复文件判定器
// 去重是优化而非安全属性：查询或加锁失败一律降级为非重复并附带警告，
// 序号唯一性最终由 (owner_id, content_hash, duplicate_seq) 唯一索引保证
type Resolver struct {
	repo   repository.FileRepository
	locker Locker
}

// NewResolver 创建判定器，locker 可为 nil
func NewResolver(repo repository.FileRepository, locker Locker) *Resolver {
	return &Resolver{repo: repo, locker: locker}
}

// Resolve 判定 (owner, hash) 是否重复并给出去歧义显示名
// 命名基于组内原始记录的显示名而非本次上传的文件名：同一组文件始终共享一个名字族，
// 上传 different.pdf 到原名 A.pdf 的组会得到 "A (2).pdf"
func (r *Resolver) Resolve(ctx context.Context, ownerID, originalName, hash string) *Resolution {
	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, ownerID+":"+hash)
		if err != nil {
			// 锁只是缩小冲突窗口，拿不到照常继续
			w := NewWarning(WarnStageDedup, "sequence lock unavailable: %v", err)
			res := r.resolve(ctx, ownerID, originalName, hash)
			if res.Warning == nil {
				res.Warning = &w
			}
			return res
		}
		defer unlock()
	}
	return r.resolve(ctx, ownerID, originalName, hash)
}

func (r *Resolver) resolve(ctx context.Context, ownerID, originalName, hash string) *Resolution {
	existing, err := r.repo.ListByOwnerAndHash(ownerID, hash)
	if err != nil {
		w := NewWarning(WarnStageDedup, "duplicate lookup failed, treating as new file: %v", err)
		return &Resolution{
			IsDuplicate: false,
			DisplayName: fallbackName(originalName),
			Sequence:    0,
			Warning:     &w,
		}
	}

	if len(existing) == 0 {
		return &Resolution{
			IsDuplicate: false,
			DisplayName: originalName,
			Sequence:    0,
		}
	}

	// 组内规范名取序号 0 记录的显示名
	canonical := existing[0].DisplayName
	originalID := existing[0].ID

	used := make(map[string]bool, len(existing))
	for _, rec := range existing {
		used[rec.DisplayName] = true
	}

	// 序号取组内最大序号 +1，而不是按条数重算：硬删除留下的空洞不回填，
	// 唯一索引冲突后重试才能越过冲突序号而不是反复撞同一个值
	seq := existing[len(existing)-1].DuplicateSeq + 1
	// 用户可能手工上传过名为 "X (1).pdf" 的文件，向前探测避开已占用的名字
	name := numberedName(canonical, seq)
	for n := seq; used[name]; n++ {
		name = numberedName(canonical, n+1)
	}

	return &Resolution{
		IsDuplicate: true,
		DisplayName: name,
		Sequence:    seq,
		OriginalID:  &originalID,
	}
}

// numberedName 在扩展名前插入 " (N)"
func numberedName(name string, n int) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}

// fallbackName 去重查询失败时的兜底显示名，带随机片段避免组内撞名
func fallbackName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s-%s%s", base, uuid.New().String()[:8], ext)
}
