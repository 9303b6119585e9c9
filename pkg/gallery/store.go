package gallery

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

var (
	// itemsBucket は id -> GalleryItem(JSON) のテーブルです。
	itemsBucket = []byte("gallery_items")
	// createdIndexBucket は createdAt(8byte) + 挿入順(8byte) -> id の順序インデックスです。
	createdIndexBucket = []byte("gallery_by_created")
)

// Store は件数上限付きのギャラリーストアです。
// 書き込みは bbolt の単一トランザクションで行われるため、複数のゴルーチンから同時に使用できます。
type Store struct {
	db       *bolt.DB
	now      func() time.Time
	newID    func() string
	capacity int
}

// Option は Store の設定を変更します。
type Option func(*Store)

// WithClock は作成日時に使う時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator は ID の生成方法を差し替えます。
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// WithCapacity は保持件数の上限を変更します。0 以下は無視されます。
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// Open は path のデータベースを開き、必要なバケットを作成します。
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &domain.StorageError{Op: "open", Err: err}
	}

	s := &Store{
		db:       db,
		now:      time.Now,
		newID:    uuid.NewString,
		capacity: domain.MaxGalleryItems,
	}
	for _, opt := range opts {
		opt(s)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(itemsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(createdIndexBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, &domain.StorageError{Op: "open", Err: err}
	}
	return s, nil
}

// Close はデータベースを閉じます。
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return &domain.StorageError{Op: "close", Err: err}
	}
	return nil
}

// Capacity は保持件数の上限を返します。
func (s *Store) Capacity() int { return s.capacity }

// Insert は新しいアイテムを追加し、同じトランザクション内で上限を超えた古いアイテムを削除します。
// 既存のアイテムを上書きすることはありません。
func (s *Store) Insert(ctx context.Context, theme, vibe, pose, url string) (*domain.GalleryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "insert", Err: err}
	}

	item := &domain.GalleryItem{
		ID:        s.newID(),
		URL:       url,
		Theme:     theme,
		Vibe:      vibe,
		Pose:      pose,
		CreatedAt: s.now().UTC(),
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		items := tx.Bucket(itemsBucket)
		if items.Get([]byte(item.ID)) != nil {
			return fmt.Errorf("ID が重複しています: %s", item.ID)
		}

		seq, err := items.NextSequence()
		if err != nil {
			return err
		}
		val, err := json.Marshal(item)
		if err != nil {
			return err
		}
		if err := items.Put([]byte(item.ID), val); err != nil {
			return err
		}
		if err := tx.Bucket(createdIndexBucket).Put(indexKey(item.CreatedAt, seq), []byte(item.ID)); err != nil {
			return err
		}
		return s.evictExcess(ctx, tx)
	})
	if err != nil {
		slog.WarnContext(ctx, "ギャラリーへの保存に失敗しました", "id", item.ID, "error", err)
		return nil, &domain.StorageError{Op: "insert", Err: err}
	}
	return item, nil
}

// evictExcess は件数が上限を超えている分だけ、createdAt の古い順に削除します。
func (s *Store) evictExcess(ctx context.Context, tx *bolt.Tx) error {
	idx := tx.Bucket(createdIndexBucket)
	items := tx.Bucket(itemsBucket)

	count := 0
	c := idx.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		count++
	}
	excess := count - s.capacity
	if excess <= 0 {
		return nil
	}

	// カーソル走査中の削除は避け、対象を先に集める
	type victim struct{ key, id []byte }
	victims := make([]victim, 0, excess)
	for k, v := c.First(); k != nil && len(victims) < excess; k, v = c.Next() {
		victims = append(victims, victim{key: append([]byte(nil), k...), id: append([]byte(nil), v...)})
	}

	for _, v := range victims {
		if err := idx.Delete(v.key); err != nil {
			return err
		}
		if err := items.Delete(v.id); err != nil {
			return err
		}
		slog.DebugContext(ctx, "古いギャラリーアイテムを削除しました", "id", string(v.id))
	}
	return nil
}

// ListRecent は新しい順に最大 Capacity 件を返します。作成日時が同じ場合は後に追加したものが先です。
func (s *Store) ListRecent(ctx context.Context) ([]domain.GalleryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list", Err: err}
	}

	result := make([]domain.GalleryItem, 0, s.capacity)
	err := s.db.View(func(tx *bolt.Tx) error {
		items := tx.Bucket(itemsBucket)
		c := tx.Bucket(createdIndexBucket).Cursor()
		for k, id := c.Last(); k != nil && len(result) < s.capacity; k, id = c.Prev() {
			val := items.Get(id)
			if val == nil {
				return fmt.Errorf("インデックスに対応するアイテムがありません: %s", id)
			}
			var item domain.GalleryItem
			if err := json.Unmarshal(val, &item); err != nil {
				return fmt.Errorf("アイテムの復元に失敗しました (%s): %w", id, err)
			}
			result = append(result, item)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "list", Err: err}
	}
	return result, nil
}

// Get は ID を指定してアイテムを 1 件取得します。存在しない場合は domain.ErrItemNotFound を返します。
func (s *Store) Get(ctx context.Context, id string) (*domain.GalleryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "get", Err: err}
	}

	var item *domain.GalleryItem
	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(itemsBucket).Get([]byte(id))
		if val == nil {
			return nil
		}
		item = &domain.GalleryItem{}
		return json.Unmarshal(val, item)
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	return item, nil
}

// Count は保存されているアイテム数を返します。
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, &domain.StorageError{Op: "count", Err: err}
	}

	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(itemsBucket).ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	if err != nil {
		return 0, &domain.StorageError{Op: "count", Err: err}
	}
	return n, nil
}

// ClearAll はすべてのアイテムを削除します。空のストアに対しても成功します。
func (s *Store) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "clear", Err: err}
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{itemsBucket, createdIndexBucket} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "ギャラリーの全削除に失敗しました", "error", err)
		return &domain.StorageError{Op: "clear", Err: err}
	}
	return nil
}

// indexKey は createdAt の昇順、同時刻なら挿入順に並ぶキーを作ります。
// 符号ビットを反転して 1970 年以前の時刻でも順序が保たれるようにしています。
func indexKey(createdAt time.Time, seq uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(createdAt.UnixNano())^(1<<63))
	binary.BigEndian.PutUint64(key[8:], seq)
	return key
}
