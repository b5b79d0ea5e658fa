package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/hrm/pkg/event"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateEvent は同じIDのイベントが既に追記済みであることを表す。
var ErrDuplicateEvent = errors.New("同じIDのイベントが既に存在します")

// timeLayout は created_at の保存書式。固定長にして文字列比較で日時の大小を判定できるようにする。
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// StoredEvent は永続化済みのイベント。
type StoredEvent struct {
	event.Event
	// Version はAggregateID内での連番。
	Version int64 `json:"version"`
}

// Store はイベントを追記専用で保存するSQLiteストア。
type Store struct {
	db *sql.DB
}

// NewStore は新しいストアを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append はイベントを追記し、採番したバージョン付きで返す。
// バージョンはINSERT文の中で採番するため、同じAggregateIDへの追記が重なっても欠番や重複は生じない。
// 同じIDのイベントが既に存在する場合は ErrDuplicateEvent を返す。
func (s *Store) Append(ctx context.Context, ev event.Event) (StoredEvent, error) {
	stored := StoredEvent{Event: ev}
	stored.CreatedAt = ev.CreatedAt.UTC()

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO events (id, aggregate_id, aggregate_type, event_type, data, version, created_at)
		 SELECT ?, ?, ?, ?, ?, COALESCE(MAX(version), 0) + 1, ?
		 FROM events WHERE aggregate_id = ?
		 RETURNING version`,
		stored.ID, stored.AggregateID, string(stored.AggregateType), string(stored.EventType),
		string(stored.Data), stored.CreatedAt.Format(timeLayout), stored.AggregateID,
	).Scan(&stored.Version)
	if err != nil {
		if isConstraintError(err) {
			return StoredEvent{}, fmt.Errorf("%w: id=%s", ErrDuplicateEvent, ev.ID)
		}
		return StoredEvent{}, fmt.Errorf("イベントの追記に失敗: %w", err)
	}
	return stored, nil
}

// isConstraintError はSQLiteの制約違反エラーかどうかを返す。
func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// ListByAggregate はAggregateIDのイベントをバージョン順に返す。
func (s *Store) ListByAggregate(ctx context.Context, aggregateID string) ([]StoredEvent, error) {
	return s.list(ctx, `WHERE aggregate_id = ? ORDER BY version`, aggregateID)
}

// ListByType はイベントタイプのイベントを作成日時順に返す。
func (s *Store) ListByType(ctx context.Context, eventType event.Type) ([]StoredEvent, error) {
	return s.list(ctx, `WHERE event_type = ? ORDER BY created_at, rowid`, string(eventType))
}

// ListSince は指定日時より後に作成されたイベントを作成日時順に返す。
func (s *Store) ListSince(ctx context.Context, since time.Time) ([]StoredEvent, error) {
	return s.list(ctx, `WHERE created_at > ? ORDER BY created_at, rowid`, since.UTC().Format(timeLayout))
}

// LatestVersion はAggregateIDの最新バージョンを返す。イベントがない場合は0。
func (s *Store) LatestVersion(ctx context.Context, aggregateID string) (int64, error) {
	var version int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = ?`, aggregateID,
	).Scan(&version); err != nil {
		return 0, fmt.Errorf("最新バージョンの取得に失敗: %w", err)
	}
	return version, nil
}

func (s *Store) list(ctx context.Context, where string, arg any) ([]StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, aggregate_id, aggregate_type, event_type, data, version, created_at FROM events `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗: %w", err)
	}
	defer rows.Close()

	events := make([]StoredEvent, 0)
	for rows.Next() {
		var (
			e                     StoredEvent
			aggregateType, evType string
			data, createdAt       string
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &aggregateType, &evType, &data, &e.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("イベントの読み取りに失敗: %w", err)
		}
		e.AggregateType = event.AggregateType(aggregateType)
		e.EventType = event.Type(evType)
		e.Data = json.RawMessage(data)
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("作成日時の解析に失敗: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗: %w", err)
	}
	return events, nil
}
