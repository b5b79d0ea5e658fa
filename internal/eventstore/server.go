package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nao1215/hrm/pkg/event"
	"github.com/nao1215/hrm/pkg/middleware"
	_ "modernc.org/sqlite"
)

// Server はイベントストアサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// store はイベントストア。
	store *Store
}

// NewServer は設定から新しいイベントストアサーバーを生成する。
func NewServer(cfg Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	s, err := newServer(sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	s.port = cfg.Port
	return s, nil
}

func newServer(sqlDB *sql.DB) (*Server, error) {
	if err := initSchema(context.Background(), sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router: router,
		db:     sqlDB,
		store:  NewStore(sqlDB),
	}
	s.setupRoutes()
	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Close はDB接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		events := api.Group("/events")
		{
			// イベントの追記
			events.POST("", s.handleAppendEvent())
			// AggregateIDによるイベント取得
			events.GET("/aggregate/:aggregate_id", s.handleGetEventsByAggregateID())
			// イベントタイプによるイベント取得
			events.GET("/type/:event_type", s.handleGetEventsByType())
			// 日時指定によるイベント取得（クエリパラメータ: since）
			events.GET("/since", s.handleGetEventsSince())
			// AggregateIDの最新バージョン取得
			events.GET("/aggregate/:aggregate_id/version", s.handleGetLatestVersion())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "eventstore"})
	})
}

// appendEventRequest はイベント追記リクエストのJSON構造。
// id と created_at は省略可能で、省略時はサーバー側で設定する。
type appendEventRequest struct {
	// ID はイベントの一意識別子。再送時は同じ値を指定する。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id" binding:"required"`
	// AggregateType は対象エンティティの種類。
	AggregateType string `json:"aggregate_type" binding:"required"`
	// EventType はイベントの種類。
	EventType string `json:"event_type" binding:"required"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data" binding:"required"`
	// CreatedAt はイベントが発生した日時。
	CreatedAt time.Time `json:"created_at"`
}

// handleAppendEvent はイベントの追記を処理するハンドラを返す。
func (s *Server) handleAppendEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req appendEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if !json.Valid(req.Data) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dataが不正なJSONです"})
			return
		}

		ev := event.Event{
			ID:            req.ID,
			AggregateID:   req.AggregateID,
			AggregateType: event.AggregateType(req.AggregateType),
			EventType:     event.Type(req.EventType),
			Data:          req.Data,
			CreatedAt:     req.CreatedAt,
		}
		if ev.ID == "" {
			ev.ID = uuid.New().String()
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = time.Now()
		}

		stored, err := s.store.Append(c.Request.Context(), ev)
		if err != nil {
			if errors.Is(err, ErrDuplicateEvent) {
				c.JSON(http.StatusConflict, gin.H{"error": "同じIDのイベントが既に存在します"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの追記に失敗しました"})
			log.Printf("イベント追記エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, stored)
	}
}

// handleGetEventsByAggregateID はAggregateIDによるイベント取得を処理するハンドラを返す。
func (s *Server) handleGetEventsByAggregateID() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := s.store.ListByAggregate(c.Request.Context(), c.Param("aggregate_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

// handleGetEventsByType はイベントタイプによるイベント取得を処理するハンドラを返す。
func (s *Server) handleGetEventsByType() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := s.store.ListByType(c.Request.Context(), event.Type(c.Param("event_type")))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

// handleGetEventsSince は日時指定によるイベント取得を処理するハンドラを返す。
// since はRFC3339形式で指定する。
func (s *Server) handleGetEventsSince() gin.HandlerFunc {
	return func(c *gin.Context) {
		since, err := time.Parse(time.RFC3339, c.Query("since"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sinceはRFC3339形式で指定してください"})
			return
		}

		events, err := s.store.ListSince(c.Request.Context(), since)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

// handleGetLatestVersion はAggregateIDの最新バージョン取得を処理するハンドラを返す。
func (s *Server) handleGetLatestVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		aggregateID := c.Param("aggregate_id")
		version, err := s.store.LatestVersion(c.Request.Context(), aggregateID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "最新バージョンの取得に失敗しました"})
			log.Printf("最新バージョン取得エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"aggregate_id": aggregateID, "version": version})
	}
}
