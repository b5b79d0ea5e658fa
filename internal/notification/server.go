package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/hrm/internal/feed"
	"github.com/nao1215/hrm/pkg/event"
	"github.com/nao1215/hrm/pkg/httpclient"
	"github.com/nao1215/hrm/pkg/middleware"
	_ "modernc.org/sqlite"
)

// Server は通知サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// store は通知ストア。
	store *Store
	// toggler は既読/未読の切り替えを直列化する。
	toggler *feed.Toggler
	// publisher はEvent Storeへのイベント送信を担う。
	publisher *publisher
}

// NewServer は設定から新しい通知サーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(cfg Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	s, err := newServer(sqlDB, cfg.EventStoreURL, middleware.JWTAuth(cfg.JWTSecret), cfg.AllowedOrigins)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	s.port = cfg.Port
	return s, nil
}

// newServer はDB接続と認証ミドルウェアを受け取ってサーバーを組み立てる。
func newServer(sqlDB *sql.DB, eventStoreURL string, auth gin.HandlerFunc, allowedOrigins []string) (*Server, error) {
	if err := initSchema(context.Background(), sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(allowedOrigins))

	store := NewStore(sqlDB)
	s := &Server{
		router:    router,
		db:        sqlDB,
		store:     store,
		toggler:   feed.NewToggler(store),
		publisher: newPublisher(eventStoreURL),
	}
	s.setupRoutes(auth)
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
func (s *Server) setupRoutes(auth gin.HandlerFunc) {
	api := s.router.Group("/api/v1")

	notifications := api.Group("/notifications")
	notifications.Use(auth)
	{
		// 更新一覧の取得
		notifications.GET("", s.handleList())
		// 未読の更新一覧の取得
		notifications.GET("/unread", s.handleListUnread())
		// 詳細ポップアップの内容
		notifications.GET("/:id/detail", s.handleDetail())
		// 既読/未読の切り替え
		notifications.PUT("/:id/toggle", s.handleToggle())
		// 全通知を既読にする
		notifications.PUT("/read-all", s.handleMarkAllSeen())
	}

	// 内部API（他サービスから呼び出される）
	internal := api.Group("/internal")
	{
		internal.POST("/send", s.handleSend())
		internal.GET("/notifications", s.handleInternalList())
		internal.PUT("/notifications/:id/recipients/:emp_id/status", s.handleUpdateStatus())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "notification"})
	})
}

// viewerID は認証済みの閲覧者IDを取得する。取得できない場合は401を返してfalseを返す。
func viewerID(c *gin.Context) (int64, bool) {
	empID, ok := middleware.GetEmpID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "従業員IDが取得できません"})
		return 0, false
	}
	return empID, true
}

// viewerRows は閲覧者の一覧行を新しい順に取得する。
func (s *Server) viewerRows(ctx context.Context, empID int64) ([]feed.Row, error) {
	notifications, err := s.store.ListForViewer(ctx, empID)
	if err != nil {
		return nil, err
	}
	return feed.Rows(notifications, empID)
}

// handleList は閲覧者の更新一覧を返すハンドラ。
// クエリパラメータ status で new, waiting, seen, unseen の絞り込みができる。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		empID, ok := viewerID(c)
		if !ok {
			return
		}

		keep, err := feed.ParseStatusFilter(c.Query("status"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rows, err := s.viewerRows(c.Request.Context(), empID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新一覧の取得に失敗しました"})
			log.Printf("更新一覧取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, feed.Filter(rows, keep))
	}
}

// handleListUnread は閲覧者の未読（new または waiting）の一覧を返すハンドラ。
func (s *Server) handleListUnread() gin.HandlerFunc {
	return func(c *gin.Context) {
		empID, ok := viewerID(c)
		if !ok {
			return
		}

		rows, err := s.viewerRows(c.Request.Context(), empID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "未読一覧の取得に失敗しました"})
			log.Printf("未読一覧取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, feed.Filter(rows, func(r feed.Row) bool { return r.Status.Unseen() }))
	}
}

// detailResponse は詳細ポップアップのJSONレスポンス構造。
type detailResponse struct {
	// ID は通知ID。
	ID string `json:"id"`
	// Subject は件名文字列。
	Subject string `json:"subject"`
	// Available はポップアップを表示できるかどうか。
	Available bool `json:"available"`
	// Kind はポップアップの種類。
	Kind feed.DetailKind `json:"kind"`
	// Detail は件名ごとの詳細。表示できない場合はnull。
	Detail feed.Detail `json:"detail"`
}

// handleDetail は通知の詳細ポップアップの内容を返すハンドラ。
func (s *Server) handleDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		empID, ok := viewerID(c)
		if !ok {
			return
		}

		n, ok := s.loadForViewer(c, empID)
		if !ok {
			return
		}

		d, err := feed.DetailFor(n)
		if err != nil {
			if errors.Is(err, feed.ErrIncompleteNotification) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知詳細の生成に失敗しました"})
			log.Printf("通知詳細生成エラー: %v", err)
			return
		}

		resp := detailResponse{
			ID:        n.ID,
			Subject:   n.Title,
			Available: feed.Available(d),
			Kind:      d.Kind(),
		}
		if resp.Available {
			resp.Detail = d
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleToggle は閲覧者にとっての通知の既読/未読を切り替え、更新後の行を返すハンドラ。
func (s *Server) handleToggle() gin.HandlerFunc {
	return func(c *gin.Context) {
		empID, ok := viewerID(c)
		if !ok {
			return
		}

		n, ok := s.loadForViewer(c, empID)
		if !ok {
			return
		}

		req, err := s.toggler.Toggle(c.Request.Context(), n, empID)
		if err != nil {
			var storeErr *feed.StoreError
			switch {
			case errors.Is(err, feed.ErrToggleInFlight):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, feed.ErrNotFound):
				c.JSON(http.StatusForbidden, gin.H{"error": "この通知を操作する権限がありません"})
			case errors.As(err, &storeErr):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "通知ステータスの更新に失敗しました"})
				log.Printf("通知ステータス更新エラー: %v", err)
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "通知ステータスの更新に失敗しました"})
				log.Printf("通知ステータス切り替えエラー: %v", err)
			}
			return
		}

		s.publisher.statusChanged(c.Request.Context(), req.NotificationID, event.NotificationStatusChangedData{
			EmpID:  req.ViewerID,
			Status: string(req.NewStatus),
		})

		// 書き込み後はストアから読み直した値を返す
		refreshed, err := s.store.Get(c.Request.Context(), n.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の再取得に失敗しました"})
			log.Printf("通知再取得エラー: %v", err)
			return
		}
		row, err := feed.RowFor(refreshed, empID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の再取得に失敗しました"})
			log.Printf("通知行変換エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

// loadForViewer はパスパラメータの通知を取得し、閲覧者が受信者に含まれることを確認する。
// 失敗時はレスポンスを書き込んでfalseを返す。
func (s *Server) loadForViewer(c *gin.Context, empID int64) (feed.Notification, bool) {
	n, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "通知が見つかりません"})
			return feed.Notification{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の取得に失敗しました"})
		log.Printf("通知取得エラー: %v", err)
		return feed.Notification{}, false
	}

	if _, err := feed.StatusFor(n, empID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "この通知を閲覧する権限がありません"})
		return feed.Notification{}, false
	}
	return n, true
}

// handleMarkAllSeen は閲覧者の全通知を既読にするハンドラ。
func (s *Server) handleMarkAllSeen() gin.HandlerFunc {
	return func(c *gin.Context) {
		empID, ok := viewerID(c)
		if !ok {
			return
		}

		ids, err := s.store.MarkAllSeen(c.Request.Context(), empID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "全通知の既読処理に失敗しました"})
			log.Printf("全通知既読処理エラー: %v", err)
			return
		}

		for _, id := range ids {
			s.publisher.statusChanged(c.Request.Context(), id, event.NotificationStatusChangedData{
				EmpID:  empID,
				Status: string(feed.StatusSeen),
			})
		}

		c.JSON(http.StatusOK, gin.H{"message": "全通知を既読にしました", "updated": len(ids)})
	}
}

// sendRequest は通知送信リクエストのJSON構造。
type sendRequest struct {
	// Subject は件名文字列。
	Subject string `json:"subject" binding:"required"`
	// Message は通知メッセージ。
	Message string `json:"message" binding:"required"`
	// Recipients は受信者と初期状態。
	Recipients []feed.RecipientEntry `json:"recipients" binding:"required,min=1"`
	// Employee は対象従業員のスナップショット。
	Employee *feed.EmployeeSnapshot `json:"employee"`
	// TimeOffHistory は休暇申請履歴のスナップショット。
	TimeOffHistory *feed.TimeOffHistorySnapshot `json:"time_off_history"`
	// AnnualTimeOff は年間休暇残高のスナップショット。
	AnnualTimeOff *feed.AnnualTimeOffSnapshot `json:"employee_annual_time_off"`
	// TimeOff は休暇ポリシーのスナップショット。
	TimeOff *feed.TimeOffSnapshot `json:"time_off"`
}

// handleSend は通知を作成しNotificationSentイベントを発行するハンドラ。
func (s *Server) handleSend() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		id, err := s.store.Create(c.Request.Context(), CreateParams{
			Title:          req.Subject,
			Message:        req.Message,
			Recipients:     req.Recipients,
			Employee:       req.Employee,
			TimeOffHistory: req.TimeOffHistory,
			AnnualTimeOff:  req.AnnualTimeOff,
			TimeOff:        req.TimeOff,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidRecipients) || errors.Is(err, ErrNoRecipients) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の作成に失敗しました"})
			log.Printf("通知作成エラー: %v", err)
			return
		}

		empIDs := make([]int64, 0, len(req.Recipients))
		for _, r := range req.Recipients {
			empIDs = append(empIDs, r.EmpID)
		}
		s.publisher.notificationSent(c.Request.Context(), id, event.NotificationSentData{
			Subject:         req.Subject,
			Message:         req.Message,
			RecipientEmpIDs: empIDs,
		})

		c.JSON(http.StatusCreated, gin.H{
			"id":      id,
			"message": "通知を送信しました",
		})
	}
}

// handleInternalList は指定従業員が受信者に含まれる通知をスナップショット付きで返すハンドラ。
func (s *Server) handleInternalList() gin.HandlerFunc {
	return func(c *gin.Context) {
		empID, err := strconv.ParseInt(c.Query("emp_id"), 10, 64)
		if err != nil || empID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "emp_idが不正です"})
			return
		}

		if !matchesPropagatedEmpID(c, empID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "伝播された従業員IDと一致しません"})
			return
		}

		notifications, err := s.store.ListForViewer(c.Request.Context(), empID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知一覧の取得に失敗しました"})
			log.Printf("通知一覧取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, notifications)
	}
}

// matchesPropagatedEmpID は呼び出し元が伝播した従業員IDと対象の従業員IDが一致するかを返す。
// ヘッダーがない呼び出しは対象を限定しない。
func matchesPropagatedEmpID(c *gin.Context, empID int64) bool {
	header := c.GetHeader(httpclient.HeaderEmpID)
	if header == "" {
		return true
	}
	propagated, err := strconv.ParseInt(header, 10, 64)
	return err == nil && propagated == empID
}

// updateStatusRequest は受信者の状態更新リクエストのJSON構造。
type updateStatusRequest struct {
	// Status は新しい状態。
	Status string `json:"status" binding:"required"`
}

// handleUpdateStatus は受信者の状態を書き込むハンドラ。同じ状態の再適用は成功として扱う。
func (s *Server) handleUpdateStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		empID, err := strconv.ParseInt(c.Param("emp_id"), 10, 64)
		if err != nil || empID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "emp_idが不正です"})
			return
		}

		if !matchesPropagatedEmpID(c, empID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "伝播された従業員IDと一致しません"})
			return
		}

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		status, err := feed.ParseStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		desc := feed.RequestDescriptor{
			NotificationID: c.Param("id"),
			ViewerID:       empID,
			NewStatus:      status,
		}
		if err := s.store.UpdateNotificationStatus(c.Request.Context(), desc); err != nil {
			if errors.Is(err, ErrRecipientNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "受信者が見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知ステータスの更新に失敗しました"})
			log.Printf("通知ステータス更新エラー: %v", err)
			return
		}

		s.publisher.statusChanged(c.Request.Context(), desc.NotificationID, event.NotificationStatusChangedData{
			EmpID:  desc.ViewerID,
			Status: string(desc.NewStatus),
		})

		c.JSON(http.StatusOK, desc)
	}
}
