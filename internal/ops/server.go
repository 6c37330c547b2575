package ops

import (
	"context"
	"errors"
	"net/http"
	"time"

	"guildkeeper/internal/giveaway"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Snapshotter exposes the giveaway state; *giveaway.Store satisfies it.
type Snapshotter interface {
	Snapshot() giveaway.Snapshot
}

type GiveawayView struct {
	ID           string     `json:"id"`
	GuildID      string     `json:"guild_id"`
	ChannelID    string     `json:"channel_id"`
	Prize        string     `json:"prize"`
	EndTime      time.Time  `json:"end_time"`
	WinnerCount  int        `json:"winner_count"`
	Participants int        `json:"participants"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

type Server struct {
	http   *http.Server
	logger *zap.Logger
}

func NewRouter(db Pinger, giveaways Snapshotter, started time.Time) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime_seconds": int(time.Since(started).Seconds())})
	})

	router.GET("/giveaways", func(c *gin.Context) {
		snapshot := giveaways.Snapshot()
		active := make([]GiveawayView, 0, len(snapshot.Active))
		for _, record := range snapshot.Active {
			active = append(active, view(record, snapshot.Participants))
		}
		ended := make([]GiveawayView, 0, len(snapshot.Ended))
		for _, record := range snapshot.Ended {
			v := view(record.Record, snapshot.Participants)
			endedAt := record.EndedAt
			v.EndedAt = &endedAt
			ended = append(ended, v)
		}
		c.JSON(http.StatusOK, gin.H{"active": active, "ended": ended})
	})

	return router
}

func view(record giveaway.Record, participants map[string][]string) GiveawayView {
	return GiveawayView{
		ID:           record.ID,
		GuildID:      record.GuildID,
		ChannelID:    record.ChannelID,
		Prize:        record.Prize,
		EndTime:      record.EndTime,
		WinnerCount:  record.WinnerCount,
		Participants: len(participants[record.ID]),
	}
}

func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Start() {
	go func() {
		s.logger.Info("ops endpoint enabled", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("ops server error", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
