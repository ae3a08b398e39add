package handlers

import (
	"net/http"
	"strings"

	"colabora/internal/live"
	"colabora/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type LiveHandler struct {
	hub       *live.Hub
	ranking   *services.RankingService
	proposals *services.ProposalService
	comments  *services.CommentService
	log       zerolog.Logger
}

func NewLiveHandler(hub *live.Hub, ranking *services.RankingService, proposals *services.ProposalService, comments *services.CommentService, log zerolog.Logger) *LiveHandler {
	return &LiveHandler{hub: hub, ranking: ranking, proposals: proposals, comments: comments, log: log}
}

// Stream GET /api/live/:topic upgrades to a websocket that receives the
// current state of topic followed by every later snapshot.
func (h *LiveHandler) Stream(c *gin.Context) {
	topic := c.Param("topic")

	// Subscribe before loading the initial state so no update is missed
	// between the two.
	sub := h.hub.Subscribe(topic)

	initial, err := h.current(c, topic)
	if err != nil {
		sub.Cancel()
		writeError(c, h.log, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Cancel()
		h.log.Warn().Err(err).Str("topic", topic).Msg("websocket upgrade failed")
		return
	}
	h.log.Debug().Str("topic", topic).Msg("live subscriber connected")

	go live.Stream(conn, sub, initial, h.log)
}

func (h *LiveHandler) current(c *gin.Context, topic string) (*live.Snapshot, error) {
	ctx := c.Request.Context()

	var payload interface{}
	var err error
	switch {
	case topic == live.TopicRanking:
		payload, err = h.ranking.Leaderboard(ctx, services.DefaultLeaderboardSize)
	case topic == live.TopicFeed:
		payload, err = h.proposals.List(ctx, services.ListQuery{})
	case strings.HasPrefix(topic, live.CommentsTopic("")):
		payload, err = h.comments.List(ctx, strings.TrimPrefix(topic, live.CommentsTopic("")), services.DefaultCommentLimit)
	default:
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	snap, err := live.NewSnapshot(topic, payload)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
