package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the unified JSON envelope for every REST endpoint.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

const (
	CodeSuccess = 0

	// Request errors 10000-10999
	CodeInvalidParams = 10001

	// Room and game errors 20000-20999
	CodeRoomNotFound  = 20001
	CodeRoomFull      = 20002
	CodeUnknownPlayer = 20003
	CodeNotHost       = 20004
	CodeTooFewPlayers = 20005
	CodeInvalidPhase  = 20006
	CodeNotYourTurn   = 20007
	CodeIllegalBid    = 20008
	CodeNotBidWinner  = 20009
	CodeInvalidSuit   = 20010
	CodeUnknownCard   = 20011
	CodeRuleViolation = 20012

	// System errors 50000-50999
	CodeServerError = 50000
)

var codeMessages = map[int]string{
	CodeSuccess:       "success",
	CodeInvalidParams: "invalid request parameters",
	CodeRoomNotFound:  "room not found",
	CodeRoomFull:      "room is full",
	CodeUnknownPlayer: "player is not in this room",
	CodeNotHost:       "only the host can do that",
	CodeTooFewPlayers: "not enough players",
	CodeInvalidPhase:  "action not allowed in the current phase",
	CodeNotYourTurn:   "not your turn",
	CodeIllegalBid:    "illegal bid",
	CodeNotBidWinner:  "only the bid winner can do that",
	CodeInvalidSuit:   "invalid suit",
	CodeUnknownCard:   "card is not in your hand",
	CodeRuleViolation: "play violates the rules",
	CodeServerError:   "internal server error",
}

// Success writes a 200 envelope carrying data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error writes an envelope with the canonical message for code.
func Error(c *gin.Context, code int) {
	ErrorWithMsg(c, code, codeMessages[code])
}

// ErrorWithMsg writes an envelope with a custom message.
func ErrorWithMsg(c *gin.Context, code int, message string) {
	if message == "" {
		message = "unknown error"
	}
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}
