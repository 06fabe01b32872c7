package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playstreak/puzzlelog/internal/puzzle"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// HealthResponse maps dependency name to its check status.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

// Path and query parameter shapes. The reflector requires every {placeholder}
// in an operation's path to be declared by a request structure.
type gamePathParams struct {
	GameID string `path:"gameID"`
}

type recordPathParams struct {
	RecordID string `path:"recordID"`
}

type followPathParams struct {
	TargetUserID string `path:"targetUserID"`
}

type listQueryParams struct {
	GameID string `query:"gameId"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

type statsParams struct {
	GameID   string `path:"gameID"`
	Timezone string `query:"timezone"`
	Field    string `query:"field"`
}

type leaderboardParams struct {
	GameID string `path:"gameID"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
	Since  string `query:"since"`
	Filter string `query:"filter"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "PuzzleLog API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for logging daily puzzle results and derived statistics.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/auth/register
	postRegister, _ := r.NewOperationContext(http.MethodPost, "/api/auth/register")
	postRegister.SetSummary("Register")
	postRegister.SetDescription("Creates a user account and returns a session token.")
	postRegister.AddReqStructure(RegisterRequest{})
	postRegister.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postRegister)

	// POST /api/auth/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/auth/login")
	postLogin.SetSummary("Login")
	postLogin.SetDescription("Authenticates with name and password, returns a session token.")
	postLogin.AddReqStructure(RegisterRequest{})
	postLogin.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/auth/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/auth/logout")
	postLogout.SetSummary("Logout")
	postLogout.SetDescription("Invalidates the bearer session token.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/games
	listGames, _ := r.NewOperationContext(http.MethodGet, "/api/games")
	listGames.SetSummary("List games")
	listGames.SetDescription("Returns the game catalog.")
	listGames.AddRespStructure([]puzzle.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listGames)

	// POST /api/records
	postRecord, _ := r.NewOperationContext(http.MethodPost, "/api/records")
	postRecord.SetSummary("Log a result")
	postRecord.SetDescription("Logs one puzzle result from share text or manual scores. Same-day resubmission replaces the existing record. Requires Bearer token.")
	postRecord.AddReqStructure(RecordRequest{})
	postRecord.AddRespStructure(puzzle.GameRecord{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRecord.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postRecord.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postRecord.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postRecord)

	// POST /api/records/bulk
	postBulk, _ := r.NewOperationContext(http.MethodPost, "/api/records/bulk")
	postBulk.SetSummary("Import results")
	postBulk.SetDescription("Imports up to 100 results sequentially, reporting per-item failures. Requires Bearer token.")
	postBulk.AddReqStructure(BulkRecordsRequest{})
	postBulk.AddRespStructure(BulkRecordsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postBulk.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postBulk.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postBulk)

	// GET /api/records
	getRecords, _ := r.NewOperationContext(http.MethodGet, "/api/records")
	getRecords.SetSummary("List records")
	getRecords.SetDescription("Returns the caller's records for a game, newest first. Requires Bearer token.")
	getRecords.AddReqStructure(listQueryParams{})
	getRecords.AddRespStructure([]puzzle.GameRecord{}, openapi.WithHTTPStatus(http.StatusOK))
	getRecords.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getRecords)

	// DELETE /api/records/{recordID}
	deleteRecord, _ := r.NewOperationContext(http.MethodDelete, "/api/records/{recordID}")
	deleteRecord.SetSummary("Delete record")
	deleteRecord.SetDescription("Deletes one of the caller's records. Requires Bearer token.")
	deleteRecord.AddReqStructure(recordPathParams{})
	deleteRecord.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteRecord.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteRecord.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteRecord)

	// GET /api/stats/{gameID}
	getStats, _ := r.NewOperationContext(http.MethodGet, "/api/stats/{gameID}")
	getStats.SetSummary("Stats and streaks")
	getStats.SetDescription("Returns aggregates and streaks for the caller's history in one game. Rate limited. Requires Bearer token.")
	getStats.AddReqStructure(statsParams{})
	getStats.AddRespStructure(StatsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getStats.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getStats.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusTooManyRequests))
	getStats.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getStats)

	// POST /api/follow
	postFollow, _ := r.NewOperationContext(http.MethodPost, "/api/follow")
	postFollow.SetSummary("Follow a user")
	postFollow.SetDescription("Follows another user. Rate limited. Requires Bearer token.")
	postFollow.AddReqStructure(FollowRequest{})
	postFollow.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusCreated))
	postFollow.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postFollow.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postFollow.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusTooManyRequests))
	postFollow.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postFollow)

	// DELETE /api/follow/{targetUserID}
	deleteFollow, _ := r.NewOperationContext(http.MethodDelete, "/api/follow/{targetUserID}")
	deleteFollow.SetSummary("Unfollow a user")
	deleteFollow.SetDescription("Removes a follow edge. Requires Bearer token.")
	deleteFollow.AddReqStructure(followPathParams{})
	deleteFollow.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteFollow.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteFollow.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteFollow)

	// GET /api/following
	getFollowing, _ := r.NewOperationContext(http.MethodGet, "/api/following")
	getFollowing.SetSummary("List following")
	getFollowing.SetDescription("Returns the users the caller follows. Requires Bearer token.")
	getFollowing.AddRespStructure([]UserInfo{}, openapi.WithHTTPStatus(http.StatusOK))
	getFollowing.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getFollowing)

	// GET /api/followers
	getFollowers, _ := r.NewOperationContext(http.MethodGet, "/api/followers")
	getFollowers.SetSummary("List followers")
	getFollowers.SetDescription("Returns the users following the caller. Requires Bearer token.")
	getFollowers.AddRespStructure([]UserInfo{}, openapi.WithHTTPStatus(http.StatusOK))
	getFollowers.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getFollowers)

	// GET /api/leaderboard
	getBoards, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoards.SetSummary("All leaderboards")
	getBoards.SetDescription("Returns the top entries of every game's leaderboard. Rate limited.")
	getBoards.AddRespStructure(map[string][]puzzle.LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoards.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusTooManyRequests))
	_ = r.AddOperation(getBoards)

	// GET /api/leaderboard/{gameID}
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard/{gameID}")
	getBoard.SetSummary("Game leaderboard")
	getBoard.SetDescription("Returns the ranked leaderboard for one game. Supports limit, offset, since, and filter=following (authenticated). Rate limited.")
	getBoard.AddReqStructure(leaderboardParams{})
	getBoard.AddRespStructure([]puzzle.LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusTooManyRequests))
	_ = r.AddOperation(getBoard)

	// GET /api/leaderboard/{gameID}/rank
	getRank, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard/{gameID}/rank")
	getRank.SetSummary("Caller's rank")
	getRank.SetDescription("Returns the caller's 1-based rank on a game's leaderboard, or -1 when unranked. Rate limited. Requires Bearer token.")
	getRank.AddReqStructure(gamePathParams{})
	getRank.AddRespStructure(RankResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getRank.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusTooManyRequests))
	getRank.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getRank)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE activity stream")
	getEvents.SetDescription("Server-Sent Events stream of follower activity. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// POST /api/admin/login
	postAdminLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postAdminLogin.SetSummary("Admin login")
	postAdminLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postAdminLogin.AddReqStructure(AdminLoginRequest{})
	postAdminLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAdminLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postAdminLogin)

	// POST /api/admin/logout
	postAdminLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postAdminLogout.SetSummary("Admin logout")
	postAdminLogout.SetDescription("Clears admin session and cookie.")
	postAdminLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postAdminLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/games
	adminListGames, _ := r.NewOperationContext(http.MethodGet, "/api/admin/games")
	adminListGames.SetSummary("List games (admin)")
	adminListGames.SetDescription("Returns the full game catalog. Requires admin_session cookie.")
	adminListGames.AddRespStructure([]puzzle.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	adminListGames.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(adminListGames)

	// POST /api/admin/games
	adminCreateGame, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games")
	adminCreateGame.SetSummary("Create game")
	adminCreateGame.SetDescription("Adds a game to the catalog. Requires admin_session cookie.")
	adminCreateGame.AddReqStructure(puzzle.Game{})
	adminCreateGame.AddRespStructure(puzzle.Game{}, openapi.WithHTTPStatus(http.StatusCreated))
	adminCreateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	adminCreateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(adminCreateGame)

	// PUT /api/admin/games/{gameID}
	adminUpdateGame, _ := r.NewOperationContext(http.MethodPut, "/api/admin/games/{gameID}")
	adminUpdateGame.SetSummary("Update game")
	adminUpdateGame.SetDescription("Replaces a game definition. Requires admin_session cookie.")
	adminUpdateGame.AddReqStructure(gamePathParams{})
	adminUpdateGame.AddReqStructure(puzzle.Game{})
	adminUpdateGame.AddRespStructure(puzzle.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	adminUpdateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	adminUpdateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	adminUpdateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(adminUpdateGame)

	// DELETE /api/admin/games/{gameID}
	adminDeleteGame, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/games/{gameID}")
	adminDeleteGame.SetSummary("Delete game")
	adminDeleteGame.SetDescription("Removes a game from the catalog. Requires admin_session cookie.")
	adminDeleteGame.AddReqStructure(gamePathParams{})
	adminDeleteGame.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	adminDeleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	adminDeleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(adminDeleteGame)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
