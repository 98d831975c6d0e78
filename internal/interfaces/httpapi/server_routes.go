package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/rankings/extract", handler.ExtractRankings)
	mux.HandleFunc("POST /v1/rankings/daily", handler.SaveDailyRankings)
	mux.HandleFunc("POST /v1/rankings/weekly", handler.SaveWeeklyRankings)
	mux.HandleFunc("GET /v1/rankings/daily/{date}", handler.GetDailyRanking)
	mux.HandleFunc("GET /v1/rankings/weekly/{weekStart}/{weekEnd}", handler.GetWeeklyRanking)
	mux.HandleFunc("GET /v1/rankings/overall", handler.GetOverallRanking)
	mux.HandleFunc("GET /v1/rankings/dates", handler.ListRankingDates)

	mux.HandleFunc("POST /v1/players/check", handler.CheckPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("PUT /v1/players/{playerID}", handler.RenamePlayer)

	mux.HandleFunc("POST /v1/daily-stats/check-date", handler.CheckDate)
	mux.HandleFunc("PUT /v1/day-type", handler.SetDayType)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/merge-duplicates", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMergeDuplicatesJob)))
}
