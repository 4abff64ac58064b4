package controllers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/accrual"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/config"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/utils"
)

// AccrualRunner is the slice of the batch runner the cron gateway needs.
type AccrualRunner interface {
	Run(ctx context.Context, now time.Time) (*accrual.RunReport, error)
}

// CronController translates the external cron trigger into an accrual run.
// The X-CRON-KEY check is the only authentication on this surface; the core
// assumes it always ran first.
type CronController struct {
	cfg    *config.Config
	runner AccrualRunner
	now    func() time.Time
}

func NewCronController(cfg *config.Config, runner AccrualRunner) *CronController {
	return &CronController{cfg: cfg, runner: runner, now: time.Now}
}

type cronRunResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Results *accrual.RunReport `json:"results,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// DailyInterest handles POST /v3/cron/daily-interest. A completed run is a
// 200 even when some accounts failed; only a failure to enumerate at all is
// a 500.
func (c *CronController) DailyInterest(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-CRON-KEY")
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(c.cfg.CronKey)) != 1 {
		utils.WriteJSONRaw(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	report, err := c.runner.Run(r.Context(), c.now())
	switch {
	case errors.Is(err, accrual.ErrAlreadyRan):
		utils.WriteJSONRaw(w, http.StatusOK, cronRunResponse{
			Success: true,
			Message: "Interest already processed for today",
			Results: report,
		})
	case err != nil:
		utils.WriteJSONRaw(w, http.StatusInternalServerError, cronRunResponse{
			Success: false,
			Message: "Daily interest run failed",
			Error:   err.Error(),
		})
	default:
		utils.WriteJSONRaw(w, http.StatusOK, cronRunResponse{
			Success: true,
			Message: "Cron executed",
			Results: report,
		})
	}
}
