package admins

import (
	"net/http"
	"strconv"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/accrual"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/utils"
)

// AccrualRunsController serves the admin console's view of past interest
// runs.
type AccrualRunsController struct {
	runs accrual.RunStore
}

func NewAccrualRunsController(runs accrual.RunStore) *AccrualRunsController {
	return &AccrualRunsController{runs: runs}
}

// List handles GET /v3/admin/accrual-runs?page=&limit=
func (c *AccrualRunsController) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	runs, total, err := c.runs.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load accrual runs"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Accrual runs",
		Data: map[string]interface{}{
			"runs":  runs,
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// Latest handles GET /v3/admin/accrual-runs/latest
func (c *AccrualRunsController) Latest(w http.ResponseWriter, r *http.Request) {
	run, err := c.runs.GetLatest(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load latest accrual run"})
		return
	}
	if run == nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "No accrual run recorded yet"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Latest accrual run", Data: run})
}
