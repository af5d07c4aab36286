package response

import (
	"devhours-api/internal/usecase/queries"
)

type PurchaseListResponse struct {
	Purchases  []*queries.PurchaseView `json:"purchases"`
	Pagination queries.Pagination      `json:"pagination"`
}

type RedemptionListResponse struct {
	Redemptions []*queries.RedemptionView `json:"redemptions"`
	Pagination  queries.Pagination        `json:"pagination"`
}

type ActivityListResponse struct {
	Activity   []*queries.ActivityView `json:"activity"`
	Pagination queries.Pagination      `json:"pagination"`
}
