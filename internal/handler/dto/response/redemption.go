package response

import (
	"devhours-api/internal/usecase/queries"
)

type RequestListResponse struct {
	Requests   []*queries.RequestView `json:"requests"`
	Pagination queries.Pagination     `json:"pagination"`
}
