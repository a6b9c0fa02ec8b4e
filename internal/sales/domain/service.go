package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/retailsales/pkg/db/pagination"
)

// ListRequest carries the raw query parameters of one sales request.
type ListRequest struct {
	Search        string
	Page          string
	Limit         string
	SortField     string
	SortOrder     string
	Region        string
	Gender        string
	Category      string
	Tags          string
	PaymentMethod string
	AgeMin        string
	AgeMax        string
	DateStart     string
	DateEnd       string
}

type ListResponse struct {
	Data []Transaction  `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

type Service interface {
	List(context.Context, ListRequest) (ListResponse, error)
}

var (
	ErrDataSource   = errors.New("data_source_unavailable")
	ErrQueryTimeout = errors.New("query_timeout")
)
