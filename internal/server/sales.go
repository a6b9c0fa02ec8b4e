package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	salesdomain "github.com/smallbiznis/retailsales/internal/sales/domain"
)

// listSalesQuery binds the raw query string. List parameters accept both
// comma-separated values and repeated keys.
type listSalesQuery struct {
	Search        string   `form:"search"`
	Page          string   `form:"page"`
	Limit         string   `form:"limit"`
	SortField     string   `form:"sortField"`
	SortOrder     string   `form:"sortOrder"`
	Region        []string `form:"region"`
	Gender        []string `form:"gender"`
	Category      []string `form:"category"`
	Tags          []string `form:"tags"`
	PaymentMethod []string `form:"paymentMethod"`
	AgeMin        string   `form:"ageMin"`
	AgeMax        string   `form:"ageMax"`
	DateStart     string   `form:"dateStart"`
	DateEnd       string   `form:"dateEnd"`
}

func (q listSalesQuery) toRequest() salesdomain.ListRequest {
	return salesdomain.ListRequest{
		Search:        q.Search,
		Page:          q.Page,
		Limit:         q.Limit,
		SortField:     q.SortField,
		SortOrder:     q.SortOrder,
		Region:        strings.Join(q.Region, ","),
		Gender:        strings.Join(q.Gender, ","),
		Category:      strings.Join(q.Category, ","),
		Tags:          strings.Join(q.Tags, ","),
		PaymentMethod: strings.Join(q.PaymentMethod, ","),
		AgeMin:        q.AgeMin,
		AgeMax:        q.AgeMax,
		DateStart:     q.DateStart,
		DateEnd:       q.DateEnd,
	}
}

func (s *Server) ListSales(c *gin.Context) {
	var query listSalesQuery
	// string and []string targets never fail to bind
	_ = c.ShouldBindQuery(&query)

	resp, err := s.salesSvc.List(c.Request.Context(), query.toRequest())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
