package dto

import (
	"time"

	"github.com/jvaldes/apptrack/internal/tracker/domain"
	"github.com/jvaldes/apptrack/internal/tracker/stats"
)

type CreateApplicationRequest struct {
	Company         string `json:"company" binding:"required"`
	Role            string `json:"role" binding:"required"`
	OfferURL        string `json:"offerUrl"`
	ApplicationDate string `json:"applicationDate"` // YYYY-MM-DD; empty means today
	Status          string `json:"status"`          // empty means Applied
	Notes           string `json:"notes"`
	FollowUpDate    string `json:"followUpDate"`
	ResponseDate    string `json:"responseDate"`
	Tags            string `json:"tags"`
	ContactName     string `json:"contactName"`
	ContactEmail    string `json:"contactEmail"`
	OfferedSalary   string `json:"offeredSalary"`
	Location        string `json:"location"`
	WorkMode        string `json:"workMode"`
}

// UpdateApplicationRequest carries a partial update. Absent fields leave the
// stored value untouched; an empty string on an optional date clears it.
type UpdateApplicationRequest struct {
	Company         *string `json:"company"`
	Role            *string `json:"role"`
	OfferURL        *string `json:"offerUrl"`
	ApplicationDate *string `json:"applicationDate"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
	FollowUpDate    *string `json:"followUpDate"`
	ResponseDate    *string `json:"responseDate"`
	Tags            *string `json:"tags"`
	ContactName     *string `json:"contactName"`
	ContactEmail    *string `json:"contactEmail"`
	OfferedSalary   *string `json:"offeredSalary"`
	Location        *string `json:"location"`
	WorkMode        *string `json:"workMode"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListApplicationsRequest struct {
	Status   string `form:"status"`
	Company  string `form:"company"`
	Tags     string `form:"tags"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	Order    string `form:"order"` // asc or desc; default desc
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type ApplicationDTO struct {
	ID              int64   `json:"id"`
	Company         string  `json:"company"`
	Role            string  `json:"role"`
	OfferURL        string  `json:"offerUrl"`
	ApplicationDate string  `json:"applicationDate"`
	Status          string  `json:"status"`
	Notes           string  `json:"notes"`
	FollowUpDate    *string `json:"followUpDate"`
	ResponseDate    *string `json:"responseDate"`
	Tags            string  `json:"tags"`
	ContactName     string  `json:"contactName"`
	ContactEmail    string  `json:"contactEmail"`
	OfferedSalary   string  `json:"offeredSalary"`
	Location        string  `json:"location"`
	WorkMode        string  `json:"workMode"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

type ListApplicationsResponse struct {
	Applications []ApplicationDTO `json:"applications"`
	Total        int              `json:"total"`
	Page         int              `json:"page"`
	TotalPages   int              `json:"totalPages"`
}

type FollowUpItem struct {
	ID           int64   `json:"id"`
	Company      string  `json:"company"`
	Role         string  `json:"role"`
	FollowUpDate *string `json:"followUpDate"`
	Status       string  `json:"status"`
}

type FollowUpsResponse struct {
	Count int            `json:"count"`
	Items []FollowUpItem `json:"items"`
}

type DashboardResponse struct {
	Stats             *stats.Dashboard `json:"stats"`
	UpcomingFollowUps []FollowUpItem   `json:"upcomingFollowUps"`
}

type ImportResponse struct {
	Success  bool `json:"success"`
	Imported int  `json:"imported"`
}

// FromApplication converts a domain record to its JSON representation.
func FromApplication(app *domain.Application) ApplicationDTO {
	return ApplicationDTO{
		ID:              app.ID,
		Company:         app.Company,
		Role:            app.Role,
		OfferURL:        app.OfferURL,
		ApplicationDate: app.ApplicationDate.Format(domain.DateLayout),
		Status:          app.Status.String(),
		Notes:           app.Notes,
		FollowUpDate:    optionalDate(app.FollowUpDate),
		ResponseDate:    optionalDate(app.ResponseDate),
		Tags:            app.Tags,
		ContactName:     app.ContactName,
		ContactEmail:    app.ContactEmail,
		OfferedSalary:   app.OfferedSalary,
		Location:        app.Location,
		WorkMode:        app.WorkMode,
		CreatedAt:       app.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       app.UpdatedAt.Format(time.RFC3339),
	}
}

// FromApplications converts a slice of domain records.
func FromApplications(apps []domain.Application) []ApplicationDTO {
	out := make([]ApplicationDTO, len(apps))
	for i := range apps {
		out[i] = FromApplication(&apps[i])
	}
	return out
}

// FollowUpItems projects applications onto the pending-followups shape.
func FollowUpItems(apps []domain.Application) []FollowUpItem {
	out := make([]FollowUpItem, len(apps))
	for i, app := range apps {
		out[i] = FollowUpItem{
			ID:           app.ID,
			Company:      app.Company,
			Role:         app.Role,
			FollowUpDate: optionalDate(app.FollowUpDate),
			Status:       app.Status.String(),
		}
	}
	return out
}

func optionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}
