/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the API contract, decoupled from the engine types.
  Decimal fields (rates, hours, earnings) marshal as JSON strings via
  shopspring/decimal, so precision survives the wire.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Struct tags drive go-playground/validator; cross-field rules that
  tags cannot express (end_time iff duration_minutes, pay-cycle fields
  paired) are checked in the handlers.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally/timecard-engine/engine"
)

// =============================================================================
// CLIENTS
// =============================================================================

type ClientDTO struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email,omitempty"`
	HourlyRate        decimal.Decimal `json:"hourly_rate"`
	PayCycleInterval  string          `json:"pay_cycle_interval,omitempty"`
	PayCycleStartDate string          `json:"pay_cycle_start_date,omitempty"` // 2006-01-02
}

type ClientRequest struct {
	Name              string          `json:"name" validate:"required"`
	Email             string          `json:"email" validate:"omitempty,email"`
	HourlyRate        decimal.Decimal `json:"hourly_rate"`
	PayCycleInterval  string          `json:"pay_cycle_interval" validate:"omitempty,oneof=weekly biweekly monthly"`
	PayCycleStartDate string          `json:"pay_cycle_start_date" validate:"omitempty,datetime=2006-01-02"`
}

func clientToDTO(c engine.Client) ClientDTO {
	dto := ClientDTO{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		HourlyRate:       c.HourlyRate,
		PayCycleInterval: string(c.PayCycleInterval),
	}
	if c.PayCycleStartDate != nil {
		dto.PayCycleStartDate = c.PayCycleStartDate.UTC().Format("2006-01-02")
	}
	return dto
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

type EntryDTO struct {
	ID              string     `json:"id"`
	ClientID        string     `json:"client_id"`
	Description     string     `json:"description,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int64     `json:"duration_minutes,omitempty"`
}

type EntryRequest struct {
	ClientID        string     `json:"client_id" validate:"required"`
	Description     string     `json:"description"`
	StartTime       time.Time  `json:"start_time" validate:"required"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int64     `json:"duration_minutes" validate:"omitempty,gte=0"`
}

type StartTimerRequest struct {
	ClientID    string `json:"client_id" validate:"required"`
	Description string `json:"description"`
}

type StopTimerRequest struct {
	ID          string `json:"id" validate:"required"`
	Description string `json:"description"`
}

func entryToDTO(ti engine.TimeInterval) EntryDTO {
	return EntryDTO{
		ID:              ti.ID,
		ClientID:        ti.ClientID,
		Description:     ti.Description,
		StartTime:       ti.StartTime,
		EndTime:         ti.EndTime,
		DurationMinutes: ti.DurationMinutes,
	}
}

// =============================================================================
// REPORTS
// =============================================================================

type DashboardDTO struct {
	CurrentShiftHours decimal.Decimal `json:"current_shift_hours"`
	PayCycleEarnings  decimal.Decimal `json:"pay_cycle_earnings"`
	PayCycleLabel     string          `json:"pay_cycle_label"`
	ThisMonthHours    decimal.Decimal `json:"this_month_hours"`
	ThisMonthEarnings decimal.Decimal `json:"this_month_earnings"`
	ActiveClients     int             `json:"active_clients"`
	CompletedEntries  int             `json:"completed_entries"`
}

type ShiftBreakdownDTO struct {
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name"`
	Hours      decimal.Decimal `json:"hours"`
}

type ShiftDTO struct {
	Date          time.Time           `json:"date"` // canonical 06:00 shift key
	ObservedStart time.Time           `json:"observed_start"`
	ObservedEnd   time.Time           `json:"observed_end"`
	TotalHours    decimal.Decimal     `json:"total_hours"`
	BreakHours    decimal.Decimal     `json:"break_hours"`
	Breakdown     []ShiftBreakdownDTO `json:"breakdown"`
}

type ShiftReportDTO struct {
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	PeriodLabel     string          `json:"period_label"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	TotalBreakHours decimal.Decimal `json:"total_break_hours"`
	Shifts          []ShiftDTO      `json:"shifts"`
}

type ClientEarningsDTO struct {
	Client       ClientDTO       `json:"client"`
	TotalMinutes int64           `json:"total_minutes"`
	TotalHours   decimal.Decimal `json:"total_hours"`
	Earnings     decimal.Decimal `json:"earnings"`
	Share        decimal.Decimal `json:"share"` // 0..1 of total earnings
}

type EarningsReportDTO struct {
	TotalEarnings decimal.Decimal     `json:"total_earnings"`
	Clients       []ClientEarningsDTO `json:"clients"`
}

type PHPRateDTO struct {
	Rate      decimal.Decimal `json:"rate"`
	Fallback  bool            `json:"fallback"`
	FetchedAt time.Time       `json:"fetched_at"`
}

func shiftReportToDTO(r engine.ShiftReport) ShiftReportDTO {
	shifts := make([]ShiftDTO, 0, len(r.Shifts))
	for _, s := range r.Shifts {
		breakdown := make([]ShiftBreakdownDTO, 0, len(s.Breakdown))
		for _, b := range s.Breakdown {
			name := b.Client.Name
			if name == "" {
				// Dangling reference: the client was deleted out from
				// under its intervals.
				name = "Unknown client"
			}
			breakdown = append(breakdown, ShiftBreakdownDTO{
				ClientID:   b.Client.ID,
				ClientName: name,
				Hours:      b.Hours,
			})
		}
		shifts = append(shifts, ShiftDTO{
			Date:          s.ShiftKey,
			ObservedStart: s.ObservedStart,
			ObservedEnd:   s.ObservedEnd,
			TotalHours:    s.TotalHours,
			BreakHours:    s.BreakHours,
			Breakdown:     breakdown,
		})
	}
	return ShiftReportDTO{
		PeriodStart:     r.PeriodStart,
		PeriodEnd:       r.PeriodEnd,
		PeriodLabel:     r.PeriodLabel,
		TotalHours:      r.TotalHours,
		TotalBreakHours: r.TotalBreakHours,
		Shifts:          shifts,
	}
}

func earningsReportToDTO(r engine.EarningsReport) EarningsReportDTO {
	clients := make([]ClientEarningsDTO, 0, len(r.Summaries))
	for i, s := range r.Summaries {
		clients = append(clients, ClientEarningsDTO{
			Client:       clientToDTO(s.Client),
			TotalMinutes: s.TotalMinutes,
			TotalHours:   s.TotalHours,
			Earnings:     s.Earnings,
			Share:        r.Shares[i],
		})
	}
	return EarningsReportDTO{TotalEarnings: r.TotalEarnings, Clients: clients}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}
