package common

import (
	"context"
	"sort"
	"time"
	"vrs/src/config"
	"vrs/src/db"
	"vrs/src/models"
	"vrs/src/models/scopes"
	"vrs/src/types"
	"vrs/src/utils"
)

type DailyRevenue struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

type RevenueReport struct {
	From       string             `json:"from,omitempty"`
	To         string             `json:"to,omitempty"`
	Total      float64            `json:"total"`
	Count      int                `json:"count"`
	Daily      []DailyRevenue     `json:"daily"`
	ByProvider map[string]float64 `json:"by_provider"`
}

type VehicleRentals struct {
	VehicleID uint    `json:"vehicle_id"`
	Brand     string  `json:"brand"`
	PlateNo   string  `json:"plate_no"`
	Rentals   int     `json:"rentals"`
	Revenue   float64 `json:"revenue"`
}

type RentalAnalytics struct {
	TotalOrders   int              `json:"total_orders"`
	ByStatus      map[string]int   `json:"by_status"`
	AverageDays   float64          `json:"average_days"`
	BookedRevenue float64          `json:"booked_revenue"`
	TopVehicles   []VehicleRentals `json:"top_vehicles"`
}

type VehicleSummary struct {
	VehicleRentals
	Status          types.VehicleStatus `json:"status"`
	MaintenanceCost float64             `json:"maintenance_cost"`
}

type VehicleReport struct {
	ByStatus map[string]int   `json:"by_status"`
	Vehicles []VehicleSummary `json:"vehicles"`
}

// billable orders are the ones whose payment was confirmed
var billableStatuses = []types.RentalOrderStatus{types.RENTAL_PAID, types.RENTAL_IN_SESSION, types.RENTAL_COMPLETED}

func isBillable(s types.RentalOrderStatus) bool {
	for _, b := range billableStatuses {
		if b == s {
			return true
		}
	}
	return false
}

// BuildRevenueReport sums completed payments per day over [from, to].
func BuildRevenueReport(ctx context.Context, actor types.Actor, filters types.ReportQueryFilters) (*RevenueReport, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	from, to, err := utils.ParseDateRange(filters.From, filters.To)
	if err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := db.WithContext(ctx).
		Preload("PaymentAccount").
		Scopes(scopes.WithStatus(string(types.PAYMENT_COMPLETED)), scopes.CreatedBetween(from, to)).
		Order("created_at ASC").
		Find(&payments).
		Error; err != nil {
		return nil, err
	}
	report := &RevenueReport{
		From:       filters.From,
		To:         filters.To,
		Daily:      []DailyRevenue{},
		ByProvider: map[string]float64{},
	}
	index := map[string]int{}
	for _, p := range payments {
		day := reportDay(p.CreatedAt)
		i, ok := index[day]
		if !ok {
			i = len(report.Daily)
			index[day] = i
			report.Daily = append(report.Daily, DailyRevenue{Date: day})
		}
		report.Daily[i].Amount += p.TotalAmount
		report.Daily[i].Count++
		report.Total += p.TotalAmount
		report.Count++
		if p.PaymentAccount != nil {
			report.ByProvider[p.PaymentAccount.Provider] += p.TotalAmount
		}
	}
	return report, nil
}

// BuildRentalAnalytics summarizes orders created in [from, to].
func BuildRentalAnalytics(ctx context.Context, actor types.Actor, filters types.ReportQueryFilters) (*RentalAnalytics, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	from, to, err := utils.ParseDateRange(filters.From, filters.To)
	if err != nil {
		return nil, err
	}
	var orders []models.RentalOrder
	if err := db.WithContext(ctx).
		Preload("Vehicle").
		Scopes(scopes.CreatedBetween(from, to)).
		Find(&orders).
		Error; err != nil {
		return nil, err
	}
	report := &RentalAnalytics{ByStatus: map[string]int{}, TopVehicles: []VehicleRentals{}}
	perVehicle := map[uint]*VehicleRentals{}
	totalDays := 0
	for i := range orders {
		o := &orders[i]
		report.TotalOrders++
		report.ByStatus[string(o.Status)]++
		totalDays += o.Days()
		v, ok := perVehicle[o.VehicleID]
		if !ok {
			v = &VehicleRentals{VehicleID: o.VehicleID}
			if o.Vehicle != nil {
				v.Brand = o.Vehicle.Brand
				v.PlateNo = o.Vehicle.PlateNo
			}
			perVehicle[o.VehicleID] = v
		}
		v.Rentals++
		if isBillable(o.Status) {
			report.BookedRevenue += o.TotalAmount
			v.Revenue += o.TotalAmount
		}
	}
	if report.TotalOrders > 0 {
		report.AverageDays = float64(totalDays) / float64(report.TotalOrders)
	}
	for _, v := range perVehicle {
		report.TopVehicles = append(report.TopVehicles, *v)
	}
	sort.Slice(report.TopVehicles, func(i, j int) bool {
		a, b := report.TopVehicles[i], report.TopVehicles[j]
		if a.Rentals != b.Rentals {
			return a.Rentals > b.Rentals
		}
		return a.VehicleID < b.VehicleID
	})
	if len(report.TopVehicles) > 5 {
		report.TopVehicles = report.TopVehicles[:5]
	}
	return report, nil
}

// BuildVehicleReport lists every vehicle with its rentals, revenue and maintenance
// cost over [from, to].
func BuildVehicleReport(ctx context.Context, actor types.Actor, filters types.ReportQueryFilters) (*VehicleReport, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	from, to, err := utils.ParseDateRange(filters.From, filters.To)
	if err != nil {
		return nil, err
	}
	conn := db.WithContext(ctx)
	var vehicles []models.Vehicle
	if err := conn.Order("id ASC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	var orders []models.RentalOrder
	if err := conn.Scopes(scopes.CreatedBetween(from, to)).Find(&orders).Error; err != nil {
		return nil, err
	}
	var requests []models.MaintenanceRequest
	if err := conn.Scopes(scopes.CreatedBetween(from, to)).Find(&requests).Error; err != nil {
		return nil, err
	}

	report := &VehicleReport{ByStatus: map[string]int{}, Vehicles: make([]VehicleSummary, 0, len(vehicles))}
	index := map[uint]int{}
	for i, v := range vehicles {
		report.ByStatus[string(v.Status)]++
		index[v.ID] = i
		report.Vehicles = append(report.Vehicles, VehicleSummary{
			VehicleRentals: VehicleRentals{VehicleID: v.ID, Brand: v.Brand, PlateNo: v.PlateNo},
			Status:         v.Status,
		})
	}
	for _, o := range orders {
		i, ok := index[o.VehicleID]
		if !ok {
			continue
		}
		report.Vehicles[i].Rentals++
		if isBillable(o.Status) {
			report.Vehicles[i].Revenue += o.TotalAmount
		}
	}
	for _, r := range requests {
		i, ok := index[r.VehicleID]
		if !ok || r.Cost == nil {
			continue
		}
		report.Vehicles[i].MaintenanceCost += *r.Cost
	}
	return report, nil
}

func reportDay(t time.Time) string {
	return t.UTC().Format(config.DATE_PARSE_FORMAT)
}
