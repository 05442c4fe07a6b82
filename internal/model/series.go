package model

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	HoursPerDay  = 24
	DaysPerYear  = 365
	HoursPerYear = HoursPerDay * DaysPerYear
)

// monthDays is the calendar of the abstract non-leap year every series is indexed on.
var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// monthStartDay[m] is the day-of-year on which month m begins.
var monthStartDay = func() [13]int {
	var out [13]int
	for m := 0; m < 12; m++ {
		out[m+1] = out[m] + monthDays[m]
	}
	return out
}()

// Series holds one value per hour of a year.
// Index 0 is January 1st 00:00; values are kW averaged over the hour,
// which is numerically the same as kWh for that hour.
type Series []float64

func NewSeries() Series {
	return make(Series, HoursPerYear)
}

// Constant returns a full-year series where every hour equals v.
func Constant(v float64) Series {
	s := NewSeries()
	for i := range s {
		s[i] = v
	}
	return s
}

// Validate enforces the hourly contract: 8760 finite, non-negative values.
// name identifies the series in the returned error.
func (s Series) Validate(name string) error {
	if len(s) != HoursPerYear {
		return &LengthError{Series: name, Got: len(s), Want: HoursPerYear}
	}
	for h, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ContractError{Series: name, Hour: h, Reason: "value is not finite"}
		}
		if v < 0 {
			return &ContractError{Series: name, Hour: h, Reason: "value is negative"}
		}
	}
	return nil
}

func (s Series) Total() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Sum(s)
}

func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// ScaleTo rescales s in place so it sums to total. A zero series is left untouched.
func (s Series) ScaleTo(total float64) Series {
	sum := s.Total()
	if sum <= 0 {
		return s
	}
	floats.Scale(total/sum, s)
	return s
}

// Add accumulates o into s hour by hour.
func (s Series) Add(o Series) Series {
	floats.Add(s, o)
	return s
}

// Monthly sums the series per calendar month.
func (s Series) Monthly() [12]float64 {
	var out [12]float64
	for m := 0; m < 12; m++ {
		lo := monthStartDay[m] * HoursPerDay
		hi := monthStartDay[m+1] * HoursPerDay
		if hi > len(s) {
			hi = len(s)
		}
		if lo >= hi {
			continue
		}
		out[m] = floats.Sum(s[lo:hi])
	}
	return out
}

// HourOfDayMean averages the series per hour of day (the "typical day" profile).
func (s Series) HourOfDayMean() [24]float64 {
	var out [24]float64
	var counts [24]int
	for h, v := range s {
		out[h%HoursPerDay] += v
		counts[h%HoursPerDay]++
	}
	for i := range out {
		if counts[i] > 0 {
			out[i] /= float64(counts[i])
		}
	}
	return out
}

// DayTotals sums the series per day of year.
func (s Series) DayTotals() [DaysPerYear]float64 {
	var out [DaysPerYear]float64
	for d := 0; d < DaysPerYear; d++ {
		lo := d * HoursPerDay
		hi := lo + HoursPerDay
		if hi > len(s) {
			break
		}
		out[d] = floats.Sum(s[lo:hi])
	}
	return out
}

func DayOfHour(h int) int { return h / HoursPerDay }

func HourOfDay(h int) int { return h % HoursPerDay }

// MonthOfDay returns the 0-based calendar month of a day of year.
func MonthOfDay(day int) int {
	for m := 0; m < 12; m++ {
		if day < monthStartDay[m+1] {
			return m
		}
	}
	return 11
}

func MonthOfHour(h int) int { return MonthOfDay(DayOfHour(h)) }

// MonthDays returns the number of days in 0-based month m.
func MonthDays(m int) int { return monthDays[m] }

// IsWeekend classifies day-of-year indices: days 5 and 6 of every 7-day block.
func IsWeekend(day int) bool {
	d := day % 7
	return d == 5 || d == 6
}

// HourIndex maps a calendar timestamp onto the abstract year, ignoring the year itself.
// February 29th has no slot and returns false.
func HourIndex(month time.Month, day, hour int) (int, bool) {
	m := int(month) - 1
	if m < 0 || m > 11 || day < 1 || day > monthDays[m] || hour < 0 || hour > 23 {
		return 0, false
	}
	return (monthStartDay[m]+day-1)*HoursPerDay + hour, true
}
