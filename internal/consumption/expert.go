package consumption

import (
	"fmt"

	"pv-simulator/internal/model"
)

// ItemUsage is the annual consumption of one inventory line.
type ItemUsage struct {
	Category  Category    `json:"category"`
	Name      string      `json:"name"`
	Count     int         `json:"count,omitempty"`
	AnnualKWh float64     `json:"annual_kwh"`
	Monthly   [12]float64 `json:"monthly_kwh"`
}

// Itemizer builds consumption bottom-up from an equipment inventory.
type Itemizer struct {
	Calc Calculator
}

// Itemize returns every inventory line plus the shared heating, hot water and hob categories.
func (it Itemizer) Itemize(h model.Household) ([]ItemUsage, Breakdown) {
	items := it.Items(h.Inventory)

	b := Breakdown{
		CategoryHeating: it.Calc.Heating(h),
		CategoryDHW:     it.Calc.DHW(h),
		CategoryCooking: it.Calc.Cooking(h),
	}
	for _, u := range items {
		b[u.Category] += u.AnnualKWh
	}
	return items, b
}

// Items computes the per-appliance lines of an inventory. A nil inventory yields none.
func (it Itemizer) Items(inv *model.Inventory) []ItemUsage {
	if inv == nil {
		return nil
	}
	t := it.Calc.T.Items
	var out []ItemUsage
	add := func(cat Category, name string, count int, kwh float64, monthly *[12]float64) {
		if kwh <= 0 {
			return
		}
		u := ItemUsage{Category: cat, Name: name, Count: count, AnnualKWh: kwh}
		if monthly != nil {
			u.Monthly = *monthly
		} else {
			u.Monthly = spread(kwh, uniformWeights())
		}
		out = append(out, u)
	}

	for _, f := range inv.Fridges {
		n := countOr1(f.Count)
		kwh := lookup(t.ColdBase, f.Type, 300) * lookup(t.ClassFactor, f.Class, 1) * float64(n)
		add(CategoryRefrigeration, "fridge_"+f.Type, n, kwh, nil)
	}
	for _, f := range inv.Freezers {
		n := countOr1(f.Count)
		kwh := lookup(t.ColdBase, f.Type, 300) * lookup(t.ClassFactor, f.Class, 1) * float64(n)
		add(CategoryRefrigeration, "freezer_"+f.Type, n, kwh, nil)
	}

	if w := inv.Washer; w != nil {
		add(CategoryLaundry, "washer", 1, lookup(t.WasherCycle, w.Class, 0.8)*orDefault(w.CyclesPerWeek, 4)*52, nil)
	}
	if d := inv.Dishwasher; d != nil {
		add(CategoryLaundry, "dishwasher", 1, lookup(t.DishCycle, d.Class, 1.1)*orDefault(d.CyclesPerWeek, 5)*52, nil)
	}
	if d := inv.Dryer; d != nil {
		add(CategoryLaundry, "dryer", 1, lookup(t.DryerCycle, d.Type, 2.0)*orDefault(d.CyclesPerWeek, 3)*52, nil)
	}
	if o := inv.Oven; o != nil {
		usage := o.Usage
		if usage < 1 || usage > 4 {
			usage = 2
		}
		add(CategoryCooking, "oven_"+o.Type, 1, lookup(t.OvenBase, o.Type, 150)*float64(usage), nil)
	}

	for i, tv := range inv.TVs {
		w := lookup(t.TVWatts, tv.Size, 80)
		if tv.OLED {
			w *= t.OLEDFactor
		}
		kwh := w * orDefault(tv.HoursPerDay, t.TVHours) * model.DaysPerYear / 1000
		add(CategoryAudiovisual, fmt.Sprintf("tv_%d_%s", i+1, tv.Size), 1, kwh, nil)
	}
	if b := inv.InternetBox; b != nil {
		kwh := t.BoxKWh
		if b.WithDecoder {
			kwh = t.BoxDecoderKWh
		}
		if b.OffAtNight {
			kwh *= t.BoxNightOff
		}
		add(CategoryAudiovisual, "internet_box", 1, kwh, nil)
	}
	hours := orDefault(inv.ComputerHours, t.ComputerHours)
	add(CategoryAudiovisual, "desktop", inv.Desktops, t.DesktopW*float64(inv.Desktops)*hours*model.DaysPerYear/1000, nil)
	add(CategoryAudiovisual, "laptop", inv.Laptops, t.LaptopW*float64(inv.Laptops)*hours*model.DaysPerYear/1000, nil)
	if c := inv.Console; c != nil {
		w := t.ConsoleOldW
		if c.Current {
			w = t.ConsoleNewW
		}
		add(CategoryAudiovisual, "console", 1, w*orDefault(c.HoursPerDay, t.ConsoleHours)*model.DaysPerYear/1000, nil)
	}

	lightHours := orDefault(inv.LightingHours, t.BulbHours)
	lw := it.Calc.MonthlyWeights(CategoryLighting, 0)
	if n := inv.LEDBulbs; n > 0 {
		kwh := float64(n) * t.LEDBulbW * lightHours * model.DaysPerYear / 1000
		m := spread(kwh, lw)
		add(CategoryLighting, "led_bulbs", n, kwh, &m)
	}
	if n := inv.HalogenBulbs; n > 0 {
		kwh := float64(n) * t.HalogenBulbW * lightHours * model.DaysPerYear / 1000
		m := spread(kwh, lw)
		add(CategoryLighting, "halogen_bulbs", n, kwh, &m)
	}

	if p := inv.Pool; p != nil {
		out = append(out, it.pool(*p)...)
	}
	if s := inv.Spa; s != nil {
		kwh := lookup(t.SpaBase, s.Type, 3000)
		if !s.YearRound {
			kwh *= t.SpaSeasonal
		}
		if !s.TempMaintained {
			kwh *= t.SpaUnheated
		}
		if s.Covered {
			kwh *= t.SpaCovered
		}
		add(CategorySpa, "spa_"+s.Type, 1, kwh, nil)
	}
	for i, v := range inv.Vehicles {
		add(CategoryEV, fmt.Sprintf("ev_%d", i+1), 1, it.VehicleKWh(v), nil)
	}
	return out
}

// VehicleKWh is the energy drawn at the meter to charge one vehicle at home.
func (it Itemizer) VehicleKWh(v model.Vehicle) float64 {
	t := it.Calc.T.Items
	km := orDefault(v.KmPerYear, t.EVKmPerYear)
	per100 := orDefault(v.KWhPer100Km, t.EVKWhPer100)
	share := orDefault(v.HomeShare, 1)
	return km / 100 * per100 * share / lookup(t.ChargerEff, v.Charger, 0.90)
}

func (it Itemizer) pool(p model.Pool) []ItemUsage {
	t := it.Calc.T.Items
	start, end := p.StartMonth, p.EndMonth
	if start < 1 || start > 12 {
		start = t.PoolStart
	}
	if end < 1 || end > 12 {
		end = t.PoolEnd
	}
	months := end - start + 1
	if end < start {
		months = 12 - start + end + 1
	}
	days := float64(months * 30)

	var season [12]float64
	for i := 0; i < months; i++ {
		season[(start-1+i)%12] = 1
	}

	w := p.PumpW
	if w <= 0 {
		w = lookup(t.PoolPumpW, p.PumpSize, 1000)
	}
	var out []ItemUsage
	pump := w * orDefault(p.FiltrationHours, t.PoolHours) * days / 1000
	out = append(out, ItemUsage{
		Category: CategoryPool, Name: "pool_pump", Count: 1,
		AnnualKWh: pump, Monthly: spread(pump, season),
	})
	if p.HeatingW > 0 {
		heat := p.HeatingW * orDefault(p.HeatingHours, 4) * days / 1000
		out = append(out, ItemUsage{
			Category: CategoryPool, Name: "pool_heating", Count: 1,
			AnnualKWh: heat, Monthly: spread(heat, season),
		})
	}
	if p.Robot {
		out = append(out, ItemUsage{
			Category: CategoryPool, Name: "pool_robot", Count: 1,
			AnnualKWh: t.PoolRobotKWh, Monthly: spread(t.PoolRobotKWh, uniformWeights()),
		})
	}
	return out
}

func lookup(m map[string]float64, key string, fallback float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

func orDefault(v, d float64) float64 {
	if v > 0 {
		return v
	}
	return d
}

func countOr1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func uniformWeights() [12]float64 {
	var w [12]float64
	for m := range w {
		w[m] = 1
	}
	return w
}

// spread distributes total over months in proportion to w.
func spread(total float64, w [12]float64) [12]float64 {
	var out [12]float64
	sum := 0.0
	for _, x := range w {
		sum += x
	}
	if sum <= 0 {
		return out
	}
	for m := range out {
		out[m] = total * w[m] / sum
	}
	return out
}
