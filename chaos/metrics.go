// Aggregates per-vehicle telemetry from the engine into the summary
// record shown by the `metrics` command.

package chaos

import (
	"fmt"
	"io"

	"github.com/samber/lo"
)

// Metrics is a point-in-time aggregate over all simulated vehicles.
type Metrics struct {
	TotalVehicles   int     // vehicles currently in the simulation
	ActiveVehicles  int     // equal to TotalVehicles; kept for report shape
	AverageSpeed    float64 // arithmetic mean of per-vehicle speed (m/s)
	AverageWaitTime float64 // arithmetic mean of accumulated waiting time (s)
	CO2EmissionsKg  float64 // fleet-wide CO2 sum converted from mg to kg
}

// Metrics samples every vehicle the engine reports and computes the
// aggregate record. When the simulation is not running it returns the
// empty record; with zero vehicles, all-zero fields.
func (c *Controller) Metrics() (Metrics, error) {
	if !c.running {
		return Metrics{}, nil
	}
	ids, err := c.engine.VehicleIDs()
	if err != nil {
		return Metrics{}, fmt.Errorf("listing vehicles: %w", err)
	}
	m := Metrics{TotalVehicles: len(ids), ActiveVehicles: len(ids)}
	if len(ids) == 0 {
		return m, nil
	}

	speeds := make([]float64, 0, len(ids))
	waits := make([]float64, 0, len(ids))
	emissions := make([]float64, 0, len(ids))
	for _, id := range ids {
		speed, err := c.engine.VehicleSpeed(id)
		if err != nil {
			return Metrics{}, fmt.Errorf("sampling vehicle %s: %w", id, err)
		}
		wait, err := c.engine.VehicleAccumulatedWaitingTime(id)
		if err != nil {
			return Metrics{}, fmt.Errorf("sampling vehicle %s: %w", id, err)
		}
		co2, err := c.engine.VehicleCO2Emission(id)
		if err != nil {
			return Metrics{}, fmt.Errorf("sampling vehicle %s: %w", id, err)
		}
		speeds = append(speeds, speed)
		waits = append(waits, wait)
		emissions = append(emissions, co2)
	}

	n := float64(len(ids))
	m.AverageSpeed = lo.Sum(speeds) / n
	m.AverageWaitTime = lo.Sum(waits) / n
	m.CO2EmissionsKg = lo.Sum(emissions) / 1000 // sum, not an average
	return m, nil
}

// Print displays the metrics record as aligned rows.
func (m Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Total Vehicles    : %d\n", m.TotalVehicles)
	fmt.Fprintf(w, "Active Vehicles   : %d\n", m.ActiveVehicles)
	fmt.Fprintf(w, "Average Speed     : %.2f m/s\n", m.AverageSpeed)
	fmt.Fprintf(w, "Average Wait Time : %.2f s\n", m.AverageWaitTime)
	fmt.Fprintf(w, "CO2 Emissions     : %.3f kg\n", m.CO2EmissionsKg)
}
