package weather

import "time"

// MaxForecastDays caps the number of per-day forecast records.
const MaxForecastDays = 5

// Aggregate reduces an ascending sample list to a current record plus at most
// MaxForecastDays daily records. The current record uses the first sample and
// its exact timestamp. Each later calendar day (in tz) is represented by the
// first sample that falls on it. ok is false when samples is empty.
func Aggregate(location string, samples []Sample, tz *time.Location) (Result, bool) {
	if len(samples) == 0 {
		return Result{}, false
	}
	if tz == nil {
		tz = time.Local
	}

	first := samples[0]
	result := Result{
		Current:  newRecord(location, first.Timestamp.In(tz), first),
		Forecast: make([]WeatherRecord, 0, MaxForecastDays),
	}

	currentDay := startOfDay(first.Timestamp, tz)
	for _, s := range samples[1:] {
		if len(result.Forecast) >= MaxForecastDays {
			break
		}
		sampleDay := startOfDay(s.Timestamp, tz)
		if sampleDay.Equal(currentDay) {
			continue
		}
		result.Forecast = append(result.Forecast, newRecord(location, sampleDay, s))
		currentDay = sampleDay
	}

	return result, true
}

func startOfDay(ts time.Time, tz *time.Location) time.Time {
	t := ts.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tz)
}
