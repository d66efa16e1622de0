package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeHourly builds n samples 3h apart from start; temperature is the index
// so tests can tell which sample populated a record.
func threeHourly(start time.Time, n int) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{
			Timestamp:    start.Add(time.Duration(i) * 3 * time.Hour),
			TemperatureF: float64(i),
			WindSpeedMph: float64(i) / 2,
			HumidityPct:  50,
			IconCode:     "01d",
			Description:  "clear sky",
		}
	}
	return samples
}

func forecastDates(r Result) []string {
	dates := make([]string, len(r.Forecast))
	for i, rec := range r.Forecast {
		dates[i] = rec.Date
	}
	return dates
}

func TestAggregate_SixDaysOfSamples(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	result, ok := Aggregate("Paris", threeHourly(start, 48), time.UTC)
	require.True(t, ok)

	assert.Equal(t, "01/01/2024", result.Current.Date)
	assert.Equal(t, "Paris", result.Current.LocationName)
	assert.Equal(t, []string{"01/02/2024", "01/03/2024", "01/04/2024", "01/05/2024", "01/06/2024"}, forecastDates(result))

	// Each day is represented by its midnight sample: indices 8, 16, 24, 32, 40.
	for i, rec := range result.Forecast {
		assert.Equal(t, float64((i+1)*8), rec.TemperatureF)
		assert.Equal(t, "Paris", rec.LocationName)
	}
}

func TestAggregate_FortySamplesIsNotPadded(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	result, ok := Aggregate("Paris", threeHourly(start, 40), time.UTC)
	require.True(t, ok)

	assert.Equal(t, "01/01/2024", result.Current.Date)
	assert.Equal(t, []string{"01/02/2024", "01/03/2024", "01/04/2024", "01/05/2024"}, forecastDates(result))
}

func TestAggregate_EmptyInput(t *testing.T) {
	_, ok := Aggregate("Paris", nil, time.UTC)
	assert.False(t, ok)
}

func TestAggregate_SingleSample(t *testing.T) {
	start := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	result, ok := Aggregate("Oslo", threeHourly(start, 1), time.UTC)
	require.True(t, ok)

	assert.Equal(t, "03/10/2024", result.Current.Date)
	assert.NotNil(t, result.Forecast)
	assert.Empty(t, result.Forecast)
}

func TestAggregate_SingleDay(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	result, ok := Aggregate("Oslo", threeHourly(start, 8), time.UTC)
	require.True(t, ok)
	assert.Empty(t, result.Forecast)
}

func TestAggregate_CurrentUsesExactTimestamp(t *testing.T) {
	// First sample late in the day; the next sample already belongs to the
	// following day and must become the first forecast entry.
	start := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)

	result, ok := Aggregate("Lima", threeHourly(start, 3), time.UTC)
	require.True(t, ok)

	assert.Equal(t, "01/01/2024", result.Current.Date)
	assert.Equal(t, float64(0), result.Current.TemperatureF)
	require.Len(t, result.Forecast, 1)
	assert.Equal(t, "01/02/2024", result.Forecast[0].Date)
	assert.Equal(t, float64(1), result.Forecast[0].TemperatureF)
}

func TestAggregate_FirstSampleOfDayWins(t *testing.T) {
	day1 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Timestamp: day1, TemperatureF: 70},
		{Timestamp: day1.Add(12 * time.Hour), TemperatureF: 40, Description: "early low"},
		{Timestamp: day1.Add(15 * time.Hour), TemperatureF: 85, Description: "afternoon high"},
	}

	result, ok := Aggregate("Rome", samples, time.UTC)
	require.True(t, ok)
	require.Len(t, result.Forecast, 1)

	assert.Equal(t, "06/02/2024", result.Forecast[0].Date)
	assert.Equal(t, float64(40), result.Forecast[0].TemperatureF)
	assert.Equal(t, "early low", result.Forecast[0].Description)
}

func TestAggregate_BucketsInConfiguredZone(t *testing.T) {
	// 2024-01-01T03:00Z is still 12/31 at UTC-5.
	est := time.FixedZone("EST", -5*60*60)
	start := time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)

	result, ok := Aggregate("Boston", threeHourly(start, 4), est)
	require.True(t, ok)

	assert.Equal(t, "12/31/2023", result.Current.Date)
	// 06:00Z is 01:00 local on 01/01.
	require.Len(t, result.Forecast, 1)
	assert.Equal(t, "01/01/2024", result.Forecast[0].Date)
	assert.Equal(t, float64(1), result.Forecast[0].TemperatureF)
}

func TestAggregate_ForecastIsBoundedAndStrictlyAscending(t *testing.T) {
	base := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)

	for offsetHours := 0; offsetHours < 24; offsetHours++ {
		for _, n := range []int{1, 2, 7, 9, 17, 40, 48, 80} {
			start := base.Add(time.Duration(offsetHours) * time.Hour)
			result, ok := Aggregate("X", threeHourly(start, n), time.UTC)
			require.True(t, ok)
			require.LessOrEqual(t, len(result.Forecast), MaxForecastDays)

			prev, err := time.Parse(DateLayout, result.Current.Date)
			require.NoError(t, err)
			for _, rec := range result.Forecast {
				d, err := time.Parse(DateLayout, rec.Date)
				require.NoError(t, err)
				require.True(t, d.After(prev), "offset=%d n=%d: %s not after %s", offsetHours, n, rec.Date, prev.Format(DateLayout))
				prev = d
			}
		}
	}
}

func TestAggregate_StopsAtFiveDays(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	result, ok := Aggregate("Paris", threeHourly(start, 80), time.UTC)
	require.True(t, ok)
	assert.Len(t, result.Forecast, MaxForecastDays)
	assert.Equal(t, "01/06/2024", result.Forecast[MaxForecastDays-1].Date)
}
