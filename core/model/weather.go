package model

// Weather is the route-level weather category for a commute day.
type Weather string

const (
	WeatherClear     Weather = "Clear"
	WeatherFog       Weather = "Fog"
	WeatherRain      Weather = "Rain"
	WeatherHeavyRain Weather = "Heavy Rain"
)

// Weathers lists the categories in ascending severity order.
func Weathers() []Weather {
	return []Weather{WeatherClear, WeatherFog, WeatherRain, WeatherHeavyRain}
}

// Severity returns the ordinal used for sorting and for the crash model:
// Clear=1, Fog=2, Rain=3, Heavy Rain=4. Unknown categories return 0.
func (w Weather) Severity() int {
	switch w {
	case WeatherClear:
		return 1
	case WeatherFog:
		return 2
	case WeatherRain:
		return 3
	case WeatherHeavyRain:
		return 4
	default:
		return 0
	}
}

// Valid reports whether w is one of the known categories.
func (w Weather) Valid() bool { return w.Severity() != 0 }
