package model

// wmoCategory translates WMO weather codes into the four commute
// categories. Light snow is treated as Clear for driving purposes; heavy
// snow and thunderstorms count as Heavy Rain.
var wmoCategory = map[int]Weather{
	0: WeatherClear, 1: WeatherClear, 2: WeatherClear, 3: WeatherClear,
	45: WeatherFog, 48: WeatherFog,
	51: WeatherRain, 53: WeatherRain, 55: WeatherRain,
	56: WeatherRain, 57: WeatherRain,
	61: WeatherRain, 63: WeatherRain, 65: WeatherHeavyRain,
	66: WeatherRain, 67: WeatherHeavyRain,
	71: WeatherClear, 73: WeatherRain, 75: WeatherHeavyRain,
	77: WeatherFog,
	80: WeatherRain, 81: WeatherRain, 82: WeatherHeavyRain,
	85: WeatherRain, 86: WeatherHeavyRain,
	95: WeatherHeavyRain, 96: WeatherHeavyRain, 99: WeatherHeavyRain,
}

// WeatherFromWMO maps a WMO weather code to a commute category. The second
// return value is false for codes outside the table.
func WeatherFromWMO(code int) (Weather, bool) {
	w, ok := wmoCategory[code]
	return w, ok
}
