package quantile

import (
	"time"

	"github.com/smartcommute/smartcommute/core/model"
)

// Encoder pins the categorical vocabulary observed at fit time. It is fit
// once per training run and reused for every prediction.
type Encoder struct {
	Weekdays []string `json:"weekdays"`
	Weathers []string `json:"weathers"`
	Seasons  []string `json:"seasons"`
}

// FitEncoder collects the distinct categories present in the corpus, in
// canonical order (weekdays Monday first, weathers by ascending severity).
func FitEncoder(corpus []model.CommuteRecord) *Encoder {
	weekdays := make(map[string]bool)
	weathers := make(map[model.Weather]bool)
	seasons := make(map[model.Season]bool)
	for _, r := range corpus {
		weekdays[model.WeekdayName(r.Weekday)] = true
		weathers[r.Weather] = true
		seasons[r.Season] = true
	}

	enc := &Encoder{}
	for d := time.Monday; d <= time.Friday; d++ {
		if weekdays[model.WeekdayName(d)] {
			enc.Weekdays = append(enc.Weekdays, model.WeekdayName(d))
		}
	}
	for _, w := range model.Weathers() {
		if weathers[w] {
			enc.Weathers = append(enc.Weathers, string(w))
		}
	}
	for _, s := range model.Seasons() {
		if seasons[s] {
			enc.Seasons = append(enc.Seasons, string(s))
		}
	}
	return enc
}

// Encode validates ctx against the fitted vocabulary and returns the
// canonical (weekday, weather, season) triple. Values outside the
// vocabulary yield an UnknownCategoryError.
func (e *Encoder) Encode(ctx model.Context) (string, string, string, error) {
	wd := model.WeekdayName(ctx.Weekday)
	if !contains(e.Weekdays, wd) {
		return "", "", "", &UnknownCategoryError{Field: "day_of_week", Value: ctx.Weekday.String()}
	}
	if !contains(e.Weathers, string(ctx.Weather)) {
		return "", "", "", &UnknownCategoryError{Field: "weather", Value: string(ctx.Weather)}
	}
	if !contains(e.Seasons, string(ctx.Season)) {
		return "", "", "", &UnknownCategoryError{Field: "season", Value: string(ctx.Season)}
	}
	return wd, string(ctx.Weather), string(ctx.Season), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
